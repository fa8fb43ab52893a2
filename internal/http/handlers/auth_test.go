package handlers_test

import (
	"net/http"
	"testing"
)

func TestRegisterLoginRoundTrip(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, "POST", "/api/auth/register", "", map[string]any{
		"email":     "buyer@example.com",
		"password":  "Sup3rSecret",
		"firstName": "Blake",
		"lastName":  "Buyer",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: got %d (%v)", resp.StatusCode, body)
	}
	if body["role"] != "wholesale" {
		t.Fatalf("default role: got %v, want wholesale", body["role"])
	}
	if _, ok := body["passwordHash"]; ok {
		t.Fatal("password hash leaked in response")
	}

	resp, body = doJSON(t, app, "POST", "/api/auth/login", "", map[string]any{
		"email": "buyer@example.com", "password": "Sup3rSecret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: got %d", resp.StatusCode)
	}
	for _, k := range []string{"accessToken", "refreshToken", "expiresAt"} {
		if body[k] == nil || body[k] == "" {
			t.Fatalf("login response missing %q", k)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	registerCustomer(t, app, "dup@example.com")

	resp, body := doJSON(t, app, "POST", "/api/auth/register", "", map[string]any{
		"email":     "dup@example.com",
		"password":  "Another1!",
		"firstName": "Other",
		"lastName":  "Person",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: got %d, want 409", resp.StatusCode)
	}
	if body["title"] != "Conflict" {
		t.Fatalf("problem title: got %v", body["title"])
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	app := newTestApp(t)
	resp, _ := doJSON(t, app, "POST", "/api/auth/register", "", map[string]any{
		"email":     "sneaky@example.com",
		"password":  "Sneaky123",
		"firstName": "Sneaky",
		"lastName":  "User",
		"role":      "admin",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("admin self-register: got %d, want 400", resp.StatusCode)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	app := newTestApp(t)
	registerCustomer(t, app, "cred@example.com")

	for _, tc := range []struct{ email, pass string }{
		{"cred@example.com", "WrongPass1"},
		{"nobody@example.com", "Customer1!"},
	} {
		resp, body := doJSON(t, app, "POST", "/api/auth/login", "", map[string]any{
			"email": tc.email, "password": tc.pass,
		})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("login %s: got %d, want 401", tc.email, resp.StatusCode)
		}
		// Same body for wrong password and unknown user.
		if body["detail"] != "invalid email or password" {
			t.Fatalf("login %s: detail %v", tc.email, body["detail"])
		}
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	app := newTestApp(t)
	registerCustomer(t, app, "refresh@example.com")

	_, loginBody := doJSON(t, app, "POST", "/api/auth/login", "", map[string]any{
		"email": "refresh@example.com", "password": "Customer1!",
	})
	first, _ := loginBody["refreshToken"].(string)

	resp, body := doJSON(t, app, "POST", "/api/auth/refresh", "", map[string]any{
		"refreshToken": first,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: got %d", resp.StatusCode)
	}
	second, _ := body["refreshToken"].(string)
	if second == "" || second == first {
		t.Fatal("refresh token was not rotated")
	}

	// The old token is dead after rotation.
	resp, _ = doJSON(t, app, "POST", "/api/auth/refresh", "", map[string]any{
		"refreshToken": first,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("stale refresh: got %d, want 401", resp.StatusCode)
	}
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	app := newTestApp(t)
	registerCustomer(t, app, "bye@example.com")

	_, loginBody := doJSON(t, app, "POST", "/api/auth/login", "", map[string]any{
		"email": "bye@example.com", "password": "Customer1!",
	})
	access, _ := loginBody["accessToken"].(string)
	refresh, _ := loginBody["refreshToken"].(string)

	resp, _ := doJSON(t, app, "POST", "/api/auth/logout", access, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "POST", "/api/auth/refresh", "", map[string]any{
		"refreshToken": refresh,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: got %d, want 401", resp.StatusCode)
	}
}

func TestProfileEndpoints(t *testing.T) {
	app := newTestApp(t)
	tok := registerCustomer(t, app, "me@example.com")

	resp, body := doJSON(t, app, "GET", "/api/auth/profile", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: got %d", resp.StatusCode)
	}
	if body["email"] != "me@example.com" {
		t.Fatalf("profile email: got %v", body["email"])
	}

	resp, body = doJSON(t, app, "PUT", "/api/auth/profile", tok, map[string]any{
		"firstName": "Renamed",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile update: got %d", resp.StatusCode)
	}
	if body["firstName"] != "Renamed" {
		t.Fatalf("profile update firstName: got %v", body["firstName"])
	}

	// Role changes through the profile route are not allowed for customers.
	resp, _ = doJSON(t, app, "PUT", "/api/auth/profile", tok, map[string]any{
		"role": "admin",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("profile role escalation: got %d, want 403", resp.StatusCode)
	}

	resp, body = doJSON(t, app, "POST", "/api/auth/validate-password", tok, map[string]any{
		"password": "Customer1!",
	})
	if resp.StatusCode != http.StatusOK || body["valid"] != true {
		t.Fatalf("validate-password: got %d valid=%v", resp.StatusCode, body["valid"])
	}
	_, body = doJSON(t, app, "POST", "/api/auth/validate-password", tok, map[string]any{
		"password": "nope",
	})
	if body["valid"] != false {
		t.Fatalf("validate-password wrong: valid=%v", body["valid"])
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/api/auth/profile", "/api/orders", "/api/users"} {
		resp, _ := doJSON(t, app, "GET", path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s without token: got %d, want 401", path, resp.StatusCode)
		}
	}
	resp, _ := doJSON(t, app, "GET", "/api/auth/profile", "not-a-jwt", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token: got %d, want 401", resp.StatusCode)
	}
}
