package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"wholesale/internal/config"
	"wholesale/internal/http/handlers"
	"wholesale/internal/repos"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	cfg := config.Config{
		JWTSecret:  "test-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
	app := fiber.New()
	deps := handlers.NewDeps(db, cfg)
	handlers.Register(app, deps, nil)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/api/auth/login", "", map[string]any{
		"email": email, "password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: got %d", email, resp.StatusCode)
	}
	tok, _ := body["accessToken"].(string)
	if tok == "" {
		t.Fatalf("login %s: no access token in response", email)
	}
	return tok
}

func adminToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	return login(t, app, "admin@wholesale.test", "Admin1234!")
}

func registerCustomer(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, _ := doJSON(t, app, "POST", "/api/auth/register", "", map[string]any{
		"email":     email,
		"password":  "Customer1!",
		"firstName": "Test",
		"lastName":  "Customer",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: got %d", email, resp.StatusCode)
	}
	return login(t, app, email, "Customer1!")
}

// createProduct makes one active product with a single variant through the
// admin API and returns its id.
func createProduct(t *testing.T, app *fiber.App, admin, title, handle, sku string, price string, qty int) string {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/api/products", admin, map[string]any{
		"title":       title,
		"vendor":      "Acme Wholesale",
		"productType": "widgets",
		"handle":      handle,
		"status":      "active",
		"variants": []map[string]any{
			{"title": "Default", "sku": sku, "price": price, "inventoryQuantity": qty},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product %s: got %d (%v)", handle, resp.StatusCode, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("create product %s: no id in response", handle)
	}
	return id
}

func address() map[string]any {
	return map[string]any{
		"firstName": "Test", "lastName": "Customer",
		"address1": "1 Main St", "city": "College Park", "state": "MD",
		"zipCode": "20742", "country": "US", "phone": "555-0100",
	}
}
