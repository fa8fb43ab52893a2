package services_test

import (
	"testing"
	"time"

	"wholesale/internal/domain"
	"wholesale/internal/services"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := services.NewTokenService("unit-secret", time.Hour, 24*time.Hour)
	u := &domain.User{ID: "u-1", Email: "claims@example.com", Role: domain.RoleWholesale}

	tok, exp, err := svc.IssueAccess(u)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) < 59*time.Minute {
		t.Fatalf("expiry too soon: %s", exp)
	}

	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "u-1" || claims.Email != "claims@example.com" || claims.Role != domain.RoleWholesale {
		t.Fatalf("claims: %+v", claims)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	issuer := services.NewTokenService("secret-a", time.Hour, time.Hour)
	verifier := services.NewTokenService("secret-b", time.Hour, time.Hour)

	tok, _, err := issuer.IssueAccess(&domain.User{ID: "u-1", Email: "x@example.com", Role: domain.RoleRetail})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.Parse(tok); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
	if _, err := verifier.Parse("not.a.token"); err == nil {
		t.Fatal("garbage token was accepted")
	}
}

func TestRefreshTokensAreUnique(t *testing.T) {
	svc := services.NewTokenService("unit-secret", time.Hour, 24*time.Hour)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, exp, err := svc.IssueRefresh()
		if err != nil {
			t.Fatal(err)
		}
		if seen[tok] {
			t.Fatal("refresh token repeated")
		}
		seen[tok] = true
		if time.Until(exp) < 23*time.Hour {
			t.Fatalf("refresh expiry too soon: %s", exp)
		}
	}
}
