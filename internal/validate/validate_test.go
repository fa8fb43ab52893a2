package validate_test

import (
	"strings"
	"testing"

	"wholesale/internal/validate"
)

func TestEmail(t *testing.T) {
	good := []string{"a@b.co", "first.last+tag@example.com", "  padded@example.com  "}
	for _, s := range good {
		if _, ok := validate.Email(s); !ok {
			t.Errorf("Email(%q) rejected", s)
		}
	}
	bad := []string{"", "plain", "@example.com", "x@", "x@y", "spaces in@example.com",
		strings.Repeat("a", 250) + "@example.com"}
	for _, s := range bad {
		if _, ok := validate.Email(s); ok {
			t.Errorf("Email(%q) accepted", s)
		}
	}
}

func TestPassword(t *testing.T) {
	if !validate.Password("Abcdef12") {
		t.Error("minimal valid password rejected")
	}
	bad := []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere",
		strings.Repeat("Aa1", 25)}
	for _, s := range bad {
		if validate.Password(s) {
			t.Errorf("Password(%q) accepted", s)
		}
	}
}

func TestHandle(t *testing.T) {
	good := []string{"widget", "steel-bolts", "a-1-b-2"}
	for _, s := range good {
		if _, ok := validate.Handle(s); !ok {
			t.Errorf("Handle(%q) rejected", s)
		}
	}
	bad := []string{"", "-leading", "trailing-", "double--dash", "UPPER", "with space", "dot.sep"}
	for _, s := range bad {
		if _, ok := validate.Handle(s); ok {
			t.Errorf("Handle(%q) accepted", s)
		}
	}
}

func TestEnums(t *testing.T) {
	if validate.Role("superuser") || !validate.Role("admin") {
		t.Error("Role allow-list broken")
	}
	if validate.OrderStatus("returned") || !validate.OrderStatus("cancelled") {
		t.Error("OrderStatus allow-list broken")
	}
	if validate.ProductStatus("deleted") || !validate.ProductStatus("archived") {
		t.Error("ProductStatus allow-list broken")
	}
}

func TestPaging(t *testing.T) {
	if validate.Page(0) != 1 || validate.Page(-3) != 1 || validate.Page(7) != 7 {
		t.Error("Page clamp broken")
	}
	if validate.PageSize(0) != 20 || validate.PageSize(101) != 100 || validate.PageSize(5) != 5 {
		t.Error("PageSize clamp broken")
	}
}
