package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reHandle = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	reSKU    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 255 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Password enforces a length window plus character-class mix.
func Password(s string) bool {
	if len(s) < 8 || len(s) > 72 {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}

// Handle validates a URL-safe product slug like "acme-drill".
func Handle(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 255 {
		return "", false
	}
	return s, reHandle.MatchString(s)
}

func SKU(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reSKU.MatchString(s)
}

// ID validates a resource identifier (UUIDs and seeded ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, true
}

func oneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

func Role(s string) bool { return oneOf(s, "wholesale", "retail", "admin") }

func UserStatus(s string) bool { return oneOf(s, "active", "inactive", "suspended") }

func ProductStatus(s string) bool { return oneOf(s, "active", "draft", "archived") }

func OrderStatus(s string) bool {
	return oneOf(s, "pending", "confirmed", "processing", "shipped", "delivered", "cancelled")
}

// Page clamps a page number to >= 1.
func Page(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// PageSize clamps to 1..100 with a default of 20.
func PageSize(n int) int {
	if n < 1 {
		return 20
	}
	if n > 100 {
		return 100
	}
	return n
}
