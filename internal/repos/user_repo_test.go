package repos_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"wholesale/internal/domain"
	"wholesale/internal/repos"
)

func memdb(t *testing.T) *repos.UserRepo {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return repos.NewUserRepo(db)
}

func seedUser(t *testing.T, r *repos.UserRepo, email, role string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Hash:      "$2a$10$fakehashfakehashfakehash",
		FirstName: "Seed",
		LastName:  "User",
		Role:      role,
		Status:    domain.UserActive,
	}
	if err := r.Create(u); err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return u
}

func TestRefreshTokenLookup(t *testing.T) {
	r := memdb(t)
	u := seedUser(t, r, "lookup@example.com", domain.RoleWholesale)

	expiry := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	if err := r.SetRefreshToken(u.ID, "tok-abc", expiry); err != nil {
		t.Fatal(err)
	}

	got, err := r.ByRefreshToken("tok-abc")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID {
		t.Fatalf("lookup returned %s, want %s", got.ID, u.ID)
	}

	if _, err := r.ByRefreshToken("tok-unknown"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("unknown token: got %v, want ErrNoRows", err)
	}

	if err := r.ClearRefreshToken(u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ByRefreshToken("tok-abc"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("cleared token still resolves: %v", err)
	}
}

func TestUserSearchSortAllowList(t *testing.T) {
	r := memdb(t)
	for i := 0; i < 3; i++ {
		seedUser(t, r, fmt.Sprintf("sort%d@example.com", i), domain.RoleWholesale)
	}

	// Lowercased keys from the allow-list sort; unknown keys fall back to
	// created_at without erroring.
	for _, key := range []string{"email", "createdat", "lastloginat", "password_hash; DROP TABLE users"} {
		users, _, err := r.Search(&repos.UserSearchCriteria{SortBy: key}, 1, 10)
		if err != nil {
			t.Fatalf("sort by %q: %v", key, err)
		}
		if len(users) < 3 {
			t.Fatalf("sort by %q: got %d users", key, len(users))
		}
	}
}

func TestUserSearchFilters(t *testing.T) {
	r := memdb(t)
	seedUser(t, r, "retail@example.com", domain.RoleRetail)
	seedUser(t, r, "bulk@example.com", domain.RoleWholesale)

	users, total, err := r.Search(&repos.UserSearchCriteria{Role: domain.RoleRetail}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(users) != 1 || users[0].Email != "retail@example.com" {
		t.Fatalf("role filter: total=%d users=%v", total, users)
	}

	users, _, err = r.Search(&repos.UserSearchCriteria{Search: "bulk"}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].Email != "bulk@example.com" {
		t.Fatalf("text filter: %v", users)
	}
}
