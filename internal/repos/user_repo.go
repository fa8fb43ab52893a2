package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"wholesale/internal/domain"
)

const userCols = `id, email, password_hash, first_name, last_name, role, status,
	refresh_token, refresh_token_expiry, last_login_at, created_at, updated_at`

var userSortCols = map[string]string{
	"email":       "LOWER(email)",
	"firstname":   "LOWER(first_name)",
	"lastname":    "LOWER(last_name)",
	"role":        "role",
	"status":      "status",
	"createdat":   "created_at",
	"updatedat":   "updated_at",
	"lastloginat": "last_login_at",
}

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.db.Get(&u, r.db.Rebind(`SELECT `+userCols+` FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.db.Get(&u, r.db.Rebind(`SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER(?)`), email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByRefreshToken(token string) (*domain.User, error) {
	var u domain.User
	err := r.db.Get(&u, r.db.Rebind(`SELECT `+userCols+` FROM users WHERE refresh_token = ?`), token)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ExistsByEmail(email string) (bool, error) {
	var n int
	err := r.db.Get(&n, r.db.Rebind(`SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER(?)`), email)
	return n > 0, err
}

func (r *UserRepo) Create(u *domain.User) error {
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	_, err := r.db.Exec(r.db.Rebind(`
		INSERT INTO users(id, email, password_hash, first_name, last_name, role, status, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), u.ID, u.Email, u.Hash, u.FirstName, u.LastName, u.Role, u.Status, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *UserRepo) Update(u *domain.User) error {
	u.UpdatedAt = now()
	_, err := r.db.Exec(r.db.Rebind(`
		UPDATE users
		SET first_name = ?, last_name = ?, role = ?, status = ?, password_hash = ?, updated_at = ?
		WHERE id = ?
	`), u.FirstName, u.LastName, u.Role, u.Status, u.Hash, u.UpdatedAt, u.ID)
	return err
}

func (r *UserRepo) Delete(id string) error {
	_, err := r.db.Exec(r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	return err
}

func (r *UserRepo) UpdateLastLogin(id string) error {
	_, err := r.db.Exec(r.db.Rebind(`UPDATE users SET last_login_at = ? WHERE id = ?`), now(), id)
	return err
}

func (r *UserRepo) SetRefreshToken(id, token, expiry string) error {
	_, err := r.db.Exec(r.db.Rebind(`
		UPDATE users SET refresh_token = ?, refresh_token_expiry = ?, updated_at = ? WHERE id = ?
	`), token, expiry, now(), id)
	return err
}

func (r *UserRepo) ClearRefreshToken(id string) error {
	_, err := r.db.Exec(r.db.Rebind(`
		UPDATE users SET refresh_token = NULL, refresh_token_expiry = NULL, updated_at = ? WHERE id = ?
	`), now(), id)
	return err
}

func (r *UserRepo) userFilter(c *UserSearchCriteria) (string, []any) {
	where := []string{"1=1"}
	args := []any{}
	if c.Search != "" {
		s := "%" + strings.ToLower(c.Search) + "%"
		where = append(where, `(LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?
			OR LOWER(first_name || ' ' || last_name) LIKE ?)`)
		args = append(args, s, s, s, s)
	}
	if c.Role != "" {
		where = append(where, `role = ?`)
		args = append(args, c.Role)
	}
	if c.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, c.Status)
	}
	if c.CreatedFrom != "" {
		where = append(where, `created_at >= ?`)
		args = append(args, c.CreatedFrom)
	}
	if c.CreatedTo != "" {
		where = append(where, `created_at <= ?`)
		args = append(args, c.CreatedTo)
	}
	return strings.Join(where, " AND "), args
}

// Search returns one page plus the total matching count.
func (r *UserRepo) Search(c *UserSearchCriteria, page, pageSize int) ([]domain.User, int, error) {
	where, args := r.userFilter(c)

	var total int
	if err := r.db.Get(&total, r.db.Rebind(`SELECT COUNT(*) FROM users WHERE `+where), args...); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userCols + ` FROM users WHERE ` + where +
		` ORDER BY ` + orderClause(strings.ToLower(c.SortBy), c.SortDesc, userSortCols) +
		` LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	var out []domain.User
	if err := r.db.Select(&out, r.db.Rebind(q), args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *UserRepo) Count(c *UserSearchCriteria) (int, error) {
	if c == nil {
		c = &UserSearchCriteria{}
	}
	where, args := r.userFilter(c)
	var n int
	err := r.db.Get(&n, r.db.Rebind(`SELECT COUNT(*) FROM users WHERE `+where), args...)
	return n, err
}
