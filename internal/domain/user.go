package domain

const (
	RoleWholesale = "wholesale"
	RoleRetail    = "retail"
	RoleAdmin     = "admin"

	UserActive    = "active"
	UserInactive  = "inactive"
	UserSuspended = "suspended"
)

type User struct {
	ID                 string  `db:"id"`
	Email              string  `db:"email"`
	Hash               string  `db:"password_hash"`
	FirstName          string  `db:"first_name"`
	LastName           string  `db:"last_name"`
	Role               string  `db:"role"`
	Status             string  `db:"status"`
	RefreshToken       *string `db:"refresh_token"`
	RefreshTokenExpiry *string `db:"refresh_token_expiry"`
	LastLoginAt        *string `db:"last_login_at"`
	CreatedAt          string  `db:"created_at"`
	UpdatedAt          string  `db:"updated_at"`
}

func (u *User) FullName() string { return u.FirstName + " " + u.LastName }
func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u *User) IsActive() bool   { return u.Status == UserActive }
