package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wholesale/internal/domain"
	"wholesale/internal/repos"
	"wholesale/internal/validate"
)

type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         UserDTO   `json:"user"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type AuthService struct {
	Users  *repos.UserRepo
	Tokens *TokenService
}

func NewAuthService(users *repos.UserRepo, tokens *TokenService) *AuthService {
	return &AuthService{Users: users, Tokens: tokens}
}

func (s *AuthService) Login(email, password string) (*TokenPair, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if !u.IsActive() {
		return nil, ErrBadCreds
	}
	_ = s.Users.UpdateLastLogin(u.ID)
	return s.issuePair(u)
}

// Register creates a customer account. Role defaults to wholesale; admin
// accounts are provisioned through user management, never self-registered.
func (s *AuthService) Register(req RegisterRequest) (UserDTO, error) {
	email, ok := validate.Email(req.Email)
	if !ok {
		return UserDTO{}, fmt.Errorf("%w: invalid email address", ErrInvalid)
	}
	if !validate.Password(req.Password) {
		return UserDTO{}, fmt.Errorf("%w: password must be 8+ characters with upper, lower and digit", ErrInvalid)
	}
	first, okFirst := validate.Name(req.FirstName)
	last, okLast := validate.Name(req.LastName)
	if !okFirst || !okLast {
		return UserDTO{}, fmt.Errorf("%w: first and last name are required", ErrInvalid)
	}
	role := req.Role
	if role == "" {
		role = domain.RoleWholesale
	}
	if role == domain.RoleAdmin || !validate.Role(role) {
		return UserDTO{}, fmt.Errorf("%w: invalid role", ErrInvalid)
	}

	exists, err := s.Users.ExistsByEmail(email)
	if err != nil {
		return UserDTO{}, err
	}
	if exists {
		return UserDTO{}, fmt.Errorf("%w: user with email %q already exists", ErrConflict, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserDTO{}, err
	}
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Hash:      string(hash),
		FirstName: first,
		LastName:  last,
		Role:      role,
		Status:    domain.UserActive,
	}
	if err := s.Users.Create(u); err != nil {
		return UserDTO{}, err
	}
	return mapUser(u), nil
}

// Refresh rotates the token pair. Expired or unknown refresh tokens are
// indistinguishable to the caller.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.Users.ByRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if u.RefreshTokenExpiry == nil || *u.RefreshTokenExpiry <= time.Now().UTC().Format(time.RFC3339) {
		return nil, ErrUnauthorized
	}
	if !u.IsActive() {
		return nil, ErrUnauthorized
	}
	return s.issuePair(u)
}

func (s *AuthService) Logout(userID string) error {
	return s.Users.ClearRefreshToken(userID)
}

func (s *AuthService) ValidatePassword(email, password string) bool {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) == nil
}

// UserFromToken resolves a bearer token to a live user record. The DB read
// picks up role or status changes made after the token was issued.
func (s *AuthService) UserFromToken(token string) (*domain.User, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.ByID(claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !u.IsActive() {
		return nil, ErrUnauthorized
	}
	return u, nil
}

func (s *AuthService) issuePair(u *domain.User) (*TokenPair, error) {
	access, expiresAt, err := s.Tokens.IssueAccess(u)
	if err != nil {
		return nil, err
	}
	refresh, refreshExpiry, err := s.Tokens.IssueRefresh()
	if err != nil {
		return nil, err
	}
	if err := s.Users.SetRefreshToken(u.ID, refresh, refreshExpiry.Format(time.RFC3339)); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         mapUser(u),
	}, nil
}
