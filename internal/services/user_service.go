package services

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"wholesale/internal/domain"
	"wholesale/internal/repos"
	"wholesale/internal/validate"
)

type UserSearchRequest struct {
	Search      string
	Role        string
	Status      string
	CreatedFrom string
	CreatedTo   string
	SortBy      string
	SortDesc    bool
	Page        int
	PageSize    int
}

type UserSearchResponse struct {
	Users      []UserDTO `json:"users"`
	TotalCount int       `json:"totalCount"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}

type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

type UserService struct {
	Users *repos.UserRepo
	Auth  *AuthService
}

func NewUserService(users *repos.UserRepo, auth *AuthService) *UserService {
	return &UserService{Users: users, Auth: auth}
}

// Get returns a profile. Non-admins may only see themselves; anyone else
// gets forbidden.
func (s *UserService) Get(id string, current *domain.User) (UserDTO, error) {
	if current == nil || (!current.IsAdmin() && current.ID != id) {
		return UserDTO{}, ErrForbidden
	}
	u, err := s.Users.ByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserDTO{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return UserDTO{}, err
	}
	return mapUser(u), nil
}

func (s *UserService) Search(req UserSearchRequest, current *domain.User) (*UserSearchResponse, error) {
	if current == nil || !current.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can search users", ErrForbidden)
	}
	page := validate.Page(req.Page)
	size := validate.PageSize(req.PageSize)

	users, total, err := s.Users.Search(&repos.UserSearchCriteria{
		Search:      req.Search,
		Role:        req.Role,
		Status:      req.Status,
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
		SortBy:      req.SortBy,
		SortDesc:    req.SortDesc,
	}, page, size)
	if err != nil {
		return nil, err
	}

	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, mapUser(&users[i]))
	}
	return &UserSearchResponse{
		Users:      out,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages(total, size),
	}, nil
}

func (s *UserService) Count(req *UserSearchRequest, current *domain.User) (int, error) {
	if current == nil || !current.IsAdmin() {
		return 0, fmt.Errorf("%w: only admins can count users", ErrForbidden)
	}
	c := &repos.UserSearchCriteria{}
	if req != nil {
		c = &repos.UserSearchCriteria{
			Search:      req.Search,
			Role:        req.Role,
			Status:      req.Status,
			CreatedFrom: req.CreatedFrom,
			CreatedTo:   req.CreatedTo,
		}
	}
	return s.Users.Count(c)
}

// Create is the admin user-management path; self-service signup is
// AuthService.Register.
func (s *UserService) Create(req RegisterRequest, current *domain.User) (UserDTO, error) {
	if current == nil || !current.IsAdmin() {
		return UserDTO{}, fmt.Errorf("%w: only admins can create users", ErrForbidden)
	}
	if req.Role != "" && !validate.Role(req.Role) {
		return UserDTO{}, fmt.Errorf("%w: invalid role", ErrInvalid)
	}
	// Admins may mint any role, including other admins; Register rejects the
	// admin role, so route those through a plain role swap afterwards.
	if req.Role != domain.RoleAdmin {
		return s.Auth.Register(req)
	}
	rr := req
	rr.Role = domain.RoleWholesale
	dto, err := s.Auth.Register(rr)
	if err != nil {
		return UserDTO{}, err
	}
	u, err := s.Users.ByID(dto.ID)
	if err != nil {
		return UserDTO{}, err
	}
	u.Role = domain.RoleAdmin
	if err := s.Users.Update(u); err != nil {
		return UserDTO{}, err
	}
	return mapUser(u), nil
}

// Update applies partial changes; empty fields keep their value. Role and
// status changes are admin-only even on one's own record.
func (s *UserService) Update(id string, req UpdateUserRequest, current *domain.User) (UserDTO, error) {
	if current == nil || (!current.IsAdmin() && current.ID != id) {
		return UserDTO{}, fmt.Errorf("%w: you can only update your own profile", ErrForbidden)
	}
	u, err := s.Users.ByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserDTO{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return UserDTO{}, err
	}

	if req.FirstName != "" {
		name, ok := validate.Name(req.FirstName)
		if !ok {
			return UserDTO{}, fmt.Errorf("%w: invalid first name", ErrInvalid)
		}
		u.FirstName = name
	}
	if req.LastName != "" {
		name, ok := validate.Name(req.LastName)
		if !ok {
			return UserDTO{}, fmt.Errorf("%w: invalid last name", ErrInvalid)
		}
		u.LastName = name
	}
	if req.Password != "" {
		if !validate.Password(req.Password) {
			return UserDTO{}, fmt.Errorf("%w: password must be 8+ characters with upper, lower and digit", ErrInvalid)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return UserDTO{}, err
		}
		u.Hash = string(hash)
	}
	if req.Role != "" {
		if !current.IsAdmin() {
			return UserDTO{}, fmt.Errorf("%w: only admins can change user roles", ErrForbidden)
		}
		if !validate.Role(req.Role) {
			return UserDTO{}, fmt.Errorf("%w: invalid role", ErrInvalid)
		}
		u.Role = req.Role
	}
	if req.Status != "" {
		if !current.IsAdmin() {
			return UserDTO{}, fmt.Errorf("%w: only admins can change user status", ErrForbidden)
		}
		if !validate.UserStatus(req.Status) {
			return UserDTO{}, fmt.Errorf("%w: invalid status", ErrInvalid)
		}
		u.Status = req.Status
	}

	if err := s.Users.Update(u); err != nil {
		return UserDTO{}, err
	}
	return mapUser(u), nil
}

func (s *UserService) Delete(id string, current *domain.User) error {
	if current == nil || !current.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete users", ErrForbidden)
	}
	if _, err := s.Users.ByID(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}
	return s.Users.Delete(id)
}
