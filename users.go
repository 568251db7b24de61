package tetration

import (
	"context"
	"net/http"
	"net/url"
)

// User represents a platform user account. Accounts are disabled rather
// than deleted; DisabledAt is zero for active users.
type User struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	AppScopeID string   `json:"app_scope_id,omitempty"`
	RoleIDs    []string `json:"role_ids,omitempty"`
	CreatedAt  int64    `json:"created_at,omitempty"`
	DisabledAt int64    `json:"disabled_at,omitempty"`
}

// Disabled reports whether the account has been disabled.
func (u *User) Disabled() bool {
	return u.DisabledAt > 0
}

// CreateUserRequest contains data for creating a new user account.
type CreateUserRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	AppScopeID string `json:"app_scope_id,omitempty"`
}

// UserService provides operations on user accounts.
type UserService interface {
	// List returns all user accounts, including disabled ones.
	List(ctx context.Context, opts ...RequestOption) ([]*User, error)

	// Get retrieves a single user by ID.
	Get(ctx context.Context, id string, opts ...RequestOption) (*User, error)

	// Create creates a new user account.
	Create(ctx context.Context, req *CreateUserRequest, opts ...RequestOption) (*User, error)

	// Disable disables a user account. Accounts are never deleted.
	Disable(ctx context.Context, id string, opts ...RequestOption) error

	// AddRole assigns a role to a user account.
	AddRole(ctx context.Context, userID, roleID string, opts ...RequestOption) error
}

type userService struct {
	client *Client
}

// List returns all user accounts.
func (s *userService) List(ctx context.Context, opts ...RequestOption) ([]*User, error) {
	var users []*User
	if err := s.client.call(ctx, http.MethodGet, "users", "users", nil, &users, opts...); err != nil {
		return nil, err
	}
	return users, nil
}

// Get retrieves a single user by ID.
func (s *userService) Get(ctx context.Context, id string, opts ...RequestOption) (*User, error) {
	if id == "" {
		return nil, &ConfigError{Message: "user ID cannot be empty"}
	}
	var user User
	path := "users/" + url.PathEscape(id)
	if err := s.client.call(ctx, http.MethodGet, "users", path, nil, &user, opts...); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user account.
func (s *userService) Create(ctx context.Context, req *CreateUserRequest, opts ...RequestOption) (*User, error) {
	if req == nil || req.Email == "" {
		return nil, &ConfigError{Message: "user email is required"}
	}
	var user User
	if err := s.client.call(ctx, http.MethodPost, "users", "users", req, &user, opts...); err != nil {
		return nil, err
	}
	return &user, nil
}

// Disable disables a user account.
func (s *userService) Disable(ctx context.Context, id string, opts ...RequestOption) error {
	if id == "" {
		return &ConfigError{Message: "user ID cannot be empty"}
	}
	path := "users/" + url.PathEscape(id)
	return s.client.call(ctx, http.MethodDelete, "users", path, nil, nil, opts...)
}

// AddRole assigns a role to a user account. Roles can be added but not
// removed through this API.
func (s *userService) AddRole(ctx context.Context, userID, roleID string, opts ...RequestOption) error {
	if userID == "" || roleID == "" {
		return &ConfigError{Message: "user ID and role ID are required"}
	}
	path := "users/" + url.PathEscape(userID) + "/add_role"
	body := map[string]string{"role_id": roleID}
	return s.client.call(ctx, http.MethodPut, "users", path, body, nil, opts...)
}
