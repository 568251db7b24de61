package tetration

import (
	"context"
	"net/http"
	"net/url"
)

// Role represents a user role and its scope binding.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AppScopeID  string `json:"app_scope_id,omitempty"`
}

// RoleService provides operations on roles.
type RoleService interface {
	// List returns all roles visible to the credential.
	List(ctx context.Context, opts ...RequestOption) ([]*Role, error)

	// Get retrieves a single role by ID.
	Get(ctx context.Context, id string, opts ...RequestOption) (*Role, error)
}

type roleService struct {
	client *Client
}

// List returns all roles visible to the credential.
func (s *roleService) List(ctx context.Context, opts ...RequestOption) ([]*Role, error) {
	var roles []*Role
	if err := s.client.call(ctx, http.MethodGet, "roles", "roles", nil, &roles, opts...); err != nil {
		return nil, err
	}
	return roles, nil
}

// Get retrieves a single role by ID.
func (s *roleService) Get(ctx context.Context, id string, opts ...RequestOption) (*Role, error) {
	if id == "" {
		return nil, &ConfigError{Message: "role ID cannot be empty"}
	}
	var role Role
	path := "roles/" + url.PathEscape(id)
	if err := s.client.call(ctx, http.MethodGet, "roles", path, nil, &role, opts...); err != nil {
		return nil, err
	}
	return &role, nil
}
