package tetration

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Scope represents an application scope: a named partition of inventory
// for access and policy boundaries.
type Scope struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_app_scope_id,omitempty"`
	VRFID       int    `json:"vrf_id,omitempty"`
	Dirty       bool   `json:"dirty,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
	UpdatedAt   int64  `json:"updated_at,omitempty"`
}

// ScopeService provides operations on application scopes.
type ScopeService interface {
	// List returns all scopes visible to the credential.
	List(ctx context.Context, opts ...RequestOption) ([]*Scope, error)

	// Get retrieves a single scope by ID.
	Get(ctx context.Context, id string, opts ...RequestOption) (*Scope, error)

	// Find returns the scope with the given name, matching on either the
	// fully qualified name or the short name. Returns ErrScopeNotFound
	// when nothing matches.
	Find(ctx context.Context, name string, opts ...RequestOption) (*Scope, error)
}

type scopeService struct {
	client *Client
}

// List returns all scopes visible to the credential.
func (s *scopeService) List(ctx context.Context, opts ...RequestOption) ([]*Scope, error) {
	var scopes []*Scope
	if err := s.client.call(ctx, http.MethodGet, "app_scopes", "app_scopes", nil, &scopes, opts...); err != nil {
		return nil, err
	}
	return scopes, nil
}

// Get retrieves a single scope by ID.
func (s *scopeService) Get(ctx context.Context, id string, opts ...RequestOption) (*Scope, error) {
	if id == "" {
		return nil, &ConfigError{Message: "scope ID cannot be empty"}
	}
	var scope Scope
	path := "app_scopes/" + url.PathEscape(id)
	if err := s.client.call(ctx, http.MethodGet, "app_scopes", path, nil, &scope, opts...); err != nil {
		return nil, err
	}
	return &scope, nil
}

// Find returns the scope with the given name. Scope names are unique per
// appliance, so the first match wins.
func (s *scopeService) Find(ctx context.Context, name string, opts ...RequestOption) (*Scope, error) {
	scopes, err := s.List(ctx, opts...)
	if err != nil {
		return nil, err
	}
	for _, scope := range scopes {
		if scope.Name == name || scope.ShortName == name {
			return scope, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrScopeNotFound, name)
}
