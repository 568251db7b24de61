package tetration

import (
	"context"
	"net/http"
	"net/url"
)

// Application represents an application workspace attached to a scope.
type Application struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	ScopeID            string `json:"app_scope_id"`
	Author             string `json:"author,omitempty"`
	Primary            bool   `json:"primary"`
	AlternateQueryMode bool   `json:"alternate_query_mode,omitempty"`
	EnforcementEnabled bool   `json:"enforcement_enabled"`
	LatestVersion      int    `json:"latest_adm_version,omitempty"`
	CreatedAt          int64  `json:"created_at,omitempty"`
}

// ApplicationService provides operations on application workspaces.
type ApplicationService interface {
	// List returns all application workspaces.
	List(ctx context.Context, opts ...RequestOption) ([]*Application, error)

	// Get retrieves a single application by ID.
	Get(ctx context.Context, id string, opts ...RequestOption) (*Application, error)
}

type applicationService struct {
	client *Client
}

// List returns all application workspaces.
func (s *applicationService) List(ctx context.Context, opts ...RequestOption) ([]*Application, error) {
	var apps []*Application
	if err := s.client.call(ctx, http.MethodGet, "applications", "applications", nil, &apps, opts...); err != nil {
		return nil, err
	}
	return apps, nil
}

// Get retrieves a single application by ID.
func (s *applicationService) Get(ctx context.Context, id string, opts ...RequestOption) (*Application, error) {
	if id == "" {
		return nil, &ConfigError{Message: "application ID cannot be empty"}
	}
	var app Application
	path := "applications/" + url.PathEscape(id)
	if err := s.client.call(ctx, http.MethodGet, "applications", path, nil, &app, opts...); err != nil {
		return nil, err
	}
	return &app, nil
}
