package tetration

import "net/http"

// Endpoint describes one API endpoint in the catalog: its logical name,
// HTTP method, and whether it takes a request body or returns paged
// results.
type Endpoint struct {
	Name         string
	Method       string
	RequiresBody bool
	Paginated    bool
}

// The endpoint catalog. Fixed at startup; lookups go through
// lookupEndpoint so an unknown name fails before any request is built.
var endpointCatalog = map[string]Endpoint{
	"app_scopes":       {Name: "app_scopes", Method: http.MethodGet},
	"applications":     {Name: "applications", Method: http.MethodGet},
	"users":            {Name: "users", Method: http.MethodGet},
	"roles":            {Name: "roles", Method: http.MethodGet},
	"inventory/search": {Name: "inventory/search", Method: http.MethodPost, RequiresBody: true, Paginated: true},
	"flowsearch":       {Name: "flowsearch", Method: http.MethodPost, RequiresBody: true, Paginated: true},
	"flowsearch/topn":  {Name: "flowsearch/topn", Method: http.MethodPost, RequiresBody: true},
}

// lookupEndpoint resolves a logical endpoint name against the catalog.
func lookupEndpoint(name string) (Endpoint, error) {
	ep, ok := endpointCatalog[name]
	if !ok {
		return Endpoint{}, &UnknownEndpointError{Name: name}
	}
	return ep, nil
}

// Endpoints returns the names of all catalogued endpoints.
func Endpoints() []string {
	names := make([]string, 0, len(endpointCatalog))
	for name := range endpointCatalog {
		names = append(names, name)
	}
	return names
}
