package tetration

import (
	"context"
	"iter"
)

// InventorySearch describes a filtered search over workload inventory.
type InventorySearch struct {
	// ScopeName restricts the search to one scope. Optional.
	ScopeName string

	// Filter selects records server-side. Optional.
	Filter Filter

	// Limit is the page size requested from the server. Zero uses the
	// server default.
	Limit int
}

// InventoryService provides filtered inventory search.
type InventoryService interface {
	// Search returns an iterator over all inventory records matching the
	// query. Pages are fetched lazily as the caller iterates.
	Search(ctx context.Context, q *InventorySearch, opts ...RequestOption) iter.Seq2[Record, error]

	// SearchAll fetches every matching record eagerly. On a pagination
	// cap hit the partial result is returned alongside the error.
	SearchAll(ctx context.Context, q *InventorySearch, opts ...RequestOption) (*QueryResult, error)
}

type inventoryService struct {
	client *Client
}

func (s *inventoryService) query(q *InventorySearch) *QueryRequest {
	if q == nil {
		q = &InventorySearch{}
	}
	req := &QueryRequest{
		Endpoint:  "inventory/search",
		ScopeName: q.ScopeName,
		Filter:    q.Filter,
	}
	if q.Limit > 0 {
		req.Params = append(req.Params, Param{Key: "limit", Value: q.Limit})
	}
	return req
}

// Search returns an iterator over all matching inventory records.
func (s *inventoryService) Search(ctx context.Context, q *InventorySearch, opts ...RequestOption) iter.Seq2[Record, error] {
	return s.client.paginate(ctx, s.query(q), opts...)
}

// SearchAll fetches every matching record eagerly.
func (s *inventoryService) SearchAll(ctx context.Context, q *InventorySearch, opts ...RequestOption) (*QueryResult, error) {
	return s.client.Execute(ctx, s.query(q), opts...)
}
