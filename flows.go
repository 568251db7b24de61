package tetration

import (
	"context"
	"iter"
	"time"
)

// FlowSearch describes a search over logged network flow observations.
type FlowSearch struct {
	// T0 and T1 bound the observation window. Both are required; the
	// server rejects open-ended flow searches.
	T0 time.Time
	T1 time.Time

	// ScopeName restricts the search to one scope. Optional.
	ScopeName string

	// Filter selects flows server-side. Optional.
	Filter Filter

	// Limit is the page size requested from the server.
	Limit int
}

// TopNQuery describes a top-N aggregation over flows: the busiest values
// of Dimension ranked by the aggregate Metric within the time window.
type TopNQuery struct {
	T0        time.Time
	T1        time.Time
	ScopeName string
	Filter    Filter

	// Dimension is the flow field to group by, e.g. "src_address".
	Dimension string

	// Metric is the aggregate to rank by, e.g. "fwd_pkts" or "rev_bytes".
	Metric string

	// Threshold caps how many groups are returned.
	Threshold int
}

// FlowService provides flow search and aggregation.
type FlowService interface {
	// Search returns an iterator over matching flow records. Pages are
	// fetched lazily as the caller iterates.
	Search(ctx context.Context, q *FlowSearch, opts ...RequestOption) iter.Seq2[Record, error]

	// SearchAll fetches every matching flow eagerly. On a pagination cap
	// hit the partial result is returned alongside the error.
	SearchAll(ctx context.Context, q *FlowSearch, opts ...RequestOption) (*QueryResult, error)

	// TopN runs a top-N aggregation and returns one record per group.
	TopN(ctx context.Context, q *TopNQuery, opts ...RequestOption) (*QueryResult, error)
}

type flowService struct {
	client *Client
}

func (s *flowService) query(q *FlowSearch) (*QueryRequest, error) {
	if q == nil || q.T0.IsZero() || q.T1.IsZero() {
		return nil, &ConfigError{Message: "flow search requires both t0 and t1"}
	}
	req := &QueryRequest{
		Endpoint:  "flowsearch",
		ScopeName: q.ScopeName,
		Filter:    q.Filter,
		Params: []Param{
			{Key: "t0", Value: q.T0.Unix()},
			{Key: "t1", Value: q.T1.Unix()},
		},
	}
	if q.Limit > 0 {
		req.Params = append(req.Params, Param{Key: "limit", Value: q.Limit})
	}
	return req, nil
}

// Search returns an iterator over matching flow records.
func (s *flowService) Search(ctx context.Context, q *FlowSearch, opts ...RequestOption) iter.Seq2[Record, error] {
	req, err := s.query(q)
	if err != nil {
		return func(yield func(Record, error) bool) {
			yield(nil, err)
		}
	}
	return s.client.paginate(ctx, req, opts...)
}

// SearchAll fetches every matching flow eagerly.
func (s *flowService) SearchAll(ctx context.Context, q *FlowSearch, opts ...RequestOption) (*QueryResult, error) {
	req, err := s.query(q)
	if err != nil {
		return nil, err
	}
	return s.client.Execute(ctx, req, opts...)
}

// TopN runs a top-N aggregation over the flow corpus.
func (s *flowService) TopN(ctx context.Context, q *TopNQuery, opts ...RequestOption) (*QueryResult, error) {
	if q == nil || q.T0.IsZero() || q.T1.IsZero() {
		return nil, &ConfigError{Message: "topn requires both t0 and t1"}
	}
	if q.Dimension == "" || q.Metric == "" {
		return nil, &ConfigError{Message: "topn requires a dimension and a metric"}
	}

	req := &QueryRequest{
		Endpoint:  "flowsearch/topn",
		ScopeName: q.ScopeName,
		Filter:    q.Filter,
		Params: []Param{
			{Key: "t0", Value: q.T0.Unix()},
			{Key: "t1", Value: q.T1.Unix()},
			{Key: "dimension", Value: q.Dimension},
			{Key: "metric", Value: q.Metric},
		},
	}
	if q.Threshold > 0 {
		req.Params = append(req.Params, Param{Key: "threshold", Value: q.Threshold})
	}
	return s.client.Execute(ctx, req, opts...)
}
