package tetration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strconv"

	"github.com/tetraflow/go-tetration/internal/api"
)

// Param is one extra query parameter. Parameters are an ordered sequence,
// not a map, so requests serialize the same way every time they are built
// from the same logical input.
type Param struct {
	Key   string
	Value any
}

// QueryRequest describes one query against a catalogued endpoint. Build a
// fresh value per call; it is not modified by Execute.
type QueryRequest struct {
	// Endpoint is the logical endpoint name, e.g. "inventory/search".
	Endpoint string

	// ScopeName restricts the query to a named scope. Optional.
	ScopeName string

	// Filter is the search predicate for endpoints that accept one. Optional.
	Filter Filter

	// Params are extra parameters: the query string for GET endpoints,
	// additional body fields for POST endpoints.
	Params []Param
}

// QueryResult is a normalized result set. Records preserve response order
// across pages.
type QueryResult struct {
	Records    []Record
	Total      *int
	NextCursor string
}

// resultEnvelope is the paged object form of a search response.
type resultEnvelope struct {
	Results []Record `json:"results"`
	Offset  string   `json:"offset"`
	Count   *int     `json:"count"`
}

// Execute runs a query end to end: catalog validation, request
// construction, signing, transport, and pagination for endpoints that
// page. It returns either a complete result or the first terminal error.
// The transport has already retried transient failures; no retrying
// happens at this layer.
func (c *Client) Execute(ctx context.Context, q *QueryRequest, opts ...RequestOption) (*QueryResult, error) {
	ep, err := lookupEndpoint(q.Endpoint)
	if err != nil {
		return nil, err
	}
	if ep.Paginated {
		return c.fetchAll(ctx, ep, q, opts...)
	}
	return c.doQuery(ctx, ep, q, "", opts...)
}

// fetchAll drives the cursor loop for paginated endpoints, concatenating
// records in response order. The page cap bounds runaway pagination
// against a misbehaving server; when it is hit the accumulated partial
// result is returned alongside the error so the caller can decide whether
// partial data is acceptable.
func (c *Client) fetchAll(ctx context.Context, ep Endpoint, q *QueryRequest, opts ...RequestOption) (*QueryResult, error) {
	acc := &QueryResult{}
	cursor := ""

	for page := 1; ; page++ {
		res, err := c.doQuery(ctx, ep, q, cursor, opts...)
		if err != nil {
			return nil, err
		}

		acc.Records = append(acc.Records, res.Records...)
		if res.Total != nil {
			acc.Total = res.Total
		}

		if res.NextCursor == "" {
			return acc, nil
		}
		if page >= c.maxPages {
			return acc, &PaginationLimitError{Endpoint: ep.Name, Pages: c.maxPages, Partial: acc}
		}
		cursor = res.NextCursor
	}
}

// paginate is the lazy counterpart of fetchAll: records are yielded as
// pages arrive instead of being accumulated.
func (c *Client) paginate(ctx context.Context, q *QueryRequest, opts ...RequestOption) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		ep, err := lookupEndpoint(q.Endpoint)
		if err != nil {
			yield(nil, err)
			return
		}

		cursor := ""
		for page := 1; ; page++ {
			res, err := c.doQuery(ctx, ep, q, cursor, opts...)
			if err != nil {
				yield(nil, err)
				return
			}

			for _, rec := range res.Records {
				if err := ctx.Err(); err != nil {
					yield(nil, &CancelledError{Endpoint: ep.Name, Err: err})
					return
				}
				if !yield(rec, nil) {
					return
				}
			}

			if res.NextCursor == "" {
				return
			}
			if page >= c.maxPages {
				yield(nil, &PaginationLimitError{Endpoint: ep.Name, Pages: c.maxPages})
				return
			}
			cursor = res.NextCursor
		}
	}
}

// doQuery issues a single page of a query and classifies the outcome.
func (c *Client) doQuery(ctx context.Context, ep Endpoint, q *QueryRequest, cursor string, opts ...RequestOption) (*QueryResult, error) {
	req, err := c.buildQueryRequest(ep, q, cursor, opts...)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, wrapTransportErr(ctx, ep.Name, attemptsOf(err), err)
	}
	if resp.StatusCode >= 400 {
		return nil, parseError(ep.Name, resp.Attempts, resp.StatusCode, resp.Body, resp.Headers)
	}

	result, err := parseResult(resp.Body)
	if err != nil {
		return nil, &RequestError{APIError: APIError{
			StatusCode: resp.StatusCode,
			Message:    err.Error(),
			Endpoint:   ep.Name,
			Attempts:   resp.Attempts,
		}}
	}
	return result, nil
}

// buildQueryRequest assembles the signed request for one page. GET
// endpoints carry parameters in the query string in insertion order; POST
// endpoints carry a canonical JSON body.
func (c *Client) buildQueryRequest(ep Endpoint, q *QueryRequest, cursor string, opts ...RequestOption) (*api.Request, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	path := c.basePath + "/" + ep.Name

	if !ep.RequiresBody {
		var params []api.Param
		if q.ScopeName != "" {
			params = append(params, api.Param{Key: "scopeName", Value: q.ScopeName})
		}
		for _, p := range q.Params {
			params = append(params, api.Param{Key: p.Key, Value: paramString(p.Value)})
		}
		if cursor != "" {
			params = append(params, api.Param{Key: "offset", Value: cursor})
		}
		return &api.Request{
			Method:  ep.Method,
			Path:    path,
			Query:   params,
			Headers: reqCfg.headers,
		}, nil
	}

	body, err := encodeQueryBody(q, cursor)
	if err != nil {
		return nil, err
	}

	return &api.Request{
		Method:  ep.Method,
		Path:    path,
		Body:    body,
		Headers: reqCfg.headers,
	}, nil
}

// encodeQueryBody builds the canonical body bytes: scopeName, then
// filter, then extra parameters in insertion order. The same logical
// input always yields the same bytes, so signatures are reproducible.
// An empty criteria set serializes as {}: scope and filter are optional
// on search endpoints, and an unconstrained search is a valid query.
func encodeQueryBody(q *QueryRequest, cursor string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true

	writeField := func(key string, raw []byte) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteByte('"')
		buf.WriteString(key)
		buf.WriteString(`":`)
		buf.Write(raw)
	}

	if q.ScopeName != "" {
		raw, err := marshalValue(q.ScopeName)
		if err != nil {
			return nil, err
		}
		writeField("scopeName", raw)
	}

	if q.Filter != nil {
		raw, err := marshalFilter(q.Filter)
		if err != nil {
			return nil, err
		}
		writeField("filter", raw)
	}

	for _, p := range q.Params {
		if cursor != "" && p.Key == "offset" {
			continue // the paginator's cursor supersedes a caller-supplied offset
		}
		raw, err := marshalValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding parameter %q: %w", p.Key, err)
		}
		writeField(p.Key, raw)
	}

	if cursor != "" {
		raw, err := marshalValue(cursor)
		if err != nil {
			return nil, err
		}
		writeField("offset", raw)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalValue serializes a single JSON value without HTML escaping.
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// paramString renders a parameter value for the query string.
func paramString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// parseResult normalizes a 2xx response body. Search endpoints return an
// envelope object with results and an optional continuation offset;
// collection endpoints return a bare array.
func parseResult(body []byte) (*QueryResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &QueryResult{}, nil
	}

	switch trimmed[0] {
	case '[':
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("parsing response array: %w", err)
		}
		return &QueryResult{Records: records}, nil
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, fmt.Errorf("parsing response object: %w", err)
		}
		if _, ok := probe["results"]; !ok {
			// An object response without a results field is a single record.
			var rec Record
			if err := json.Unmarshal(trimmed, &rec); err != nil {
				return nil, fmt.Errorf("parsing response object: %w", err)
			}
			return &QueryResult{Records: []Record{rec}}, nil
		}
		var env resultEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("parsing response envelope: %w", err)
		}
		return &QueryResult{Records: env.Results, Total: env.Count, NextCursor: env.Offset}, nil
	default:
		return nil, fmt.Errorf("unexpected response payload")
	}
}

// attemptsOf extracts the attempt count from a transport-level failure.
func attemptsOf(err error) int {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Attempts
	}
	return 1
}
