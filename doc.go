// Package tetration provides a native Go client for the Cisco Secure
// Workload (Tetration) OpenAPI.
//
// # Features
//
//   - HMAC-SHA256 request signing with an injectable clock
//   - Composable, validated filter expressions for search endpoints
//   - Automatic cursor pagination with Go 1.23+ iterators
//   - Typed errors for precise error handling
//   - Retry with exponential backoff and jitter, isolated in the transport
//   - Functional options for flexible configuration
//
// # Quick Start
//
//	client, err := tetration.NewClient(
//	    tetration.WithBaseURL("https://tetration.example.com"),
//	    tetration.WithAPIKey(apiKey, apiSecret),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	filter, _ := tetration.Contains("user_Application-Name", "SharePoint")
//	for record, err := range client.Inventory.Search(ctx, &tetration.InventorySearch{
//	    ScopeName: "Default",
//	    Filter:    tetration.And(filter),
//	}) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(record.String("host_name"))
//	}
//
// # Error Handling
//
// The package uses typed errors that can be inspected with errors.As:
//
//	_, err := client.Scopes.Get(ctx, "invalid-id")
//	var reqErr *tetration.RequestError
//	if errors.As(err, &reqErr) {
//	    // fix the query; retrying will not help
//	}
//
// tetration.IsRetryable reports whether an error was transient. Transient
// failures are already retried inside the transport, so a retryable error
// means the retry budget was exhausted.
//
// # Generic Queries
//
// Every catalogued endpoint is reachable through Execute without a typed
// service:
//
//	result, err := client.Execute(ctx, &tetration.QueryRequest{
//	    Endpoint:  "flowsearch/topn",
//	    ScopeName: "Default",
//	    Params: []tetration.Param{
//	        {Key: "t0", Value: t0.Unix()},
//	        {Key: "t1", Value: t1.Unix()},
//	        {Key: "dimension", Value: "src_address"},
//	        {Key: "metric", Value: "fwd_pkts"},
//	    },
//	})
package tetration
