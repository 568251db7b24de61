package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tetraflow/go-tetration"
)

type inventoryOptions struct {
	scope   string
	filters []string
	limit   int
}

func newInventoryCmd() *cobra.Command {
	opts := &inventoryOptions{}

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Search workload inventory and report matching records",
		Example: `  tetrareport inventory --scope mslab --filter user_Application-Name:contains:SharePoint
  tetrareport inventory --filter os:eq:linux --filter host_name:contains:web -o inventory.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			filter, err := parseFilters(opts.filters)
			if err != nil {
				return err
			}

			client, err := newClient(logger)
			if err != nil {
				return err
			}

			result, err := client.Inventory.SearchAll(cmd.Context(), &tetration.InventorySearch{
				ScopeName: opts.scope,
				Filter:    filter,
				Limit:     opts.limit,
			})
			if err != nil && !tolerablePartial(logger, result, err) {
				return err
			}

			return writeReport(logger, "Inventory Search", "inventory/search", result)
		},
	}

	cmd.Flags().StringVar(&opts.scope, "scope", "", "restrict the search to a scope name")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "filter clause field:op:value (repeatable, combined with AND)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "page size requested from the server")

	return cmd
}

// tolerablePartial reports whether err is a pagination cap with partial
// data worth rendering anyway.
func tolerablePartial(logger *zap.Logger, result *tetration.QueryResult, err error) bool {
	var ple *tetration.PaginationLimitError
	if errors.As(err, &ple) && result != nil && len(result.Records) > 0 {
		logger.Warn("pagination limit hit; rendering partial results",
			zap.String("endpoint", ple.Endpoint),
			zap.Int("pages", ple.Pages),
			zap.Int("records", len(result.Records)))
		return true
	}
	return false
}
