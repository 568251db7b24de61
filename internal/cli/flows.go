package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tetraflow/go-tetration"
)

type flowSearchOptions struct {
	scope   string
	filters []string
	hours   int
	limit   int
}

func newFlowsCmd() *cobra.Command {
	opts := &flowSearchOptions{}

	cmd := &cobra.Command{
		Use:   "flows",
		Short: "Search network flow records and report them",
		Example: `  tetrareport flows --scope Default --hours 24
  tetrareport flows --filter dst_port:eq:443 --hours 1 -o flows.txt`,
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

			now := time.Now()
			result, err := client.Flows.SearchAll(cmd.Context(), &tetration.FlowSearch{
				T0:        now.Add(-time.Duration(opts.hours) * time.Hour),
				T1:        now,
				ScopeName: opts.scope,
				Filter:    filter,
				Limit:     opts.limit,
			})
			if err != nil && !tolerablePartial(logger, result, err) {
				return err
			}

			return writeReport(logger, "Flow Search", "flowsearch", result)
		},
	}

	cmd.Flags().StringVar(&opts.scope, "scope", "", "restrict the search to a scope name")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "filter clause field:op:value (repeatable, combined with AND)")
	cmd.Flags().IntVar(&opts.hours, "hours", 1, "how far back the observation window reaches")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "page size requested from the server")

	return cmd
}

type topNOptions struct {
	scope     string
	filters   []string
	hours     int
	dimension string
	metric    string
	threshold int
}

func newTopNCmd() *cobra.Command {
	opts := &topNOptions{}

	cmd := &cobra.Command{
		Use:   "topn",
		Short: "Report the top-N flow aggregates for a dimension",
		Example: `  tetrareport topn --dimension src_address --metric fwd_pkts --hours 24
  tetrareport topn --dimension dst_port --metric rev_bytes --threshold 10`,
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

			now := time.Now()
			result, err := client.Flows.TopN(cmd.Context(), &tetration.TopNQuery{
				T0:        now.Add(-time.Duration(opts.hours) * time.Hour),
				T1:        now,
				ScopeName: opts.scope,
				Filter:    filter,
				Dimension: opts.dimension,
				Metric:    opts.metric,
				Threshold: opts.threshold,
			})
			if err != nil {
				return err
			}

			return writeReport(logger, "Top Flows", "flowsearch/topn", result)
		},
	}

	cmd.Flags().StringVar(&opts.scope, "scope", "", "restrict the search to a scope name")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "filter clause field:op:value (repeatable, combined with AND)")
	cmd.Flags().IntVar(&opts.hours, "hours", 1, "how far back the observation window reaches")
	cmd.Flags().StringVar(&opts.dimension, "dimension", "src_address", "flow field to group by")
	cmd.Flags().StringVar(&opts.metric, "metric", "fwd_pkts", "aggregate metric to rank by")
	cmd.Flags().IntVar(&opts.threshold, "threshold", 10, "number of groups to return")

	return cmd
}
