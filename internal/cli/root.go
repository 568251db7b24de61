// Package cli implements the tetrareport command tree.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tetraflow/go-tetration"
	"github.com/tetraflow/go-tetration/internal/config"
	"github.com/tetraflow/go-tetration/internal/report"
)

var (
	envFile      string
	outputPath   string
	templatePath string
	insecure     bool
	verbose      bool
	maxPages     int
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "tetrareport",
	Short: "Query a Secure Workload appliance and render reports",
	Long: `tetrareport issues signed queries against the Cisco Secure Workload
(Tetration) OpenAPI and renders the results into text reports.

Credentials are read from the environment (TETRATION_ENDPOINT,
TETRATION_API_KEY, TETRATION_API_SECRET), optionally via a .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file with credentials")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "write the report to a file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&templatePath, "template", "", "custom report template file")
	rootCmd.PersistentFlags().BoolVar(&insecure, "insecure", false, "skip TLS certificate verification (lab appliances only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "cap on pages fetched per paginated query")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "per-attempt request timeout")

	rootCmd.AddCommand(newScopesCmd())
	rootCmd.AddCommand(newApplicationsCmd())
	rootCmd.AddCommand(newInventoryCmd())
	rootCmd.AddCommand(newFlowsCmd())
	rootCmd.AddCommand(newTopNCmd())
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newClient(logger *zap.Logger) (*tetration.Client, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	opts := []tetration.ClientOption{
		tetration.WithBaseURL(cfg.Endpoint),
		tetration.WithAPIKey(cfg.APIKey, cfg.APISecret),
		tetration.WithLogger(logger),
		tetration.WithTimeout(timeout),
		tetration.WithUserAgent("tetrareport/1.0"),
	}
	if maxPages > 0 {
		opts = append(opts, tetration.WithMaxPages(maxPages))
	}
	if insecure || cfg.InsecureTLS {
		opts = append(opts, tetration.WithInsecureTLS())
	}

	return tetration.NewClient(opts...)
}

// parseFilters turns repeated --filter field:op:value flags into a single
// AND filter. A single clause is passed through without the wrapper.
func parseFilters(specs []string) (tetration.Filter, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	leaves := make([]tetration.Filter, 0, len(specs))
	for _, spec := range specs {
		parts := strings.SplitN(spec, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid filter %q: want field:op:value", spec)
		}
		field, op, value := parts[0], parts[1], parts[2]

		var (
			leaf *tetration.Leaf
			err  error
		)
		switch tetration.Operator(op) {
		case tetration.OpEq:
			leaf, err = tetration.Eq(field, value)
		case tetration.OpNeq:
			leaf, err = tetration.Neq(field, value)
		case tetration.OpContains:
			leaf, err = tetration.Contains(field, value)
		case tetration.OpNotContains:
			leaf, err = tetration.NotContains(field, value)
		case tetration.OpGt, tetration.OpLt, tetration.OpGte, tetration.OpLte:
			leaf, err = numericLeaf(field, tetration.Operator(op), value)
		case tetration.OpIn:
			vals := strings.Split(value, ",")
			anyVals := make([]any, len(vals))
			for i, v := range vals {
				anyVals[i] = v
			}
			leaf, err = tetration.In(field, anyVals...)
		default:
			return nil, fmt.Errorf("invalid filter %q: unknown operator %q", spec, op)
		}
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, leaf)
	}

	if len(leaves) == 1 {
		return leaves[0], nil
	}
	return tetration.And(leaves[0], leaves[1:]...), nil
}

func numericLeaf(field string, op tetration.Operator, value string) (*tetration.Leaf, error) {
	var n float64
	if _, err := fmt.Sscanf(value, "%g", &n); err != nil {
		return nil, fmt.Errorf("operator %s needs a numeric value, got %q", op, value)
	}
	switch op {
	case tetration.OpGt:
		return tetration.Gt(field, n)
	case tetration.OpLt:
		return tetration.Lt(field, n)
	case tetration.OpGte:
		return tetration.Gte(field, n)
	default:
		return tetration.Lte(field, n)
	}
}

// writeReport renders result into the configured output.
func writeReport(logger *zap.Logger, title, endpoint string, result *tetration.QueryResult) error {
	tmplText := ""
	if templatePath != "" {
		raw, err := os.ReadFile(templatePath)
		if err != nil {
			return fmt.Errorf("reading template: %w", err)
		}
		tmplText = string(raw)
	}

	renderer := report.NewRenderer(logger)
	return renderer.Write(outputPath, tmplText, &report.Data{
		Title:       title,
		GeneratedAt: time.Now(),
		Endpoint:    endpoint,
		Records:     result.Records,
		Total:       len(result.Records),
	})
}
