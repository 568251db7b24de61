package cli

import (
	"github.com/spf13/cobra"

	"github.com/tetraflow/go-tetration"
)

func newScopesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scopes",
		Short: "Report all application scopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			client, err := newClient(logger)
			if err != nil {
				return err
			}

			result, err := client.Execute(cmd.Context(), &tetration.QueryRequest{Endpoint: "app_scopes"})
			if err != nil {
				return err
			}

			return writeReport(logger, "Application Scopes", "app_scopes", result)
		},
	}
}

func newApplicationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "applications",
		Short: "Report all application workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			client, err := newClient(logger)
			if err != nil {
				return err
			}

			result, err := client.Execute(cmd.Context(), &tetration.QueryRequest{Endpoint: "applications"})
			if err != nil {
				return err
			}

			return writeReport(logger, "Application Workspaces", "applications", result)
		},
	}
}
