/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/advising-app/advising-notify/cmd"
	"github.com/advising-app/advising-notify/internal/app"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command with explicit dependencies.
func NewStatusCmd(client app.StatusClient) *cobra.Command {
	if client == nil {
		panic("NewStatusCmd: client dependency cannot be nil")
	}

	var formatValue string

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the unread summary",
		Long: `Show the unread summary.

--format accepts summary (default), a preset (count-only, compact,
detailed, connection) or a template such as "{{unread-count}} new".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ValidateStatusFormat(formatValue); err != nil {
				return err
			}
			return app.NewStatusUseCase(client).Execute(cmd.Context(), formatValue, "", cmd.OutOrStdout())
		},
	}

	statusCmd.Flags().StringVar(&formatValue, "format", app.StatusFormatSummary, "Output format: summary, a preset name or a template")
	return statusCmd
}

var statusCmd = NewStatusCmd(deps)

func init() {
	cmd.RootCmd.AddCommand(statusCmd)
}
