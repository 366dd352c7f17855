/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/advising-app/advising-notify/cmd"
	"github.com/advising-app/advising-notify/internal/app"
	"github.com/spf13/cobra"
)

// NewDeleteCmd creates the delete command with explicit dependencies.
func NewDeleteCmd(client app.DeleteClient) *cobra.Command {
	if client == nil {
		panic("NewDeleteCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete notifications",
		Long:  `Delete one or more notifications. Several ids are sent in a single batch request.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.NewDeleteUseCase(client).Execute(cmd.Context(), args)
		},
	}
}

var deleteCmd = NewDeleteCmd(deps)

func init() {
	cmd.RootCmd.AddCommand(deleteCmd)
}
