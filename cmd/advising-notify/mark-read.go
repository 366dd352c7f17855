/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/advising-app/advising-notify/cmd"
	"github.com/advising-app/advising-notify/internal/app"
	"github.com/spf13/cobra"
)

// NewMarkReadCmd creates the mark-read command with explicit dependencies.
func NewMarkReadCmd(client app.MarkReadClient) *cobra.Command {
	if client == nil {
		panic("NewMarkReadCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "mark-read <id>...",
		Short: "Mark notifications as read",
		Long: `Mark one or more notifications as read.

Several ids are sent in a single batch request.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.NewMarkReadUseCase(client).Execute(cmd.Context(), args)
		},
	}
}

// NewMarkAllReadCmd creates the mark-all-read command with explicit dependencies.
func NewMarkAllReadCmd(client app.MarkReadClient) *cobra.Command {
	if client == nil {
		panic("NewMarkAllReadCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "mark-all-read",
		Short: "Mark every notification as read",
		Long:  `Mark every notification as read.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.NewMarkReadUseCase(client).ExecuteAll(cmd.Context())
		},
	}
}

var (
	markReadCmd    = NewMarkReadCmd(deps)
	markAllReadCmd = NewMarkAllReadCmd(deps)
)

func init() {
	cmd.RootCmd.AddCommand(markReadCmd, markAllReadCmd)
}
