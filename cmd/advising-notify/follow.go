/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"context"
	"io"

	"github.com/advising-app/advising-notify/cmd"
	"github.com/spf13/cobra"
)

type followClient interface {
	Follow(ctx context.Context, out io.Writer) error
}

// NewFollowCmd creates the follow command with explicit dependencies.
func NewFollowCmd(client followClient) *cobra.Command {
	if client == nil {
		panic("NewFollowCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "follow",
		Short: "Follow the live notification feed",
		Long: `Follow the live notification feed.

Keeps the real-time channel connected with the stored token, falls back
to polling when the channel is down or silent, prints new notifications
and raises a local alert once per id. With tmux_status enabled the
rendered status_format is published to the @advising_unread option.

USAGE:
    advising-notify follow
    -h, --help         Show this help`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Follow(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

var followCmd = NewFollowCmd(deps)

func init() {
	cmd.RootCmd.AddCommand(followCmd)
}
