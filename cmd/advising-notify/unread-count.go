/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"context"
	"fmt"

	"github.com/advising-app/advising-notify/cmd"
	"github.com/spf13/cobra"
)

type unreadCountClient interface {
	UnreadCount(ctx context.Context) (int64, error)
}

// NewUnreadCountCmd creates the unread-count command with explicit dependencies.
func NewUnreadCountCmd(client unreadCountClient) *cobra.Command {
	if client == nil {
		panic("NewUnreadCountCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "unread-count",
		Short: "Print the server's unread counter",
		Long:  `Print the server's unread counter.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := client.UnreadCount(cmd.Context())
			if err != nil {
				return fmt.Errorf("unread-count: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
}

var unreadCountCmd = NewUnreadCountCmd(deps)

func init() {
	cmd.RootCmd.AddCommand(unreadCountCmd)
}
