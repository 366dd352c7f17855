/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"

	"github.com/advising-app/advising-notify/cmd"
	"github.com/spf13/cobra"
)

type logoutClient interface {
	ClearToken() error
}

// NewLogoutCmd creates the logout command with explicit dependencies.
func NewLogoutCmd(client logoutClient) *cobra.Command {
	if client == nil {
		panic("NewLogoutCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored bearer token",
		Long:  `Remove the stored bearer token. A running follow keeps its current session.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.ClearToken(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

var logoutCmd = NewLogoutCmd(deps)

func init() {
	cmd.RootCmd.AddCommand(logoutCmd)
}
