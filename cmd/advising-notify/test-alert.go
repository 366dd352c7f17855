/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/advising-app/advising-notify/cmd"
	"github.com/advising-app/advising-notify/internal/colors"
	"github.com/spf13/cobra"
)

type testAlertClient interface {
	AlertStatus(ctx context.Context) (available, permitted bool, err error)
	TestAlert(ctx context.Context) error
}

// NewTestAlertCmd creates the test-alert command with explicit dependencies.
func NewTestAlertCmd(client testAlertClient) *cobra.Command {
	if client == nil {
		panic("NewTestAlertCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "test-alert",
		Short: "Raise a local test alert",
		Long:  `Raise a local test alert through the configured alert_backend. The feed is not touched.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			available, permitted, err := client.AlertStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("test-alert: %w", err)
			}
			if !available {
				return errors.New("test-alert: no alert backend available, set alert_backend to tmux or hook")
			}
			if !permitted {
				colors.Warning("Alert permission was not granted, the alert may not show")
			}
			if err := client.TestAlert(cmd.Context()); err != nil {
				return fmt.Errorf("test-alert: %w", err)
			}
			colors.Success("Test alert sent")
			return nil
		},
	}
}

var testAlertCmd = NewTestAlertCmd(deps)

func init() {
	cmd.RootCmd.AddCommand(testAlertCmd)
}
