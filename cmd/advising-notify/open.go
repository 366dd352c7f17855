/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"context"
	"fmt"

	"github.com/advising-app/advising-notify/cmd"
	"github.com/advising-app/advising-notify/internal/nav"
	"github.com/spf13/cobra"
)

type openClient interface {
	Open(ctx context.Context, payload map[string]string) (nav.Target, error)
}

// NewOpenCmd creates the open command with explicit dependencies.
func NewOpenCmd(client openClient) *cobra.Command {
	if client == nil {
		panic("NewOpenCmd: client dependency cannot be nil")
	}

	var appointment string

	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open the notification list or an appointment",
		Long: `Resolve a navigation target and open its deep link.

With --appointment the appointment detail opens, otherwise the
notification list. The link is printed and passed to open_command when
one is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{}
			if appointment != "" {
				payload[nav.PayloadRelatedAppointmentID] = appointment
			}
			if _, err := client.Open(cmd.Context(), payload); err != nil {
				return fmt.Errorf("open: %w", err)
			}
			return nil
		},
	}

	openCmd.Flags().StringVar(&appointment, "appointment", "", "Appointment id to open")
	return openCmd
}

var openCmd = NewOpenCmd(deps)

func init() {
	cmd.RootCmd.AddCommand(openCmd)
}
