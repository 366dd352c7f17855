/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/advising-app/advising-notify/cmd"
	"github.com/advising-app/advising-notify/internal/auth"
	"github.com/advising-app/advising-notify/internal/colors"
	"github.com/spf13/cobra"
)

type loginClient interface {
	SaveToken(token string) error
	DeviceToken() (string, error)
	RegisterDevice(ctx context.Context, token string) error
}

// loginNow is the clock used for expiry warnings. Can be changed for testing.
var loginNow = time.Now

// NewLoginCmd creates the login command with explicit dependencies.
func NewLoginCmd(client loginClient) *cobra.Command {
	if client == nil {
		panic("NewLoginCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "login <token>",
		Short: "Store the bearer token",
		Long: `Store the bearer token used for the API and the real-time channel.

A running follow picks the new token up within one credential poll. When a
device token is configured or stored it is registered again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(args[0]), "Bearer "))
			if token == "" {
				return errors.New("login: token cannot be empty")
			}
			if err := client.SaveToken(token); err != nil {
				return fmt.Errorf("login: %w", err)
			}

			claims, err := auth.Inspect(token)
			switch {
			case err != nil:
				fmt.Fprintln(cmd.OutOrStdout(), "Token saved")
			case claims.Subject != "":
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", claims.Subject)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "Token saved")
			}
			if err == nil && claims.Expired(loginNow()) {
				colors.Warning("token is already expired")
			}

			device, err := client.DeviceToken()
			if err != nil || device == "" {
				return nil
			}
			if err := client.RegisterDevice(cmd.Context(), device); err != nil {
				colors.Warning(fmt.Sprintf("device token registration failed: %v", err))
			}
			return nil
		},
	}
}

var loginCmd = NewLoginCmd(deps)

func init() {
	cmd.RootCmd.AddCommand(loginCmd)
}
