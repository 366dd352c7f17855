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

type registerDeviceClient interface {
	DeviceToken() (string, error)
	RegisterDevice(ctx context.Context, token string) error
	RefreshDevice(ctx context.Context, token string)
}

// NewRegisterDeviceCmd creates the register-device command with explicit dependencies.
func NewRegisterDeviceCmd(client registerDeviceClient) *cobra.Command {
	if client == nil {
		panic("NewRegisterDeviceCmd: client dependency cannot be nil")
	}

	var refresh bool

	registerCmd := &cobra.Command{
		Use:   "register-device [token]",
		Short: "Register a push device token",
		Long: `Store a push device token and post it to the backend.

Without an argument the configured device_token, or the last stored one,
is registered again. With --refresh the token is handled as a provider
token refresh: failures are logged instead of reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				stored, err := client.DeviceToken()
				if err != nil {
					return fmt.Errorf("register-device: %w", err)
				}
				token = stored
			}
			if token == "" {
				return errors.New("register-device: no device token given or stored")
			}
			if refresh {
				client.RefreshDevice(cmd.Context(), token)
				colors.Success("Device token refresh sent")
				return nil
			}
			if err := client.RegisterDevice(cmd.Context(), token); err != nil {
				return fmt.Errorf("register-device: %w", err)
			}
			colors.Success("Device token registered")
			return nil
		},
	}

	registerCmd.Flags().BoolVar(&refresh, "refresh", false, "Treat the token as a refreshed provider token")
	return registerCmd
}

var registerDeviceCmd = NewRegisterDeviceCmd(deps)

func init() {
	cmd.RootCmd.AddCommand(registerDeviceCmd)
}
