/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/advising-app/advising-notify/cmd"
	"github.com/advising-app/advising-notify/internal/push"
	"github.com/spf13/cobra"
)

type pushClient interface {
	ForegroundMessage(ctx context.Context, msg push.RemoteMessage) error
	PressAlert(ctx context.Context, payload map[string]string) error
}

// NewPushCmd creates the push command with explicit dependencies.
func NewPushCmd(client pushClient) *cobra.Command {
	if client == nil {
		panic("NewPushCmd: client dependency cannot be nil")
	}

	var press bool

	pushCmd := &cobra.Command{
		Use:   "push <file|->",
		Short: "Deliver a remote message as a foreground alert",
		Long: `Read a remote message as JSON and present it as a local alert.

The message has the push provider shape:
    {"notification": {"title": "...", "body": "..."}, "data": {"relatedAppointmentId": "12"}}

With --press the alert is also treated as tapped and its target opened.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readRemoteMessage(args[0], cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("push: %w", err)
			}
			if err := client.ForegroundMessage(cmd.Context(), msg); err != nil {
				return fmt.Errorf("push: %w", err)
			}
			if press {
				return client.PressAlert(cmd.Context(), push.AlertFromMessage(msg).Data)
			}
			return nil
		},
	}

	pushCmd.Flags().BoolVar(&press, "press", false, "Open the alert target after presenting it")
	return pushCmd
}

// readRemoteMessage decodes a message from path, or from stdin for "-".
func readRemoteMessage(path string, stdin io.Reader) (push.RemoteMessage, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return push.RemoteMessage{}, err
		}
		defer f.Close()
		r = f
	}
	var msg push.RemoteMessage
	if err := json.NewDecoder(r).Decode(&msg); err != nil {
		return push.RemoteMessage{}, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}

var pushCmd = NewPushCmd(deps)

func init() {
	cmd.RootCmd.AddCommand(pushCmd)
}
