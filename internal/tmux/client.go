// Package tmux runs the handful of tmux commands used to surface alerts
// and the unread counter inside a tmux session.
package tmux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/advising-app/advising-notify/internal/colors"
)

var (
	// ErrTmuxNotRunning is returned when tmux server is not available.
	ErrTmuxNotRunning = errors.New("tmux server is not running")
)

// DefaultTimeout is the default timeout for tmux commands.
const DefaultTimeout = 5 * time.Second

// UnreadOption is the user option holding the unread counter, for use in
// status-right as #{@advising_unread}.
const UnreadOption = "@advising_unread"

// Client is the subset of tmux used by this program.
type Client interface {
	// HasSession reports whether a tmux server is reachable.
	HasSession(ctx context.Context) (bool, error)
	// DisplayMessage shows msg in the status line of attached clients.
	DisplayMessage(ctx context.Context, msg string, duration time.Duration) error
	// SetStatusOption sets a global option.
	SetStatusOption(ctx context.Context, name, value string) error
	// Run executes a tmux command with the given arguments.
	Run(ctx context.Context, args ...string) (string, string, error)
}

// execFunc runs a command and returns stdout and stderr.
type execFunc func(ctx context.Context, name string, args ...string) (string, string, error)

func execCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// DefaultClient implements Client using the tmux binary.
type DefaultClient struct {
	socketPath string
	timeout    time.Duration
	exec       execFunc
}

var _ Client = (*DefaultClient)(nil)

// ClientOption is a functional option for configuring a DefaultClient.
type ClientOption func(*DefaultClient)

// WithSocketPath sets the tmux socket name (tmux -L).
func WithSocketPath(socketPath string) ClientOption {
	return func(c *DefaultClient) {
		c.socketPath = socketPath
	}
}

// WithTimeout sets the timeout for tmux command execution.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *DefaultClient) {
		c.timeout = timeout
	}
}

// NewDefaultClient creates a new DefaultClient with the given options.
func NewDefaultClient(opts ...ClientOption) *DefaultClient {
	client := &DefaultClient{
		timeout: DefaultTimeout,
		exec:    execCommand,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Run executes a tmux command with the given arguments.
// It returns stdout, stderr, and any error that occurred.
func (c *DefaultClient) Run(ctx context.Context, args ...string) (string, string, error) {
	start := time.Now()
	command := ""
	if len(args) > 0 {
		command = args[0]
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmdArgs := []string{}
	if c.socketPath != "" {
		cmdArgs = append(cmdArgs, "-L", c.socketPath)
	}
	cmdArgs = append(cmdArgs, args...)

	stdout, stderr, err := c.exec(ctx, "tmux", cmdArgs...)
	fields := map[string]interface{}{"args_count": len(args), "duration_seconds": time.Since(start).Seconds()}
	if err != nil {
		colors.StructuredError("tmux", "run", "failed", err, command, fields)
		return stdout, stderr, fmt.Errorf("tmux command %v failed: %w", args, err)
	}
	colors.StructuredDebug("tmux", "run", "completed", nil, command, fields)
	return stdout, stderr, nil
}

// HasSession checks if tmux server is running.
func (c *DefaultClient) HasSession(ctx context.Context) (bool, error) {
	_, stderr, err := c.Run(ctx, "has-session")
	if err != nil {
		if stderr != "" {
			colors.Debug("stderr: " + stderr)
		}
		return false, ErrTmuxNotRunning
	}
	return true, nil
}

// DisplayMessage shows msg on every attached client for duration.
// tmux expands #{...} formats, so '#' is doubled.
func (c *DefaultClient) DisplayMessage(ctx context.Context, msg string, duration time.Duration) error {
	if ok, err := c.HasSession(ctx); err != nil || !ok {
		return ErrTmuxNotRunning
	}
	args := []string{"display-message"}
	if duration > 0 {
		args = append(args, "-d", fmt.Sprintf("%d", duration.Milliseconds()))
	}
	args = append(args, strings.ReplaceAll(msg, "#", "##"))
	if _, stderr, err := c.Run(ctx, args...); err != nil {
		if stderr != "" {
			colors.Debug("stderr: " + stderr)
		}
		return fmt.Errorf("failed to display message: %w", err)
	}
	return nil
}

// SetStatusOption sets a global tmux option.
func (c *DefaultClient) SetStatusOption(ctx context.Context, name, value string) error {
	if ok, err := c.HasSession(ctx); err != nil || !ok {
		return ErrTmuxNotRunning
	}
	if _, stderr, err := c.Run(ctx, "set", "-g", name, value); err != nil {
		if stderr != "" {
			colors.Debug("stderr: " + stderr)
		}
		return fmt.Errorf("failed to set status option %s: %w", name, err)
	}
	return nil
}
