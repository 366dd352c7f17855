package nav

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"strings"
	"sync/atomic"
)

// Scheme of the deep links written by CLISurface.
const Scheme = "advising"

// DeepLink renders t as a URL.
func DeepLink(t Target) string {
	u := url.URL{Scheme: Scheme}
	switch t.Screen {
	case ScreenAppointmentDetail:
		u.Host = "appointments"
		u.Path = "/" + t.AppointmentID
	default:
		u.Host = "notifications"
	}
	return u.String()
}

// CLISurface prints deep links and optionally hands them to an opener
// command such as xdg-open.
type CLISurface struct {
	out     io.Writer
	command []string
	ready   atomic.Bool
	run     func(ctx context.Context, name string, args ...string) error
}

var _ Surface = (*CLISurface)(nil)

// NewCLISurface creates a surface writing to out. openCommand is split on
// whitespace; the link is appended as the last argument.
func NewCLISurface(out io.Writer, openCommand string) *CLISurface {
	s := &CLISurface{
		out:     out,
		command: strings.Fields(openCommand),
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
	s.ready.Store(true)
	return s
}

// SetReady toggles readiness.
func (s *CLISurface) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Ready reports whether targets can be dispatched.
func (s *CLISurface) Ready() bool {
	return s.ready.Load()
}

// Navigate writes the deep link and runs the opener.
func (s *CLISurface) Navigate(ctx context.Context, t Target) error {
	link := DeepLink(t)
	if _, err := fmt.Fprintln(s.out, link); err != nil {
		return err
	}
	if len(s.command) == 0 {
		return nil
	}
	args := append(append([]string{}, s.command[1:]...), link)
	if err := s.run(ctx, s.command[0], args...); err != nil {
		return fmt.Errorf("open %s: %w", link, err)
	}
	return nil
}
