package format

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/advising-app/advising-notify/internal/colors"
	"github.com/advising-app/advising-notify/internal/domain"
)

const dateLayout = "2006-01-02 15:04"

// formatDate renders CreatedAt for display, falling back to the raw value.
func formatDate(n domain.Notification) string {
	t := n.CreatedTime()
	if t.IsZero() {
		return n.CreatedAt
	}
	return t.Local().Format(dateLayout)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func readMarker(n domain.Notification) string {
	if n.Read {
		return " "
	}
	return "*"
}

func displayTitle(n domain.Notification) string {
	if n.Title != "" {
		return n.Title
	}
	return n.Message
}

// SimpleFormatter prints one line per notification.
type SimpleFormatter struct{}

// NewSimpleFormatter creates a new SimpleFormatter.
func NewSimpleFormatter() *SimpleFormatter {
	return &SimpleFormatter{}
}

// FormatNotifications formats notifications in simple format. Unread
// records are marked with '*'.
func (f *SimpleFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	for _, n := range notifications {
		_, err := fmt.Fprintf(writer, "%-6d %s %-16s  %s\n", n.ID, readMarker(n), formatDate(n), truncate(displayTitle(n), 60))
		if err != nil {
			return err
		}
	}
	return nil
}

// CompactFormatter prints titles only.
type CompactFormatter struct{}

// NewCompactFormatter creates a new CompactFormatter.
func NewCompactFormatter() *CompactFormatter {
	return &CompactFormatter{}
}

// FormatNotifications formats notifications in compact format.
func (f *CompactFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	for _, n := range notifications {
		if _, err := fmt.Fprintln(writer, truncate(displayTitle(n), 60)); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter formats notifications as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatNotifications formats notifications as a JSON array.
func (f *JSONFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	data, err := json.MarshalIndent(notifications, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal notifications to JSON: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(writer)
	return err
}

// FeedEvent prints one live feed line for follow mode.
func FeedEvent(w io.Writer, n domain.Notification, now time.Time) error {
	color := colors.Green
	if n.Read {
		color = ""
	}
	line := fmt.Sprintf("[%s] #%d %s", now.Format("15:04:05"), n.ID, displayTitle(n))
	if n.Message != "" && n.Title != "" {
		line += " - " + n.Message
	}
	if color != "" {
		line = color + line + colors.Reset
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	if n.HasAppointment() {
		_, err := fmt.Fprintf(w, "  └─ appointment %s\n", n.AppointmentIDString())
		return err
	}
	return nil
}

// FormatSummary writes the unread counter and connection state.
func FormatSummary(w io.Writer, unread int64, connectionState string) error {
	if unread == 0 {
		_, err := fmt.Fprintf(w, "No unread notifications")
		if err != nil {
			return err
		}
	} else {
		_, err := fmt.Fprintf(w, "Unread notifications: %d", unread)
		if err != nil {
			return err
		}
	}
	if connectionState != "" {
		_, err := fmt.Fprintf(w, " (%s)", connectionState)
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
