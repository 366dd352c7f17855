// Package format provides output formatting functionality for CLI commands.
// It includes formatters for different output styles and notification display.
package format

import (
	"io"

	"github.com/advising-app/advising-notify/internal/domain"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// FormatNotifications formats notifications and writes to the writer.
	FormatNotifications(notifications []domain.Notification, writer io.Writer) error
}

// FormatterType represents the type of formatter to use.
type FormatterType string

const (
	// FormatterTypeSimple displays one line per notification with ID, date, read marker and title.
	FormatterTypeSimple FormatterType = "simple"

	// FormatterTypeTable displays notifications in a bordered table.
	FormatterTypeTable FormatterType = "table"

	// FormatterTypeCompact displays only titles.
	FormatterTypeCompact FormatterType = "compact"

	// FormatterTypeJSON displays notifications in JSON format.
	FormatterTypeJSON FormatterType = "json"
)

// Types lists the accepted formatter names.
var Types = []FormatterType{FormatterTypeSimple, FormatterTypeTable, FormatterTypeCompact, FormatterTypeJSON}

// NewFormatter creates a new formatter of the specified type.
func NewFormatter(formatterType FormatterType) Formatter {
	switch formatterType {
	case FormatterTypeTable:
		return NewTableFormatter()
	case FormatterTypeCompact:
		return NewCompactFormatter()
	case FormatterTypeJSON:
		return NewJSONFormatter()
	default:
		// Default to simple formatter for unknown types
		return NewSimpleFormatter()
	}
}

// GetFormatter returns the formatter for a name, defaulting to simple.
func GetFormatter(name string) Formatter {
	return NewFormatter(FormatterType(name))
}

// IsValid reports whether name is a known formatter type.
func IsValid(name string) bool {
	for _, t := range Types {
		if string(t) == name {
			return true
		}
	}
	return false
}
