// Package search filters notification records by a query. Substring,
// regex and token strategies share the Provider interface.
package search

import (
	"fmt"

	"github.com/advising-app/advising-notify/internal/domain"
)

// Searchable fields.
const (
	FieldTitle       = "title"
	FieldMessage     = "message"
	FieldType        = "type"
	FieldAppointment = "appointment"
)

// Provider defines the interface for search providers.
type Provider interface {
	// Match returns true if the notification matches the search query.
	Match(n domain.Notification, query string) bool

	// Name returns the provider name for identification and debugging.
	Name() string
}

// Options holds configuration options for creating search providers.
type Options struct {
	CaseInsensitive bool     // If true, searches ignore case sensitivity
	Fields          []string // Fields to search in
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		CaseInsensitive: false,
		Fields:          []string{FieldTitle, FieldMessage, FieldType},
	}
}

// Option is a function that modifies search options.
type Option func(*Options)

// WithCaseInsensitive sets case-insensitive search.
func WithCaseInsensitive(enabled bool) Option {
	return func(o *Options) {
		o.CaseInsensitive = enabled
	}
}

// WithFields sets the fields to search in.
// Valid fields: "title", "message", "type", "appointment".
func WithFields(fields []string) Option {
	return func(o *Options) {
		o.Fields = fields
	}
}

func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// fieldValue returns the text of one field, "" for unknown fields.
func fieldValue(n domain.Notification, field string) string {
	switch field {
	case FieldTitle:
		return n.Title
	case FieldMessage:
		return n.Message
	case FieldType:
		return n.Type
	case FieldAppointment:
		return n.AppointmentIDString()
	default:
		return ""
	}
}

// Modes accepted by New.
const (
	ModeSubstring = "substring"
	ModeRegex     = "regex"
	ModeToken     = "token"
)

// New returns the provider for mode.
func New(mode string, opts ...Option) (Provider, error) {
	switch mode {
	case "", ModeSubstring:
		return NewSubstringProvider(opts...), nil
	case ModeRegex:
		return NewRegexProvider(opts...), nil
	case ModeToken:
		return NewTokenProvider(opts...), nil
	default:
		return nil, fmt.Errorf("unknown search mode: %s (must be substring, regex, token)", mode)
	}
}

// Filter keeps the records p matches, in order. An empty query keeps all.
func Filter(p Provider, records []domain.Notification, query string) []domain.Notification {
	if query == "" {
		return records
	}
	out := make([]domain.Notification, 0, len(records))
	for _, n := range records {
		if p.Match(n, query) {
			out = append(out, n)
		}
	}
	return out
}
