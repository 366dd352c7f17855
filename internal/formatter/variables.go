package formatter

import (
	"fmt"
	"strconv"

	"github.com/advising-app/advising-notify/internal/domain"
)

// VariableContext contains all data needed for template variable resolution.
type VariableContext struct {
	UnreadCount int64
	// TotalCount is the number of records loaded in the feed.
	TotalCount int
	ReadCount  int

	LatestTitle         string
	LatestMessage       string
	LatestAppointmentID string

	HasUnread       bool
	ConnectionState string
}

// NewVariableContext summarizes a feed. records are in display order,
// so the first one is the latest.
func NewVariableContext(records []domain.Notification, unread int64, connectionState string) VariableContext {
	ctx := VariableContext{
		UnreadCount:     unread,
		TotalCount:      len(records),
		HasUnread:       unread > 0,
		ConnectionState: connectionState,
	}
	for _, n := range records {
		if n.Read {
			ctx.ReadCount++
		}
	}
	if len(records) > 0 {
		latest := records[0]
		ctx.LatestTitle = latest.Title
		ctx.LatestMessage = latest.Message
		ctx.LatestAppointmentID = latest.AppointmentIDString()
	}
	return ctx
}

// VariableResolver resolves template variables to their values.
type VariableResolver interface {
	Resolve(varName string, ctx VariableContext) (string, error)
}

type variableResolver struct{}

// NewVariableResolver creates a new variable resolver instance.
func NewVariableResolver() VariableResolver {
	return &variableResolver{}
}

// Variables lists every variable name Resolve understands.
var Variables = []string{
	"unread-count", "total-count", "read-count",
	"latest-title", "latest-message", "latest-appointment-id",
	"has-unread", "connection-state",
}

// Resolve returns the string value for a variable from the context.
func (vr *variableResolver) Resolve(varName string, ctx VariableContext) (string, error) {
	switch varName {
	case "unread-count":
		return strconv.FormatInt(ctx.UnreadCount, 10), nil
	case "total-count":
		return strconv.Itoa(ctx.TotalCount), nil
	case "read-count":
		return strconv.Itoa(ctx.ReadCount), nil
	case "latest-title":
		return ctx.LatestTitle, nil
	case "latest-message":
		return ctx.LatestMessage, nil
	case "latest-appointment-id":
		return ctx.LatestAppointmentID, nil
	case "has-unread":
		return strconv.FormatBool(ctx.HasUnread), nil
	case "connection-state":
		return ctx.ConnectionState, nil
	default:
		return "", fmt.Errorf("unknown variable: %s (available: %v)", varName, Variables)
	}
}
