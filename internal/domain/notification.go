// Package domain provides the domain layer for notifications.
// It contains the notification record, the feed, and ordering rules.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Notification is a single notification record as delivered by the
// advising API, the real-time channel, or the polling fallback.
type Notification struct {
	ID                   int64  `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	Message              string `json:"message"`
	RelatedAppointmentID *int64 `json:"relatedAppointmentId,omitempty"`
	CreatedAt            string `json:"createdAt"`
	Read                 bool   `json:"read"`

	// present is set when the record was decoded from JSON.
	present fieldSet
}

// fieldSet records which JSON keys a decoded record carried.
type fieldSet uint8

const (
	fieldID fieldSet = 1 << iota
	fieldType
	fieldTitle
	fieldMessage
	fieldAppointment
	fieldCreatedAt
	fieldRead
)

var fieldKeys = map[string]fieldSet{
	"id":                   fieldID,
	"type":                 fieldType,
	"title":                fieldTitle,
	"message":              fieldMessage,
	"relatedAppointmentId": fieldAppointment,
	"createdAt":            fieldCreatedAt,
	"read":                 fieldRead,
}

// UnmarshalJSON decodes a record and remembers which keys were sent, so
// Merge can tell an empty value from a missing one.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type plain Notification
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*n = Notification(p)
	n.present = 0
	for key, bit := range fieldKeys {
		if _, ok := keys[key]; ok {
			n.present |= bit
		}
	}
	return nil
}

// has reports whether field should be taken from n during a merge. Decoded
// records answer by key presence, records built in code by nonZero.
func (n *Notification) has(field fieldSet, nonZero bool) bool {
	if n.present != 0 {
		return n.present&field != 0
	}
	return nonZero
}

// createdAtLayouts are tried in order when parsing CreatedAt.
// Spring serializes LocalDateTime without a zone, hence the last two.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// CreatedTime parses CreatedAt. Unparseable values yield the zero time.
func (n *Notification) CreatedTime() time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, n.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// HasAppointment reports whether the notification links to an appointment.
func (n *Notification) HasAppointment() bool {
	return n.RelatedAppointmentID != nil
}

// AppointmentIDString returns the related appointment id, or "" when absent.
func (n *Notification) AppointmentIDString() string {
	if n.RelatedAppointmentID == nil {
		return ""
	}
	return strconv.FormatInt(*n.RelatedAppointmentID, 10)
}

// Validate checks the fields every source is expected to provide.
func (n *Notification) Validate() error {
	if n.ID <= 0 {
		return fmt.Errorf("invalid notification ID: %d", n.ID)
	}
	return nil
}

// Merge applies incoming over n the way a shallow object spread does:
// every key a decoded record carried overwrites, empty and null values
// included, and absent keys keep the current value. For records built in
// code only non-zero fields count as present. Read is only ever promoted.
func (n *Notification) Merge(incoming Notification) *Notification {
	if incoming.has(fieldType, incoming.Type != "") {
		n.Type = incoming.Type
	}
	if incoming.has(fieldTitle, incoming.Title != "") {
		n.Title = incoming.Title
	}
	if incoming.has(fieldMessage, incoming.Message != "") {
		n.Message = incoming.Message
	}
	if incoming.has(fieldAppointment, incoming.RelatedAppointmentID != nil) {
		n.RelatedAppointmentID = nil
		if incoming.RelatedAppointmentID != nil {
			id := *incoming.RelatedAppointmentID
			n.RelatedAppointmentID = &id
		}
	}
	if incoming.has(fieldCreatedAt, incoming.CreatedAt != "") {
		n.CreatedAt = incoming.CreatedAt
	}
	n.Read = n.Read || incoming.Read
	return n
}

// MarkRead sets the read flag and reports whether it changed.
func (n *Notification) MarkRead() bool {
	if n.Read {
		return false
	}
	n.Read = true
	return true
}

// Int64 returns a pointer to v. Handy for RelatedAppointmentID literals.
func Int64(v int64) *int64 {
	return &v
}
