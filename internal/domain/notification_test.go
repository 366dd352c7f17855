package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationCreatedTime(t *testing.T) {
	tests := []struct {
		name      string
		createdAt string
		want      time.Time
	}{
		{"rfc3339", "2025-03-01T10:00:00Z", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"rfc3339 nano", "2025-03-01T10:00:00.123Z", time.Date(2025, 3, 1, 10, 0, 0, 123000000, time.UTC)},
		{"offset", "2025-03-01T12:00:00+02:00", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"local date time", "2025-03-01T10:00:00", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"local date time fraction", "2025-03-01T10:00:00.5", time.Date(2025, 3, 1, 10, 0, 0, 500000000, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "yesterday", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Notification{CreatedAt: tt.createdAt}
			assert.True(t, tt.want.Equal(n.CreatedTime()), "got %v", n.CreatedTime())
		})
	}
}

func TestNotificationMergeOverwritesPresentFields(t *testing.T) {
	n := Notification{ID: 1, Type: "APPOINTMENT", Title: "Old", Message: "old body", CreatedAt: "2025-01-01T00:00:00Z"}

	n.Merge(Notification{ID: 1, Title: "New", RelatedAppointmentID: Int64(9)})

	assert.Equal(t, "APPOINTMENT", n.Type)
	assert.Equal(t, "New", n.Title)
	assert.Equal(t, "old body", n.Message)
	assert.Equal(t, "2025-01-01T00:00:00Z", n.CreatedAt)
	require.NotNil(t, n.RelatedAppointmentID)
	assert.Equal(t, int64(9), *n.RelatedAppointmentID)
}

func TestNotificationMergeDecodedOverwritesEmptyValues(t *testing.T) {
	n := Notification{ID: 4, Type: "REMINDER", Title: "Notification 4", Message: "body", RelatedAppointmentID: Int64(2)}

	var incoming Notification
	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"title":"","relatedAppointmentId":null,"read":false}`), &incoming))
	n.Merge(incoming)

	assert.Empty(t, n.Title, "sent empty value overwrites")
	assert.Nil(t, n.RelatedAppointmentID, "sent null overwrites")
	assert.Equal(t, "REMINDER", n.Type, "missing key keeps the value")
	assert.Equal(t, "body", n.Message)
}

func TestNotificationMergeNeverDemotesRead(t *testing.T) {
	n := Notification{ID: 1, Read: true}
	n.Merge(Notification{ID: 1, Read: false})
	assert.True(t, n.Read)

	u := Notification{ID: 2}
	u.Merge(Notification{ID: 2, Read: true})
	assert.True(t, u.Read)
}

func TestNotificationMergeCopiesAppointmentID(t *testing.T) {
	incoming := Notification{ID: 1, RelatedAppointmentID: Int64(3)}
	n := Notification{ID: 1}
	n.Merge(incoming)

	*incoming.RelatedAppointmentID = 4
	assert.Equal(t, int64(3), *n.RelatedAppointmentID)
}

func TestNotificationMarkRead(t *testing.T) {
	n := Notification{ID: 1}
	assert.True(t, n.MarkRead())
	assert.False(t, n.MarkRead())
	assert.True(t, n.Read)
}

func TestNotificationAppointmentIDString(t *testing.T) {
	n := Notification{ID: 1}
	assert.False(t, n.HasAppointment())
	assert.Equal(t, "", n.AppointmentIDString())

	n.RelatedAppointmentID = Int64(42)
	assert.True(t, n.HasAppointment())
	assert.Equal(t, "42", n.AppointmentIDString())
}

func TestNotificationValidate(t *testing.T) {
	require.NoError(t, (&Notification{ID: 1}).Validate())
	require.Error(t, (&Notification{ID: 0}).Validate())
	require.Error(t, (&Notification{ID: -3}).Validate())
}
