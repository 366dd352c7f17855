package domain

import (
	"sort"
	"time"
)

type timedNotification struct {
	notif Notification
	at    time.Time
}

// SortByCreatedAtDesc sorts notifications newest first by CreatedAt.
// Returns a new sorted slice without modifying the original. Records with
// equal timestamps keep their relative order.
func SortByCreatedAtDesc(notifs []Notification) []Notification {
	timed := make([]timedNotification, len(notifs))
	for i := range notifs {
		timed[i] = timedNotification{notif: notifs[i], at: notifs[i].CreatedTime()}
	}

	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].at.After(timed[j].at)
	})

	sorted := make([]Notification, len(timed))
	for i := range timed {
		sorted[i] = timed[i].notif
	}
	return sorted
}

// IsSortedByCreatedAtDesc reports whether notifs are ordered newest first.
func IsSortedByCreatedAtDesc(notifs []Notification) bool {
	for i := 1; i < len(notifs); i++ {
		if notifs[i-1].CreatedTime().Before(notifs[i].CreatedTime()) {
			return false
		}
	}
	return true
}
