// Package storage persists the small set of credentials the client needs
// between runs: the bearer token and the push device token.
package storage

import "errors"

// Well-known keys.
const (
	// KeyAuthToken holds the opaque bearer credential.
	KeyAuthToken = "jwtToken"
	// KeyDeviceToken holds the last push device token seen.
	KeyDeviceToken = "fcmToken"
)

// ErrEmptyKey is returned when a key is blank.
var ErrEmptyKey = errors.New("storage: key cannot be empty")

// Store gets, sets and removes single string values under fixed keys.
//
// Get returns "" with a nil error when the key is absent. Remove of an
// absent key is not an error.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}
