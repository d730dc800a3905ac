package util

import "github.com/google/uuid"

// NewID returns a random UUID string. Used for request ids and for client
// references attached to seeded records; course ids themselves are assigned
// by the external table store.
func NewID() string {
	return uuid.NewString()
}
