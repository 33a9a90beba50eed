// Package store persists listings. Implementations return
// pkg/platform/sentinel errors; services translate them into domain errors.
package store

import (
	"marketdesk/pkg/platform/sentinel"
)

// Re-exported so callers can errors.Is against the store package without
// importing sentinel directly.
var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)
