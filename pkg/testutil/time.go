package testutil

import "time"

// FixedTime returns a stable timestamp for tests that need deterministic
// created/updated times.
func FixedTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}
