package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	ListingID string
	Action    string
	Reason    string
	ClientIP  string
	UserAgent string
}

