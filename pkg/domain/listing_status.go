package domain

import dErrors "marketdesk/pkg/domain-errors"

// ListingStatus tracks a listing through the moderation lifecycle.
//
// Transitions:
//
//	draft    -> pending            (seller submits)
//	pending  -> approved, rejected (admin review)
//	approved -> sold               (sale completed)
//	rejected -> draft              (seller revises and resubmits)
//
// Any other transition is an invariant violation.
type ListingStatus string

const (
	ListingStatusDraft    ListingStatus = "draft"
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusApproved ListingStatus = "approved"
	ListingStatusRejected ListingStatus = "rejected"
	ListingStatusSold     ListingStatus = "sold"
)

// validTransitions is the single source of truth for the status machine.
var validTransitions = map[ListingStatus][]ListingStatus{
	ListingStatusDraft:    {ListingStatusPending},
	ListingStatusPending:  {ListingStatusApproved, ListingStatusRejected},
	ListingStatusApproved: {ListingStatusSold},
	ListingStatusRejected: {ListingStatusDraft},
	ListingStatusSold:     {},
}

// ParseListingStatus constructs a ListingStatus from external input.
func ParseListingStatus(s string) (ListingStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "listing status cannot be empty")
	}
	st := ListingStatus(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid listing status")
	}
	return st, nil
}

// IsValid checks if the status is one of the supported enum values.
func (s ListingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the status machine allows moving from s to
// target.
func (s ListingStatus) CanTransitionTo(target ListingStatus) bool {
	for _, next := range validTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// String returns the string representation of the status.
func (s ListingStatus) String() string {
	return string(s)
}

// AllListingStatuses returns the supported statuses in lifecycle order.
func AllListingStatuses() []ListingStatus {
	return []ListingStatus{
		ListingStatusDraft,
		ListingStatusPending,
		ListingStatusApproved,
		ListingStatusRejected,
		ListingStatusSold,
	}
}
