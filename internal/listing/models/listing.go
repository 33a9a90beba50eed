package models

import (
	"time"

	"marketdesk/pkg/domain"
	dErrors "marketdesk/pkg/domain-errors"
)

// Listing is the aggregate root for a marketplace listing.
//
// Invariants:
//   - Title is non-empty and at most 140 characters
//   - Type is a valid ListingType and immutable after construction
//   - AskingPrice is strictly positive
//   - Status follows the machine defined on domain.ListingStatus
//   - Exactly the detail block matching Type is populated; submission
//     requires that block to pass its own validation
//   - CreatedAt is immutable after construction
type Listing struct {
	ID           domain.ListingID     `json:"id"`
	Title        string               `json:"title"`
	Type         domain.ListingType   `json:"type"`
	Status       domain.ListingStatus `json:"status"`
	AskingPrice  float64              `json:"asking_price"`
	Location     string               `json:"location,omitempty"`
	Description  string               `json:"description,omitempty"`
	ContactEmail string               `json:"contact_email"`

	Business     *BusinessDetails     `json:"business,omitempty"`
	Startup      *StartupDetails      `json:"startup,omitempty"`
	DigitalAsset *DigitalAssetDetails `json:"digital_asset,omitempty"`

	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewListing constructs a draft listing, validating construction invariants.
// Detail blocks are attached afterwards and only checked on submission, so a
// seller can save a half-finished draft.
func NewListing(id domain.ListingID, title string, listingType domain.ListingType, askingPrice float64, contactEmail string, now time.Time) (*Listing, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "listing title cannot be empty")
	}
	if len(title) > 140 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "listing title must be 140 characters or less")
	}
	if !listingType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid listing type")
	}
	if askingPrice <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "asking price must be positive")
	}
	if contactEmail == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "contact email cannot be empty")
	}
	return &Listing{
		ID:           id,
		Title:        title,
		Type:         listingType,
		Status:       domain.ListingStatusDraft,
		AskingPrice:  askingPrice,
		ContactEmail: contactEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Clone returns a deep copy, detail blocks included, so stores can hand out
// listings without sharing mutable state across goroutines.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	out := *l
	out.Business = l.Business.clone()
	out.Startup = l.Startup.clone()
	out.DigitalAsset = l.DigitalAsset.clone()
	return &out
}

// Details returns the detail block matching the listing type, or nil when the
// seller has not filled it in yet.
func (l *Listing) Details() Validatable {
	switch l.Type {
	case domain.ListingTypeBusiness, domain.ListingTypeFranchise:
		if l.Business == nil {
			return nil
		}
		return l.Business
	case domain.ListingTypeStartup:
		if l.Startup == nil {
			return nil
		}
		return l.Startup
	case domain.ListingTypeDigitalAsset:
		if l.DigitalAsset == nil {
			return nil
		}
		return l.DigitalAsset
	}
	return nil
}

// Validatable is implemented by the per-type detail blocks.
type Validatable interface {
	Validate(l *Listing) error
}

// ValidateForSubmission runs the full cross-field validation that gates the
// draft -> pending transition. Drafts are allowed to be incomplete; pending
// listings are not.
func (l *Listing) ValidateForSubmission() error {
	details := l.Details()
	if details == nil {
		return dErrors.New(dErrors.CodeValidation, l.Type.String()+" details are required before submission")
	}
	return details.Validate(l)
}

// CanSubmit checks the draft -> pending transition, including full detail
// validation. Use with ApplySubmission in Execute callbacks.
func (l *Listing) CanSubmit() error {
	if !l.Status.CanTransitionTo(domain.ListingStatusPending) {
		return dErrors.New(dErrors.CodeInvariantViolation, "only draft listings can be submitted")
	}
	return l.ValidateForSubmission()
}

// ApplySubmission transitions the listing to pending review.
// Call CanSubmit first to validate the transition.
func (l *Listing) ApplySubmission(now time.Time) {
	l.Status = domain.ListingStatusPending
	l.RejectionReason = ""
	l.UpdatedAt = now
}

// Submit validates and applies submission in one call.
// Prefer CanSubmit + ApplySubmission for the Execute callback pattern.
func (l *Listing) Submit(now time.Time) error {
	if err := l.CanSubmit(); err != nil {
		return err
	}
	l.ApplySubmission(now)
	return nil
}

// CanApprove checks the pending -> approved transition.
func (l *Listing) CanApprove() error {
	if !l.Status.CanTransitionTo(domain.ListingStatusApproved) || l.Status != domain.ListingStatusPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "only pending listings can be approved")
	}
	return nil
}

// ApplyApproval transitions the listing to approved.
func (l *Listing) ApplyApproval(now time.Time) {
	l.Status = domain.ListingStatusApproved
	l.UpdatedAt = now
}

// Approve validates and applies approval in one call.
func (l *Listing) Approve(now time.Time) error {
	if err := l.CanApprove(); err != nil {
		return err
	}
	l.ApplyApproval(now)
	return nil
}

// CanReject checks the pending -> rejected transition.
func (l *Listing) CanReject() error {
	if !l.Status.CanTransitionTo(domain.ListingStatusRejected) {
		return dErrors.New(dErrors.CodeInvariantViolation, "only pending listings can be rejected")
	}
	return nil
}

// ApplyRejection transitions the listing to rejected, recording the reason
// shown back to the seller.
func (l *Listing) ApplyRejection(reason string, now time.Time) {
	l.Status = domain.ListingStatusRejected
	l.RejectionReason = reason
	l.UpdatedAt = now
}

// Reject validates and applies rejection in one call.
func (l *Listing) Reject(reason string, now time.Time) error {
	if err := l.CanReject(); err != nil {
		return err
	}
	l.ApplyRejection(reason, now)
	return nil
}

// CanMarkSold checks the approved -> sold transition.
func (l *Listing) CanMarkSold() error {
	if !l.Status.CanTransitionTo(domain.ListingStatusSold) {
		return dErrors.New(dErrors.CodeInvariantViolation, "only approved listings can be marked sold")
	}
	return nil
}

// ApplySale transitions the listing to sold.
func (l *Listing) ApplySale(now time.Time) {
	l.Status = domain.ListingStatusSold
	l.UpdatedAt = now
}

// MarkSold validates and applies the sale in one call.
func (l *Listing) MarkSold(now time.Time) error {
	if err := l.CanMarkSold(); err != nil {
		return err
	}
	l.ApplySale(now)
	return nil
}

// CanReopen checks the rejected -> draft transition used for resubmission.
func (l *Listing) CanReopen() error {
	if !l.Status.CanTransitionTo(domain.ListingStatusDraft) {
		return dErrors.New(dErrors.CodeInvariantViolation, "only rejected listings can be reopened")
	}
	return nil
}

// ApplyReopen returns a rejected listing to draft so the seller can revise it.
func (l *Listing) ApplyReopen(now time.Time) {
	l.Status = domain.ListingStatusDraft
	l.UpdatedAt = now
}

// Reopen validates and applies the reopen in one call.
func (l *Listing) Reopen(now time.Time) error {
	if err := l.CanReopen(); err != nil {
		return err
	}
	l.ApplyReopen(now)
	return nil
}

// IsEditable reports whether draft fields may still be changed.
func (l *Listing) IsEditable() bool {
	return l.Status == domain.ListingStatusDraft || l.Status == domain.ListingStatusRejected
}
