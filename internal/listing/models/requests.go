package models

import (
	"strings"

	"github.com/asaskevich/govalidator"

	"marketdesk/pkg/domain"
	dErrors "marketdesk/pkg/domain-errors"
)

// CreateListingRequest is the payload for creating a draft listing.
type CreateListingRequest struct {
	Title        string  `json:"title"`
	Type         string  `json:"type"`
	AskingPrice  float64 `json:"asking_price"`
	Location     string  `json:"location"`
	Description  string  `json:"description"`
	ContactEmail string  `json:"contact_email"`

	Business     *BusinessDetails     `json:"business,omitempty"`
	Startup      *StartupDetails      `json:"startup,omitempty"`
	DigitalAsset *DigitalAssetDetails `json:"digital_asset,omitempty"`
}

// Normalize trims whitespace-sensitive fields in place. Call before Validate.
func (r *CreateListingRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Type = strings.TrimSpace(r.Type)
	r.Location = strings.TrimSpace(r.Location)
	r.ContactEmail = strings.TrimSpace(r.ContactEmail)
}

// Validate checks transport-level field constraints. Domain invariants are
// enforced again by the model constructor; this layer exists to reject junk
// with a field-specific message before it reaches a service.
func (r *CreateListingRequest) Validate() error {
	if !govalidator.StringLength(r.Title, "1", "140") {
		return dErrors.New(dErrors.CodeInvalidInput, "title must be between 1 and 140 characters")
	}
	if _, err := domain.ParseListingType(r.Type); err != nil {
		return err
	}
	if r.AskingPrice <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "asking_price must be positive")
	}
	if len(r.Location) > 128 {
		return dErrors.New(dErrors.CodeInvalidInput, "location must be 128 characters or less")
	}
	if len(r.Description) > 5000 {
		return dErrors.New(dErrors.CodeInvalidInput, "description must be 5000 characters or less")
	}
	if !govalidator.IsEmail(r.ContactEmail) {
		return dErrors.New(dErrors.CodeInvalidInput, "contact_email must be a valid email address")
	}
	return nil
}

// UpdateListingRequest carries optional draft edits; nil fields are left
// untouched. Type is intentionally absent - a listing's type is immutable.
type UpdateListingRequest struct {
	Title        *string  `json:"title,omitempty"`
	AskingPrice  *float64 `json:"asking_price,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Description  *string  `json:"description,omitempty"`
	ContactEmail *string  `json:"contact_email,omitempty"`

	Business     *BusinessDetails     `json:"business,omitempty"`
	Startup      *StartupDetails      `json:"startup,omitempty"`
	DigitalAsset *DigitalAssetDetails `json:"digital_asset,omitempty"`
}

// Normalize trims whitespace-sensitive fields in place. Call before Validate.
func (r *UpdateListingRequest) Normalize() {
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		r.Title = &trimmed
	}
	if r.Location != nil {
		trimmed := strings.TrimSpace(*r.Location)
		r.Location = &trimmed
	}
	if r.ContactEmail != nil {
		trimmed := strings.TrimSpace(*r.ContactEmail)
		r.ContactEmail = &trimmed
	}
}

// Validate checks the fields that are present.
func (r *UpdateListingRequest) Validate() error {
	if r.Title != nil && !govalidator.StringLength(*r.Title, "1", "140") {
		return dErrors.New(dErrors.CodeInvalidInput, "title must be between 1 and 140 characters")
	}
	if r.AskingPrice != nil && *r.AskingPrice <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "asking_price must be positive")
	}
	if r.Location != nil && len(*r.Location) > 128 {
		return dErrors.New(dErrors.CodeInvalidInput, "location must be 128 characters or less")
	}
	if r.Description != nil && len(*r.Description) > 5000 {
		return dErrors.New(dErrors.CodeInvalidInput, "description must be 5000 characters or less")
	}
	if r.ContactEmail != nil && !govalidator.IsEmail(*r.ContactEmail) {
		return dErrors.New(dErrors.CodeInvalidInput, "contact_email must be a valid email address")
	}
	return nil
}

// RejectListingRequest carries the reviewer's reason, surfaced to the seller.
type RejectListingRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectListingRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *RejectListingRequest) Validate() error {
	if !govalidator.StringLength(r.Reason, "1", "1000") {
		return dErrors.New(dErrors.CodeInvalidInput, "reason must be between 1 and 1000 characters")
	}
	return nil
}

// ListFilter narrows listing queries. Zero values mean "any".
type ListFilter struct {
	Type   domain.ListingType
	Status domain.ListingStatus
}

// Matches reports whether a listing passes the filter.
func (f ListFilter) Matches(l *Listing) bool {
	if f.Type != "" && l.Type != f.Type {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	return true
}
