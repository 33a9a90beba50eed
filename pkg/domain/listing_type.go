package domain

import dErrors "marketdesk/pkg/domain-errors"

// ListingType is a domain value that identifies what kind of asset a listing
// offers for sale.
//
// Usage: construct via ParseListingType at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type ListingType string

// Supported listing types.
const (
	ListingTypeBusiness     ListingType = "business"
	ListingTypeFranchise    ListingType = "franchise"
	ListingTypeStartup      ListingType = "startup"
	ListingTypeDigitalAsset ListingType = "digital_asset"
)

// validListingTypes is the single source of truth for valid listing types.
var validListingTypes = map[ListingType]bool{
	ListingTypeBusiness:     true,
	ListingTypeFranchise:    true,
	ListingTypeStartup:      true,
	ListingTypeDigitalAsset: true,
}

// ParseListingType constructs a ListingType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported; no
// other errors are expected.
func ParseListingType(s string) (ListingType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "listing type cannot be empty")
	}
	t := ListingType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid listing type")
	}
	return t, nil
}

// IsValid checks if the listing type is one of the supported enum values.
func (t ListingType) IsValid() bool {
	return validListingTypes[t]
}

// String returns the string representation of the listing type.
func (t ListingType) String() string {
	return string(t)
}

// AllListingTypes returns the supported types in a stable order, for
// dashboard aggregation and request validation messages.
func AllListingTypes() []ListingType {
	return []ListingType{
		ListingTypeBusiness,
		ListingTypeFranchise,
		ListingTypeStartup,
		ListingTypeDigitalAsset,
	}
}
