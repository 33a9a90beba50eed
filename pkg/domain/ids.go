package domain

import (
	"github.com/google/uuid"

	dErrors "marketdesk/pkg/domain-errors"
)

// ListingID identifies a marketplace listing.
// A distinct type prevents accidentally passing one kind of ID where another
// is expected; the compiler catches the mixup instead of a reviewer.
type ListingID uuid.UUID

// ParseListingID constructs a ListingID from external input.
// Rejects empty strings, malformed UUIDs, and the nil UUID so downstream code
// can assume a ListingID is always usable.
func ParseListingID(s string) (ListingID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ListingID{}, err
	}
	return ListingID(u), nil
}

func (i ListingID) String() string {
	return uuid.UUID(i).String()
}

func (i ListingID) IsNil() bool {
	return uuid.UUID(i) == uuid.Nil
}

// MarshalText renders the ID in canonical UUID form for JSON payloads.
func (i ListingID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText parses an ID from JSON payloads, with the same strictness as
// ParseListingID.
func (i *ListingID) UnmarshalText(text []byte) error {
	parsed, err := ParseListingID(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// NewListingID generates a fresh random ListingID.
func NewListingID() ListingID {
	return ListingID(uuid.New())
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
