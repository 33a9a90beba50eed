package audit

// Audit action names for the listing lifecycle.
const (
	EventListingCreated   = "listing.created"
	EventListingUpdated   = "listing.updated"
	EventListingDeleted   = "listing.deleted"
	EventListingSubmitted = "listing.submitted"
	EventListingApproved  = "listing.approved"
	EventListingRejected  = "listing.rejected"
	EventListingSold      = "listing.sold"
)
