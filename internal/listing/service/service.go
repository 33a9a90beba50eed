package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"marketdesk/internal/allocation"
	"marketdesk/internal/audit"
	"marketdesk/internal/listing/metrics"
	"marketdesk/internal/listing/models"
	"marketdesk/pkg/domain"
	dErrors "marketdesk/pkg/domain-errors"
	"marketdesk/pkg/platform/sentinel"
	"marketdesk/pkg/requestcontext"
)

// Store is the persistence interface the service needs. Both the in-memory
// and PostgreSQL stores satisfy it.
type Store interface {
	Create(ctx context.Context, l *models.Listing) error
	Update(ctx context.Context, l *models.Listing) error
	FindByID(ctx context.Context, id domain.ListingID) (*models.Listing, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Listing, error)
	Delete(ctx context.Context, id domain.ListingID) error
	Execute(ctx context.Context, id domain.ListingID,
		validate func(l *models.Listing) error,
		mutate func(l *models.Listing)) (*models.Listing, error)
}

// AuditPublisher records listing lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service orchestrates listing management.
type Service struct {
	listings       Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(listings Store, opts ...Option) *Service {
	s := &Service{listings: listings}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create builds a draft listing from the request and persists it.
func (s *Service) Create(ctx context.Context, req *models.CreateListingRequest) (*models.Listing, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	listingType, err := domain.ParseListingType(req.Type)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	l, err := models.NewListing(domain.NewListingID(), req.Title, listingType, req.AskingPrice, req.ContactEmail, now)
	if err != nil {
		// Convert invariant violations to validation errors for API response
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	l.Location = req.Location
	l.Description = req.Description
	l.Business = req.Business
	l.Startup = req.Startup
	l.DigitalAsset = req.DigitalAsset

	if err := s.listings.Create(ctx, l); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "listing already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create listing")
	}

	s.logAudit(ctx, audit.EventListingCreated, l.ID, "")
	s.metrics.IncrementCreated()

	return l, nil
}

// Get fetches a listing by ID.
func (s *Service) Get(ctx context.Context, id domain.ListingID) (*models.Listing, error) {
	l, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "listing not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load listing")
	}
	return l, nil
}

// List returns listings matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]*models.Listing, error) {
	listings, err := s.listings.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list listings")
	}
	return listings, nil
}

// Update edits draft fields. Only draft and rejected listings are editable.
func (s *Service) Update(ctx context.Context, id domain.ListingID, req *models.UpdateListingRequest) (*models.Listing, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	l, err := s.listings.Execute(ctx, id,
		func(l *models.Listing) error {
			if !l.IsEditable() {
				return dErrors.New(dErrors.CodeInvariantViolation, "only draft or rejected listings can be edited")
			}
			return nil
		},
		func(l *models.Listing) {
			if req.Title != nil {
				l.Title = strings.TrimSpace(*req.Title)
			}
			if req.AskingPrice != nil {
				l.AskingPrice = *req.AskingPrice
			}
			if req.Location != nil {
				l.Location = *req.Location
			}
			if req.Description != nil {
				l.Description = *req.Description
			}
			if req.ContactEmail != nil {
				l.ContactEmail = *req.ContactEmail
			}
			if req.Business != nil {
				l.Business = req.Business
			}
			if req.Startup != nil {
				l.Startup = req.Startup
			}
			if req.DigitalAsset != nil {
				l.DigitalAsset = req.DigitalAsset
			}
			l.UpdatedAt = now
		},
	)
	if err != nil {
		return nil, s.translateExecuteErr(err, "failed to update listing")
	}

	s.logAudit(ctx, audit.EventListingUpdated, id, "")
	return l, nil
}

// Delete removes a listing entirely.
func (s *Service) Delete(ctx context.Context, id domain.ListingID) error {
	if err := s.listings.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "listing not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete listing")
	}
	s.logAudit(ctx, audit.EventListingDeleted, id, "")
	return nil
}

// Submit moves a draft to pending review after full validation.
func (s *Service) Submit(ctx context.Context, id domain.ListingID) (*models.Listing, error) {
	start := time.Now()
	defer s.metrics.ObserveSubmit(start)

	now := requestcontext.Now(ctx)
	var listingType domain.ListingType
	l, err := s.listings.Execute(ctx, id,
		func(l *models.Listing) error {
			listingType = l.Type
			return l.CanSubmit()
		},
		func(l *models.Listing) {
			l.ApplySubmission(now)
		},
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			s.metrics.IncrementValidationFailure(listingType.String())
		}
		return nil, s.translateExecuteErr(err, "failed to submit listing")
	}

	s.logAudit(ctx, audit.EventListingSubmitted, id, "")
	s.metrics.IncrementTransition(domain.ListingStatusPending.String())
	return l, nil
}

// Approve moves a pending listing to approved.
func (s *Service) Approve(ctx context.Context, id domain.ListingID) (*models.Listing, error) {
	now := requestcontext.Now(ctx)
	l, err := s.listings.Execute(ctx, id,
		func(l *models.Listing) error { return l.CanApprove() },
		func(l *models.Listing) { l.ApplyApproval(now) },
	)
	if err != nil {
		return nil, s.translateExecuteErr(err, "failed to approve listing")
	}

	s.logAudit(ctx, audit.EventListingApproved, id, "")
	s.metrics.IncrementTransition(domain.ListingStatusApproved.String())
	return l, nil
}

// Reject moves a pending listing to rejected with a reviewer reason.
func (s *Service) Reject(ctx context.Context, id domain.ListingID, req *models.RejectListingRequest) (*models.Listing, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	l, err := s.listings.Execute(ctx, id,
		func(l *models.Listing) error { return l.CanReject() },
		func(l *models.Listing) { l.ApplyRejection(req.Reason, now) },
	)
	if err != nil {
		return nil, s.translateExecuteErr(err, "failed to reject listing")
	}

	s.logAudit(ctx, audit.EventListingRejected, id, req.Reason)
	s.metrics.IncrementTransition(domain.ListingStatusRejected.String())
	return l, nil
}

// MarkSold moves an approved listing to sold.
func (s *Service) MarkSold(ctx context.Context, id domain.ListingID) (*models.Listing, error) {
	now := requestcontext.Now(ctx)
	l, err := s.listings.Execute(ctx, id,
		func(l *models.Listing) error { return l.CanMarkSold() },
		func(l *models.Listing) { l.ApplySale(now) },
	)
	if err != nil {
		return nil, s.translateExecuteErr(err, "failed to mark listing sold")
	}

	s.logAudit(ctx, audit.EventListingSold, id, "")
	s.metrics.IncrementTransition(domain.ListingStatusSold.String())
	return l, nil
}

// Reopen returns a rejected listing to draft so the seller can revise and
// resubmit it.
func (s *Service) Reopen(ctx context.Context, id domain.ListingID) (*models.Listing, error) {
	now := requestcontext.Now(ctx)
	l, err := s.listings.Execute(ctx, id,
		func(l *models.Listing) error { return l.CanReopen() },
		func(l *models.Listing) { l.ApplyReopen(now) },
	)
	if err != nil {
		return nil, s.translateExecuteErr(err, "failed to reopen listing")
	}

	s.logAudit(ctx, audit.EventListingUpdated, id, "")
	s.metrics.IncrementTransition(domain.ListingStatusDraft.String())
	return l, nil
}

// CheckBreakdown runs the percentage validity check for an ad-hoc breakdown,
// e.g. as the admin edits a digital-asset form.
func (s *Service) CheckBreakdown(category allocation.Category, values map[string]*float64) allocation.Result {
	return allocation.FromValues(category, values).CheckValidity()
}

// DistributeBreakdown applies auto-distribution to an ad-hoc breakdown and
// returns the corrected values along with the post-distribution check.
func (s *Service) DistributeBreakdown(category allocation.Category, values map[string]*float64) (map[string]float64, allocation.Result) {
	set := allocation.FromValues(category, values)
	set.AutoDistribute()
	return set.Values(), set.LastResult()
}

// translateExecuteErr maps store and callback errors onto API error codes.
// Callback errors already carry codes and pass through untouched.
func (s *Service) translateExecuteErr(err error, internalMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "listing not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}

func (s *Service) logAudit(ctx context.Context, event string, listingID domain.ListingID, reason string) {
	attributes := []any{
		"listing_id", listingID.String(),
		"event", event,
		"log_type", "audit",
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, attributes...)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		ListingID: listingID.String(),
		Action:    event,
		Reason:    reason,
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
}
