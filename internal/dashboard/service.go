// Package dashboard assembles the admin overview: listing counts by status
// and type plus the most recent listings, fanned out concurrently and cached
// for a short window.
package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"marketdesk/internal/listing/models"
	"marketdesk/pkg/domain"
	dErrors "marketdesk/pkg/domain-errors"
	"marketdesk/pkg/requestcontext"
)

const (
	cacheKey   = "marketdesk:dashboard:snapshot"
	recentSize = 10
)

// Store is the subset of listing persistence the dashboard reads from.
type Store interface {
	CountByStatus(ctx context.Context) (map[domain.ListingStatus]int, error)
	CountByType(ctx context.Context) (map[domain.ListingType]int, error)
	Recent(ctx context.Context, n int) ([]*models.Listing, error)
}

// Cache stores serialized snapshots. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Snapshot is the dashboard payload.
type Snapshot struct {
	GeneratedAt   time.Time         `json:"generated_at"`
	TotalListings int               `json:"total_listings"`
	ByStatus      map[string]int    `json:"by_status"`
	ByType        map[string]int    `json:"by_type"`
	Recent        []*models.Listing `json:"recent"`
}

// Service builds dashboard snapshots.
type Service struct {
	listings Store
	cache    Cache
	ttl      time.Duration
	logger   *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCache enables snapshot caching with the given TTL.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.ttl = ttl
	}
}

func New(listings Store, opts ...Option) *Service {
	s := &Service{listings: listings}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current dashboard, serving a cached copy when one is
// fresh. Cache failures degrade to a direct read; the dashboard must not go
// down with the cache.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	snapshot, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, snapshot)
	return snapshot, nil
}

// build runs the three store reads concurrently.
func (s *Service) build(ctx context.Context) (*Snapshot, error) {
	var (
		byStatus map[domain.ListingStatus]int
		byType   map[domain.ListingType]int
		recent   []*models.Listing
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byStatus, err = s.listings.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		byType, err = s.listings.CountByType(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.listings.Recent(gctx, recentSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build dashboard")
	}

	snapshot := &Snapshot{
		GeneratedAt: requestcontext.Now(ctx),
		ByStatus:    make(map[string]int, len(byStatus)),
		ByType:      make(map[string]int, len(byType)),
		Recent:      recent,
	}
	for status, n := range byStatus {
		snapshot.ByStatus[status.String()] = n
		snapshot.TotalListings += n
	}
	for listingType, n := range byType {
		snapshot.ByType[listingType.String()] = n
	}
	return snapshot, nil
}

func (s *Service) fromCache(ctx context.Context) (*Snapshot, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "dashboard cache read failed", "error", err.Error())
		}
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, false
	}
	return &snapshot, true
}

func (s *Service) toCache(ctx context.Context, snapshot *Snapshot) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, string(raw), s.ttl); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "dashboard cache write failed", "error", err.Error())
	}
}
