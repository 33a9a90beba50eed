//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"marketdesk/internal/listing/models"
	"marketdesk/internal/listing/store"
	"marketdesk/pkg/domain"
	"marketdesk/pkg/platform/sentinel"
	"marketdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Schema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "listings"))
}

func newTestListing(s *PostgresStoreSuite, title string, listingType domain.ListingType) *models.Listing {
	l, err := models.NewListing(domain.NewListingID(), title, listingType, 75000, "seller@example.com", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	return l
}

func (s *PostgresStoreSuite) TestRoundTripWithDetails() {
	ctx := context.Background()

	l := newTestListing(s, "Content site portfolio", domain.ListingTypeDigitalAsset)
	organic, paid := 70.0, 30.0
	l.DigitalAsset = &models.DigitalAssetDetails{
		Kind:            models.DigitalAssetWebsite,
		MonthlyVisitors: 120000,
		MonthlyRevenue:  4200,
		TrafficSources: map[string]*float64{
			"organic": &organic, "paid_ads": &paid,
		},
		RevenueSources: map[string]*float64{},
	}
	s.Require().NoError(s.store.Create(ctx, l))

	found, err := s.store.FindByID(ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(l.Title, found.Title)
	s.Equal(l.Type, found.Type)
	s.Require().NotNil(found.DigitalAsset)
	s.Equal(models.DigitalAssetWebsite, found.DigitalAsset.Kind)
	s.Require().NotNil(found.DigitalAsset.TrafficSources["organic"])
	s.Equal(70.0, *found.DigitalAsset.TrafficSources["organic"])

	// Unset slots stay distinguishable from zero after the round trip.
	set := found.DigitalAsset.TrafficSet()
	_, isSet := set.Value("email")
	s.False(isSet)
}

func (s *PostgresStoreSuite) TestCreateConflictAndDelete() {
	ctx := context.Background()
	l := newTestListing(s, "Laundromat", domain.ListingTypeBusiness)

	s.Require().NoError(s.store.Create(ctx, l))
	s.Require().ErrorIs(s.store.Create(ctx, l), sentinel.ErrConflict)

	s.Require().NoError(s.store.Delete(ctx, l.ID))
	s.Require().ErrorIs(s.store.Delete(ctx, l.ID), sentinel.ErrNotFound)
	_, err := s.store.FindByID(ctx, l.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListFilterAndCounts() {
	ctx := context.Background()

	bakery := newTestListing(s, "Bakery", domain.ListingTypeBusiness)
	saas := newTestListing(s, "SaaS", domain.ListingTypeDigitalAsset)
	s.Require().NoError(s.store.Create(ctx, bakery))
	s.Require().NoError(s.store.Create(ctx, saas))

	digital, err := s.store.List(ctx, models.ListFilter{Type: domain.ListingTypeDigitalAsset})
	s.Require().NoError(err)
	s.Require().Len(digital, 1)
	s.Equal(saas.ID, digital[0].ID)

	byType, err := s.store.CountByType(ctx)
	s.Require().NoError(err)
	s.Equal(1, byType[domain.ListingTypeBusiness])
	s.Equal(1, byType[domain.ListingTypeDigitalAsset])

	byStatus, err := s.store.CountByStatus(ctx)
	s.Require().NoError(err)
	s.Equal(2, byStatus[domain.ListingStatusDraft])
}

func (s *PostgresStoreSuite) TestExecuteStatusTransition() {
	ctx := context.Background()

	l := newTestListing(s, "Espresso bar", domain.ListingTypeBusiness)
	l.Business = &models.BusinessDetails{
		EstablishedYear: 2015,
		Employees:       4,
		AnnualRevenue:   320000,
		AnnualProfit:    60000,
	}
	s.Require().NoError(s.store.Create(ctx, l))

	now := time.Now().UTC()
	updated, err := s.store.Execute(ctx, l.ID,
		func(l *models.Listing) error { return l.CanSubmit() },
		func(l *models.Listing) { l.ApplySubmission(now) },
	)
	s.Require().NoError(err)
	s.Equal(domain.ListingStatusPending, updated.Status)

	found, err := s.store.FindByID(ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(domain.ListingStatusPending, found.Status)
}
