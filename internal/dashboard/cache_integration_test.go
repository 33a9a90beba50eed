//go:build integration

package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketdesk/internal/dashboard"
	"marketdesk/internal/listing/models"
	"marketdesk/internal/listing/store"
	"marketdesk/internal/platform/redis"
	"marketdesk/pkg/domain"
	"marketdesk/pkg/requestcontext"
	"marketdesk/pkg/testutil"
	"marketdesk/pkg/testutil/containers"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	cache := dashboard.NewRedisCache(&redis.Client{Client: rc.Client})
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))
	val, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", val)
}

func TestSnapshotServedFromRedis(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	require.NoError(t, rc.FlushAll(context.Background()))

	listings := store.NewInMemory()
	ctx := requestcontext.WithTime(context.Background(), testutil.FixedTime())

	l, err := models.NewListing(domain.NewListingID(), "Cached Listing", domain.ListingTypeBusiness, 1000, "seller@example.com", testutil.FixedTime())
	require.NoError(t, err)
	require.NoError(t, listings.Create(ctx, l))

	cache := dashboard.NewRedisCache(&redis.Client{Client: rc.Client})
	svc := dashboard.New(listings, dashboard.WithCache(cache, time.Minute))

	first, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.TotalListings)

	// stores are ignored while the cached snapshot is fresh
	l2, err := models.NewListing(domain.NewListingID(), "Not Yet Visible", domain.ListingTypeStartup, 2000, "seller@example.com", testutil.FixedTime())
	require.NoError(t, err)
	require.NoError(t, listings.Create(ctx, l2))

	second, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, second.TotalListings)
	require.Equal(t, first.GeneratedAt.UTC(), second.GeneratedAt.UTC())
}
