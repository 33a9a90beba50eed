package dashboard_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"marketdesk/internal/dashboard"
	"marketdesk/internal/listing/models"
	"marketdesk/internal/listing/store"
	"marketdesk/pkg/domain"
	"marketdesk/pkg/testutil"
)

const testAdminToken = "test-admin-token"

func newDashboardRouter(t *testing.T, listings *store.InMemoryStore) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminToken), bcrypt.MinCost)
	require.NoError(t, err)

	router := chi.NewRouter()
	dashboard.NewHandler(dashboard.New(listings), logger, string(hash)).Register(router)
	return router
}

func TestDashboardEndpoint(t *testing.T) {
	listings := store.NewInMemory()
	l, err := models.NewListing(domain.NewListingID(), "Visible", domain.ListingTypeBusiness, 1000, "seller@example.com", testutil.FixedTime())
	require.NoError(t, err)
	require.NoError(t, listings.Create(t.Context(), l))

	router := newDashboardRouter(t, listings)

	req := testutil.NewRequest(t, http.MethodGet, "/admin/dashboard")
	req.Header.Set("X-Admin-Token", testAdminToken)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "total_listings", float64(1))
	testutil.AssertJSONHasKey(t, rr, "by_status")
	testutil.AssertJSONHasKey(t, rr, "recent")
}

func TestDashboardEndpointRequiresToken(t *testing.T) {
	router := newDashboardRouter(t, store.NewInMemory())

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/admin/dashboard"))

	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}
