package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDefaultAdminTokenVerifies(t *testing.T) {
	t.Setenv("ADMIN_TOKEN_HASH", "")

	cfg := FromEnv()

	require.NotEmpty(t, cfg.AdminTokenHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cfg.AdminTokenHash), []byte(DevAdminToken)))
}

func TestAdminTokenHashOverride(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("prod-token"), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("ADMIN_TOKEN_HASH", string(hash))

	cfg := FromEnv()

	assert.Equal(t, string(hash), cfg.AdminTokenHash)
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(cfg.AdminTokenHash), []byte(DevAdminToken)))
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MARKETDESK_ADDR", "")
	t.Setenv("DASHBOARD_CACHE_TTL_SECONDS", "")

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.DashboardCacheTTL)
}

func TestDashboardCacheTTLFromEnv(t *testing.T) {
	t.Setenv("DASHBOARD_CACHE_TTL_SECONDS", "120")

	cfg := FromEnv()

	assert.Equal(t, 2*time.Minute, cfg.DashboardCacheTTL)
}
