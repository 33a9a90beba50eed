package config

import (
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DevAdminToken is the X-Admin-Token value accepted when ADMIN_TOKEN_HASH is
// not set. Development only; production deployments set ADMIN_TOKEN_HASH.
const DevAdminToken = "dev-admin-token"

// Server captures process-level configuration.
type Server struct {
	Addr string

	// AdminTokenHash is the bcrypt hash of the X-Admin-Token value accepted
	// on /admin routes. When ADMIN_TOKEN_HASH is unset, a hash of
	// DevAdminToken is derived at startup.
	AdminTokenHash string

	// PostgresDSN enables the PostgreSQL listing store when non-empty;
	// otherwise the in-memory store is used.
	PostgresDSN string

	// RedisURL enables dashboard snapshot caching when non-empty.
	RedisURL string

	DashboardCacheTTL time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("MARKETDESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	adminTokenHash := os.Getenv("ADMIN_TOKEN_HASH")
	if adminTokenHash == "" {
		// Derived at startup so DevAdminToken always verifies. MinCost keeps
		// boot fast; GenerateFromPassword cannot fail for an in-range cost.
		hash, _ := bcrypt.GenerateFromPassword([]byte(DevAdminToken), bcrypt.MinCost)
		adminTokenHash = string(hash)
	}

	ttl := 30 * time.Second
	if raw := os.Getenv("DASHBOARD_CACHE_TTL_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}

	return Server{
		Addr:              addr,
		AdminTokenHash:    adminTokenHash,
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		RedisURL:          os.Getenv("REDIS_URL"),
		DashboardCacheTTL: ttl,
	}
}
