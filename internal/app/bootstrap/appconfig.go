// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// The struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown should live here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: projecthub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Bearer tokens for API clients. Blank disables token auth.
	JWTSecret string

	// Bulk deletion
	CascadeTransactions bool          // wrap aggregate+delete in a transaction when the server supports it
	CascadeTimeout      time.Duration // upper bound for one batch, independent of the client
	MaxBatchSize        int           // identifiers accepted per request (0 = unlimited)
	BulkDeleteRateLimit int           // batches per admin per minute (0 = unlimited)

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAdmin string

	MetricsEnabled bool

	// Admin bootstrap: promotes or creates this admin on startup
	AdminEmail string
}
