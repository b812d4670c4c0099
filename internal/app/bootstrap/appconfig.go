// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (LIDERPLAN_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// handles ports, TLS, log level, CORS and body limits; everything specific
// to the planning API lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token codec keys and lifetime
	TokenHashKey  string // HMAC key, at least 32 bytes
	TokenBlockKey string // AES key, 16, 24 or 32 bytes
	TokenTTL      time.Duration

	// Server-side session sweeping
	SessionIdleTimeout   time.Duration // sessions idle this long are closed
	SessionSweepInterval time.Duration

	// Time zone used to compute "today" for display status and overdue checks
	Timezone string

	// Evidence file storage
	StorageType           string // "local" or "gcs"
	StorageLocalPath      string
	StorageGCSBucket      string
	StorageGCSPrefix      string
	StorageGCSCredentials string // service account JSON; blank uses application default credentials

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Email of a user promoted to ADMIN on every startup
	AdminEmail string

	// Handler deadlines
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Login attempts per minute per IP and per five minutes per email
	LoginRateIP    int
	LoginRateEmail int
}
