// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/liderplan/internal/app/system/auditlog"
	"github.com/dalemusser/liderplan/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for LiderPlan.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, timezone, etc.
//   - Environment variables: LIDERPLAN_MONGO_URI, LIDERPLAN_TIMEZONE, etc.
//   - Command-line flags: --mongo_uri, --timezone, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "liderplan", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Tokens
	{Name: "token_hash_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Token signing key (at least 32 bytes; must be strong in production)"},
	{Name: "token_block_key", Default: "dev-only-32-byte-encryption-key!", Desc: "Token encryption key (16, 24 or 32 bytes)"},
	{Name: "token_ttl", Default: "168h", Desc: "Token lifetime (e.g., 24h, 168h)"},

	// Sessions
	{Name: "session_idle_timeout", Default: "72h", Desc: "Close sessions idle for longer than this"},
	{Name: "session_sweep_interval", Default: "10m", Desc: "How often idle sessions are swept"},

	{Name: "timezone", Default: "America/Bogota", Desc: "IANA time zone used for calendar dates"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 'gcs'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for evidence files"},
	{Name: "storage_gcs_bucket", Default: "", Desc: "Google Cloud Storage bucket"},
	{Name: "storage_gcs_prefix", Default: "evidence/", Desc: "Object name prefix inside the bucket"},
	{Name: "storage_gcs_credentials", Default: "", Desc: "Service account JSON file (blank: application default credentials)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of a user promoted to ADMIN on startup"},

	// Deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list and aggregate operations"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for multi-document operations and uploads"},

	// Login throttling
	{Name: "login_rate_ip", Default: 20, Desc: "Login attempts per minute per client IP"},
	{Name: "login_rate_email", Default: 5, Desc: "Login attempts per five minutes per email"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, LIDERPLAN_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LIDERPLAN", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenHashKey:  appValues.String("token_hash_key"),
		TokenBlockKey: appValues.String("token_block_key"),
		TokenTTL:      appValues.Duration("token_ttl", auth.DefaultTokenTTL),

		SessionIdleTimeout:   appValues.Duration("session_idle_timeout", 72*time.Hour),
		SessionSweepInterval: appValues.Duration("session_sweep_interval", 10*time.Minute),

		Timezone: appValues.String("timezone"),

		StorageType:           appValues.String("storage_type"),
		StorageLocalPath:      appValues.String("storage_local_path"),
		StorageGCSBucket:      appValues.String("storage_gcs_bucket"),
		StorageGCSPrefix:      appValues.String("storage_gcs_prefix"),
		StorageGCSCredentials: appValues.String("storage_gcs_credentials"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		AdminEmail: appValues.String("admin_email"),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),

		LoginRateIP:    appValues.Int("login_rate_ip"),
		LoginRateEmail: appValues.Int("login_rate_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Mistakes here would otherwise surface on the first request, so the URI,
// token keys, time zone and storage settings are all checked up front.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}

	if _, err := auth.NewTokenManager([]byte(appCfg.TokenHashKey), []byte(appCfg.TokenBlockKey), appCfg.TokenTTL); err != nil {
		return fmt.Errorf("invalid token keys: %w", err)
	}

	if _, err := time.LoadLocation(appCfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", appCfg.Timezone, err)
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" {
			return fmt.Errorf("storage_type 'local' requires storage_local_path")
		}
	case "gcs":
		if appCfg.StorageGCSBucket == "" {
			return fmt.Errorf("storage_type 'gcs' requires storage_gcs_bucket")
		}
	default:
		return fmt.Errorf("storage_type must be 'local' or 'gcs', got %q", appCfg.StorageType)
	}

	for key, mode := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		switch mode {
		case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, mode)
		}
	}

	if appCfg.LoginRateIP <= 0 || appCfg.LoginRateEmail <= 0 {
		return fmt.Errorf("login_rate_ip and login_rate_email must be positive")
	}
	if appCfg.SessionIdleTimeout <= 0 || appCfg.SessionSweepInterval <= 0 {
		return fmt.Errorf("session_idle_timeout and session_sweep_interval must be positive")
	}
	return nil
}
