// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/groupbook/internal/app/system/auditlog"
	"github.com/dalemusser/groupbook/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvPrefix is the environment variable prefix for app keys.
const EnvPrefix = "GROUPBOOK"

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for groupbook.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: store_type, mongo_uri, session_name, etc.
//   - Environment variables: GROUPBOOK_STORE_TYPE, GROUPBOOK_MONGO_URI, etc.
//   - Command-line flags: --store_type, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_type", Default: StoreMongo, Desc: "Entity store backend: 'mongo' or 'sqlite'"},
	{Name: "sqlite_path", Default: "groupbook.db", Desc: "SQLite database file (sqlite backend only)"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "groupbook", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "groupbook-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the admin account created on startup if missing"},
	{Name: "admin_password", Default: "", Desc: "Initial password for the bootstrap admin"},
	{Name: "admin_name", Default: "Administrator", Desc: "Full name for the bootstrap admin"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "log", Desc: "Auth event logging: 'log' or 'off'"},
	{Name: "audit_log_admin", Default: "log", Desc: "Admin event logging: 'log' or 'off'"},

	// Store call timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Timeout for health pings"},
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-record reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for lists and simple writes"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for registration admission"},

	// Login throttling
	{Name: "login_ip_limit", Default: 10, Desc: "Login attempts allowed per IP per window"},
	{Name: "login_ip_window", Default: "1m", Desc: "Per-IP login window"},
	{Name: "login_email_limit", Default: 5, Desc: "Login attempts allowed per email per window"},
	{Name: "login_email_window", Default: "5m", Desc: "Per-email login window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, GROUPBOOK_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreType:  appValues.String("store_type"),
		SQLitePath: appValues.String("sqlite_path"),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),
		AdminName:     appValues.String("admin_name"),

		Audit: auditlog.Config{
			Auth:  appValues.String("audit_log_auth"),
			Admin: appValues.String("audit_log_admin"),
		},

		Timeouts: timeouts.Config{
			Ping:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
			Short:  appValues.Duration("timeout_short", timeouts.DefaultShort),
			Medium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
			Long:   appValues.Duration("timeout_long", timeouts.DefaultLong),
		}.WithDefaults(),

		LoginIPLimit:     appValues.Int("login_ip_limit"),
		LoginIPWindow:    appValues.Duration("login_ip_window", time.Minute),
		LoginEmailLimit:  appValues.Int("login_email_limit"),
		LoginEmailWindow: appValues.Duration("login_email_window", 5*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The store backend and its connection settings are checked here so that
// misconfiguration fails before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreType {
	case StoreMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return errors.New("mongo_database is required")
		}
	case StoreSQLite:
		if appCfg.SQLitePath == "" {
			return errors.New("sqlite_path is required when store_type is sqlite")
		}
	default:
		return fmt.Errorf("unknown store_type %q (want %q or %q)", appCfg.StoreType, StoreMongo, StoreSQLite)
	}

	if len(appCfg.SessionKey) < 32 {
		return errors.New("session_key must be at least 32 characters")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return errors.New("session_key must be changed from the development default in prod")
	}
	if (appCfg.AdminEmail == "") != (appCfg.AdminPassword == "") {
		return errors.New("admin_email and admin_password must be set together")
	}
	for name, mode := range map[string]string{"audit_log_auth": appCfg.Audit.Auth, "audit_log_admin": appCfg.Audit.Admin} {
		if mode != auditlog.ModeLog && mode != auditlog.ModeOff {
			return fmt.Errorf("%s must be %q or %q, got %q", name, auditlog.ModeLog, auditlog.ModeOff, mode)
		}
	}
	if appCfg.LoginIPLimit <= 0 || appCfg.LoginEmailLimit <= 0 {
		return errors.New("login rate limits must be positive")
	}
	return nil
}
