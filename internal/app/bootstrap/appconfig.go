// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/groupbook/internal/app/system/auditlog"
	"github.com/dalemusser/groupbook/internal/app/system/timeouts"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// Values come from environment variables (GROUPBOOK_*), configuration files,
// or command-line flags, loaded in LoadConfig. WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging level, CORS).
//
// The struct is passed to every lifecycle hook; nothing here is read from
// package-level state.
type AppConfig struct {
	// Entity store selection
	StoreType  string // "mongo" or "sqlite"
	SQLitePath string // database file for the sqlite backend

	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies
	SessionName   string        // Cookie name (default: groupbook-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Bootstrap admin, created on startup when no user holds AdminEmail.
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Audit trail modes ("log" or "off") per event category
	Audit auditlog.Config

	// Store call timeouts handed to handlers
	Timeouts timeouts.Config

	// Login throttling
	LoginIPLimit     int
	LoginIPWindow    time.Duration
	LoginEmailLimit  int
	LoginEmailWindow time.Duration
}
