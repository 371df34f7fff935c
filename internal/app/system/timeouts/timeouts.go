// Package timeouts provides the timeout values handlers apply to store calls.
//
// A Config is built once from application configuration and handed to each
// handler; there is no package-level state.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: single-record reads or lookups
//   - Medium: list queries, availability scans, simple writes
//   - Long: admission and other multi-step writes
package timeouts

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Default timeout values, used for any zero field in a Config.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config holds timeout configuration values.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Defaults returns a Config with every field set to its default.
func Defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
	}
}

// WithDefaults fills zero or negative fields with their defaults.
func (c Config) WithDefaults() Config {
	d := Defaults()
	if c.Ping <= 0 {
		c.Ping = d.Ping
	}
	if c.Short <= 0 {
		c.Short = d.Short
	}
	if c.Medium <= 0 {
		c.Medium = d.Medium
	}
	if c.Long <= 0 {
		c.Long = d.Long
	}
	return c
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the context was canceled due to deadline exceeded.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Long, h.Log, "register")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
