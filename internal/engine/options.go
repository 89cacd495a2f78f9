package engine

import (
	"go.uber.org/zap"

	"github.com/lineal-dev/lineal/internal/store"
)

// config holds per-session wiring beyond the registry and inputs.
type config struct {
	logger *zap.Logger
	tokens TokenGenerator
	store  *store.Store
}

func defaultConfig() config {
	return config{
		logger: zap.NewNop(),
		tokens: UUIDv7Generator{},
	}
}

// Option configures an entry-point call.
type Option func(*config)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTokenGenerator sets the session token source. Defaults to UUIDv7.
// Tests pass a FixedGenerator for deterministic traces.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(c *config) {
		if gen != nil {
			c.tokens = gen
		}
	}
}

// WithStore enables audit recording: the session record, trace, and
// verdict are written to the store after verification, pass or fail.
// Audit writes are best-effort; a write failure is logged and does not
// change the session's outcome.
func WithStore(st *store.Store) Option {
	return func(c *config) {
		c.store = st
	}
}
