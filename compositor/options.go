package compositor

import (
	"log/slog"
	"time"

	"photo2pdf/contracts"
)

type Option func(*Compositor)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Compositor) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPrefetch sets how many images may be read and decoded ahead of the
// page being assembled. Values below 1 mean 1.
func WithPrefetch(n int) Option {
	return func(c *Compositor) {
		if n < 1 {
			n = 1
		}
		c.prefetch = n
	}
}

// WithFilter replaces the filter used for per-image adjustments.
func WithFilter(f contracts.Filter) Option {
	return func(c *Compositor) {
		if f != nil {
			c.filter = f
		}
	}
}

// WithClock sets the time source used for default output names.
func WithClock(now func() time.Time) Option {
	return func(c *Compositor) {
		if now != nil {
			c.now = now
		}
	}
}
