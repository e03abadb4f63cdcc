package reactive

import "log/slog"

// rootConfig collects Option values. Options only apply when a root is
// first created; later calls for the same raw value return the existing
// root unchanged.
type rootConfig struct {
	scheduler  *Scheduler
	middleware []Middleware
	logger     *slog.Logger
}

// Option configures a Root.
type Option func(*rootConfig)

// WithScheduler sets the scheduler batched bindings defer to. Ticks then
// end only when the scheduler flushes, by Flush or from its Run loop.
func WithScheduler(s *Scheduler) Option {
	return func(c *rootConfig) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithMiddleware adds middleware around every binding evaluation.
func WithMiddleware(mws ...Middleware) Option {
	return func(c *rootConfig) {
		c.middleware = append(c.middleware, mws...)
	}
}

// WithLogger sets the root's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *rootConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// bindConfig collects BindOption values.
type bindConfig struct {
	selector Selector
	sync     bool
}

// BindOption configures a binding.
type BindOption func(*bindConfig)

// WithSelector makes the binding fine-grained: it fires only when the
// projection returned by sel changes structurally.
func WithSelector(sel Selector) BindOption {
	return func(c *bindConfig) {
		c.selector = sel
	}
}

// Select is a typed form of WithSelector.
func Select[T any](fn func(r *Root) T) BindOption {
	return WithSelector(func(r *Root) any { return fn(r) })
}

// WithSync selects synchronous dispatch. The default is batched.
func WithSync(sync bool) BindOption {
	return func(c *bindConfig) {
		c.sync = sync
	}
}
