package middleware

import (
	"log/slog"
	"time"

	"github.com/vango-dev/rstate/pkg/reactive"
)

// Logging creates middleware that writes one Debug record per evaluation.
// A nil logger uses slog.Default().
func Logging(logger *slog.Logger) reactive.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return reactive.MiddlewareFunc(func(d *reactive.Dispatch, next func()) {
		start := time.Now()
		next()
		logger.Debug("binding evaluated",
			"root", d.RootID,
			"binding", d.BindingID,
			"kind", d.Kind.String(),
			"mode", d.Mode.String(),
			"delivered", d.Delivered,
			"duration", time.Since(start),
		)
	})
}

// Chain composes middleware so the first argument runs outermost.
func Chain(mws ...reactive.Middleware) reactive.Middleware {
	return reactive.Chain(mws...)
}
