package main

import (
	"io"
	"log/slog"

	"github.com/vango-dev/rstate/internal/config"
	"github.com/vango-dev/rstate/pkg/middleware"
	"github.com/vango-dev/rstate/pkg/reactive"
)

// env is the resolved configuration for one command.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// loadEnv reads rstate.json and builds the logger. Logs go to w.
func loadEnv(g *globalFlags, w io.Writer) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler
	if cfg.Log.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &env{cfg: cfg, logger: slog.New(h)}, nil
}

// newScheduler builds the scheduler described by the config.
func (e *env) newScheduler() (*reactive.Scheduler, error) {
	tick, err := e.cfg.TickDuration()
	if err != nil {
		return nil, err
	}
	return reactive.NewScheduler(
		reactive.WithTickInterval(tick),
		reactive.WithTaskBuffer(e.cfg.Scheduler.TaskBuffer),
		reactive.WithSchedulerLogger(e.logger),
	), nil
}

func (e *env) metricsOptions() []middleware.MetricsOption {
	return []middleware.MetricsOption{
		middleware.WithNamespace(e.cfg.Metrics.Namespace),
		middleware.WithSubsystem(e.cfg.Metrics.Subsystem),
	}
}

// rootOptions returns the options every loaded root gets: the scheduler,
// the logger and the middleware enabled in the config.
func (e *env) rootOptions(sched *reactive.Scheduler) []reactive.Option {
	var mws []reactive.Middleware
	if e.cfg.Metrics.Enabled {
		mws = append(mws, middleware.Prometheus(e.metricsOptions()...))
	}
	if e.cfg.Tracing.Enabled {
		mws = append(mws, middleware.OpenTelemetry(middleware.WithTracerName(e.cfg.Tracing.TracerName)))
	}
	if e.cfg.SlogLevel() <= slog.LevelDebug {
		mws = append(mws, middleware.Logging(e.logger))
	}
	return []reactive.Option{
		reactive.WithScheduler(sched),
		reactive.WithLogger(e.logger),
		reactive.WithMiddleware(mws...),
	}
}

// track counts changes to root when metrics are enabled. The returned stop
// function is never nil.
func (e *env) track(root *reactive.Root) func() {
	if !e.cfg.Metrics.Enabled {
		return func() {}
	}
	return middleware.Track(root, e.metricsOptions()...).Stop
}
