package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/rstate/internal/errors"
	"github.com/vango-dev/rstate/pkg/document"
	"github.com/vango-dev/rstate/pkg/inspect"
)

type inspectOptions struct {
	script    string
	addr      string
	stepDelay time.Duration
}

func inspectCmd(g *globalFlags) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <state>",
		Short: "Serve a live, read-only view of a state document",
		Long: `Load a state document and serve it over HTTP.

Routes:
  GET /state    current state as JSON
  GET /ws       snapshot, then a merge patch after every tick
  GET /metrics  Prometheus metrics

With --script the steps are applied one per tick, --step-delay apart.

Examples:
  rstate inspect state.yaml
  rstate inspect state.yaml --script steps.yaml --addr :7070`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runInspect(ctx, cmd.OutOrStdout(), e, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.script, "script", "s", "", "Mutation script to play (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (default from rstate.json)")
	cmd.Flags().DurationVar(&opts.stepDelay, "step-delay", 500*time.Millisecond, "Delay between script steps")

	return cmd
}

func runInspect(ctx context.Context, w io.Writer, e *env, path string, opts *inspectOptions) error {
	var script *document.Script
	if opts.script != "" {
		s, err := document.LoadScript(opts.script)
		if err != nil {
			return err
		}
		script = s
	}

	sched, err := e.newScheduler()
	if err != nil {
		return err
	}
	root, err := document.LoadRoot(path, e.rootOptions(sched)...)
	if err != nil {
		return err
	}
	defer e.track(root)()

	srv := inspect.New(root, inspect.WithLogger(e.logger))
	defer srv.Close()

	addr := opts.addr
	if addr == "" {
		addr = e.cfg.InspectAddress()
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		err := httpServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr <- errors.New("E150").WithDetail("Cannot serve on " + addr).Wrap(err)
		}
		cancel()
	}()

	success(w, "Inspecting %s", path)
	info(w, "http://%s/state", addr)
	info(w, "ws://%s/ws", addr)
	fmt.Fprintln(w)

	if script != nil {
		go playScript(ctx, w, e, script, root, sched, opts.stepDelay)
	}

	// The scheduler loop owns the root from here on.
	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	httpServer.Shutdown(shutdownCtx)

	select {
	case err := <-serveErr:
		return err
	default:
	}
	info(w, "Shutting down...")
	return nil
}
