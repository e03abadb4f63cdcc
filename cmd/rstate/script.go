package main

import (
	"context"
	"io"
	"time"

	"github.com/vango-dev/rstate/pkg/document"
	"github.com/vango-dev/rstate/pkg/reactive"
)

// playScript posts one step per task to the scheduler loop, waiting delay
// between steps. It stops at the first failing step. Output is written
// from inside the tasks so it never races the loop.
func playScript(ctx context.Context, w io.Writer, e *env, s *document.Script, root *reactive.Root, sched *reactive.Scheduler, delay time.Duration) {
	for i := range s.Steps {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}

		ok := make(chan bool, 1)
		err := sched.Post(ctx, func() {
			if err := s.ApplyStep(root, i); err != nil {
				e.logger.Error("script stopped", "step", i, "error", err)
				ok <- false
				return
			}
			info(w, "%s %s", gray("step"), s.Steps[i])
			if i == len(s.Steps)-1 {
				success(w, "Script finished (%d steps)", len(s.Steps))
			}
			ok <- true
		})
		if err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case applied := <-ok:
			if !applied {
				return
			}
		}
	}
}
