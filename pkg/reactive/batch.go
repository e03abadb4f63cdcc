package reactive

// Batch runs fn as one tick. Batched bindings on a root created without
// WithScheduler evaluate once, after the outermost Batch returns, however
// many changes fn made. Every mutation outside a Batch is a tick of its
// own. Batches nest.
//
// On a root with its own scheduler Batch only runs fn; ticks end when the
// scheduler flushes.
//
// If fn panics the deferred evaluations stay queued for the next tick.
func (r *Root) Batch(fn func()) {
	r.depth++
	completed := false
	defer func() {
		r.depth--
		if completed && r.depth == 0 && r.scheduler == nil {
			r.flushLocal()
		}
	}()

	fn()
	completed = true
}

// deferTask queues fn until the current tick ends.
func (r *Root) deferTask(fn func()) {
	if r.scheduler != nil {
		r.scheduler.Defer(fn)
		return
	}
	r.deferred.Add(fn)
}

// flushLocal runs the root's own deferred tasks, including ones queued
// while it runs. A nested call returns at once; the outer loop picks up
// whatever the nested tick queued.
func (r *Root) flushLocal() int {
	if r.flushing {
		return 0
	}
	r.flushing = true
	defer func() { r.flushing = false }()

	n := 0
	for r.deferred.Length() > 0 {
		fn := r.deferred.Remove().(func())
		fn()
		n++
	}
	return n
}

// Flush ends the current tick now and returns how many deferred tasks ran.
// On a root with its own scheduler this flushes that scheduler.
func (r *Root) Flush() int {
	if r.scheduler != nil {
		return r.scheduler.Flush()
	}
	return r.flushLocal()
}

// Pending returns the number of deferred tasks waiting for the tick to end.
func (r *Root) Pending() int {
	if r.scheduler != nil {
		return r.scheduler.Pending()
	}
	return r.deferred.Length()
}
