package reactive

import (
	"sync"
	"sync/atomic"
)

// Selector projects the part of a root a binding cares about.
type Selector func(r *Root) any

// evaluator is one of the two subscriber kinds. evaluate reports whether
// the callback was invoked.
type evaluator interface {
	kind() Kind
	evaluate(r *Root) bool
}

// coarseSubscriber delivers every accepted change.
type coarseSubscriber struct {
	fn func()
}

func (s *coarseSubscriber) kind() Kind { return KindCoarse }

func (s *coarseSubscriber) evaluate(*Root) bool {
	s.fn()
	return true
}

// selectorSubscriber delivers only when the projection differs from the
// last one it saw. last is always a detached copy.
type selectorSubscriber struct {
	selector Selector
	fn       func()
	last     any
}

func newSelectorSubscriber(r *Root, sel Selector, fn func()) *selectorSubscriber {
	return &selectorSubscriber{
		selector: sel,
		fn:       fn,
		last:     Detach(sel(r)),
	}
}

func (s *selectorSubscriber) kind() Kind { return KindSelector }

func (s *selectorSubscriber) evaluate(r *Root) bool {
	next := Detach(s.selector(r))
	changed := !Equal(next, s.last)
	// The cache moves forward even when nothing is delivered, and before
	// the callback so a re-entrant evaluation compares against it.
	s.last = next
	if changed {
		s.fn()
	}
	return changed
}

// dispatcher pairs an evaluator with a dispatch mode and owns its
// notifier subscription.
type dispatcher struct {
	id   uint64
	kind Kind
	mode Mode
	sub  *Subscription

	// mu guards root and eval. Teardown clears them so a flush still
	// queued on a scheduler keeps nothing alive.
	mu   sync.Mutex
	root *Root
	eval evaluator

	// alive is cleared by teardown; deferred runs check it before firing.
	alive atomic.Bool

	// dirty marks a batched evaluation as already scheduled for this tick.
	dirty atomic.Bool
}

func (d *dispatcher) target() (*Root, evaluator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.root, d.eval
}

func (d *dispatcher) onChange(r *Root) {
	if !d.alive.Load() {
		return
	}
	if d.mode == ModeSync {
		d.run()
		return
	}
	if d.dirty.CompareAndSwap(false, true) {
		r.deferTask(d.flush)
	}
}

// flush is the deferred half of batched mode.
func (d *dispatcher) flush() {
	if !d.alive.Load() {
		return
	}
	if !d.dirty.CompareAndSwap(true, false) {
		return
	}
	d.run()
}

func (d *dispatcher) run() {
	root, eval := d.target()
	if root == nil {
		return
	}
	disp := &Dispatch{
		RootID:    root.id,
		BindingID: d.id,
		Kind:      d.kind,
		Mode:      d.mode,
	}
	next := func() { disp.Delivered = eval.evaluate(root) }
	if mw := root.middleware; mw != nil {
		mw.Handle(disp, next)
		return
	}
	next()
}

// teardown returns the root the dispatcher was bound to, or nil if it was
// already torn down.
func (d *dispatcher) teardown() *Root {
	if !d.alive.Swap(false) {
		return nil
	}
	d.sub.Unsubscribe()
	d.dirty.Store(false)

	d.mu.Lock()
	defer d.mu.Unlock()
	root := d.root
	d.root, d.eval = nil, nil
	return root
}
