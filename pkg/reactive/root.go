package reactive

import (
	"log/slog"

	"github.com/eapache/queue"
)

// Root is a reactive state tree: the top-level wrapper plus the change
// notifier attached to it for its lifetime. Every Node reachable from the
// root points back at it.
type Root struct {
	id         uint64
	node       Node
	memo       *memo
	notifier   *Notifier[*Root]
	scheduler  *Scheduler
	middleware Middleware
	logger     *slog.Logger

	// Tick state for roots without a scheduler. Only the owner touches it.
	deferred *queue.Queue
	depth    int
	flushing bool
}

// CreateReactiveState wraps raw and returns its root wrapper: *Object for a
// map[string]any, *Array for a []any or *[]any. Any other value, including
// nil maps and slices, is returned unchanged. Calling it again with the same
// raw value, or with a wrapper, returns the same wrapper.
func CreateReactiveState(raw any, opts ...Option) any {
	if n, ok := raw.(Node); ok && n.Root().memo.holds(n) {
		return n
	}
	r, ok := NewRoot(raw, opts...)
	if !ok {
		return raw
	}
	return r.node
}

// NewRoot is the typed form of CreateReactiveState. It reports false for
// values that cannot be observed. Given a wrapper it returns the root the
// wrapper belongs to.
func NewRoot(raw any, opts ...Option) (*Root, bool) {
	switch x := raw.(type) {
	case *Object:
		if x.root.memo.holds(x) {
			return x.root, true
		}
		raw = x.raw
	case *Array:
		if x.root.memo.holds(x) {
			return x.root, true
		}
		raw = x.raw
	case []any:
		if x == nil {
			return nil, false
		}
		raw = box(x)
	}

	key, ok := identityOf(raw)
	if !ok {
		return nil, false
	}
	r, _ := roots.loadOrStore(key, func() *Root {
		return newRoot(raw, opts)
	})
	return r, true
}

func newRoot(raw any, opts []Option) *Root {
	cfg := rootConfig{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	id := nextID()
	r := &Root{
		id:         id,
		memo:       newMemo(),
		notifier:   NewNotifier[*Root](),
		scheduler:  cfg.scheduler,
		middleware: Chain(cfg.middleware...),
		logger:     cfg.logger.With("root", id),
		deferred:   queue.New(),
	}
	r.node = r.wrap(raw).(Node)
	return r
}

// ID returns the root's unique identifier.
func (r *Root) ID() uint64 {
	return r.id
}

// Node returns the top-level wrapper.
func (r *Root) Node() Node {
	return r.node
}

// Object returns the top-level wrapper when the root is an object.
func (r *Root) Object() *Object {
	o, _ := r.node.(*Object)
	return o
}

// Array returns the top-level wrapper when the root is an array.
func (r *Root) Array() *Array {
	a, _ := r.node.(*Array)
	return a
}

// Snapshot returns a detached deep copy of the whole tree.
func (r *Root) Snapshot() any {
	return r.node.Snapshot()
}

// Scheduler returns the scheduler batched bindings defer to, or nil when
// the root ends its own ticks.
func (r *Root) Scheduler() *Scheduler {
	return r.scheduler
}

// Subscribe registers a coarse subscriber that runs synchronously on every
// accepted change. The callback receives the root; it must re-read whatever
// it needs.
func (r *Root) Subscribe(fn func(r *Root)) *Subscription {
	sub := r.notifier.Subscribe(fn)
	r.logger.Debug("subscribed", "subscription", sub.ID())
	return sub
}

// Subscribers returns the number of live subscriptions, bindings included.
func (r *Root) Subscribers() int {
	return r.notifier.Len()
}

// changed is called by wrappers after every accepted mutation.
func (r *Root) changed() {
	r.Batch(func() { r.notifier.Emit(r) })
}
