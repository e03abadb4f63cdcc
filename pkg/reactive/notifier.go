package reactive

import (
	"sync"
	"sync/atomic"
)

// Notifier is a multicast emission point. Every Root owns one; it delivers
// the root to each subscriber on every accepted change.
//
// Emit copies the subscriber list before calling anyone, so callbacks may
// subscribe or unsubscribe freely. A subscription added during an emission
// is first called on the next one; a subscription removed during an
// emission is not called after its removal. No one is called twice.
type Notifier[T any] struct {
	subs []*entry[T]
	mu   sync.RWMutex
}

type entry[T any] struct {
	sub *Subscription
	fn  func(T)
}

// Subscription owns one subscriber's membership in a Notifier.
type Subscription struct {
	id     uint64
	active atomic.Bool
	cancel func()
}

// NewNotifier creates an empty notifier.
func NewNotifier[T any]() *Notifier[T] {
	return &Notifier[T]{}
}

// Subscribe registers fn and returns the handle that removes it.
func (n *Notifier[T]) Subscribe(fn func(T)) *Subscription {
	sub := &Subscription{id: nextID()}
	sub.active.Store(true)
	e := &entry[T]{sub: sub, fn: fn}
	sub.cancel = func() { n.remove(e) }

	n.mu.Lock()
	n.subs = append(n.subs, e)
	n.mu.Unlock()
	return sub
}

func (n *Notifier[T]) remove(e *entry[T]) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, existing := range n.subs {
		if existing == e {
			// Keep registration order for the remaining subscribers.
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return
		}
	}
}

// Emit calls every current subscriber with v, in registration order.
func (n *Notifier[T]) Emit(v T) {
	n.mu.RLock()
	subs := make([]*entry[T], len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()

	for _, e := range subs {
		if !e.sub.active.Load() {
			continue
		}
		e.fn(v)
	}
}

// Len returns the number of active subscriptions.
func (n *Notifier[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() uint64 {
	return s.id
}

// Active reports whether the subscription is still registered.
func (s *Subscription) Active() bool {
	return s.active.Load()
}

// Unsubscribe removes the subscriber. Calling it again is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active.Swap(false) {
		return
	}
	s.cancel()
}
