// Package rstate provides the public API for observable state trees.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/rstate"
//
// Usage:
//
//	state := rstate.CreateReactiveState(map[string]any{
//	    "name": "lujs",
//	    "obj":  map[string]any{"age": 18},
//	}).(*rstate.Object)
//
//	b := rstate.BindObserver(state.Root(), rerender,
//	    rstate.Select(func(r *rstate.Root) any {
//	        return r.Object().Object("obj").Get("age")
//	    }))
//	defer b.Teardown()
//
//	state.Object("obj").Set("age", 19) // rerender once the mutation returns
//
//	state.Root().Batch(func() {
//	    state.Set("name", "yahaha")
//	    state.Object("obj").Set("age", 20)
//	}) // one tick for both changes
package rstate

import (
	"github.com/vango-dev/rstate/pkg/reactive"
)

// =============================================================================
// State trees (re-export from pkg/reactive)
// =============================================================================

// Root is a state tree with its change notifier.
type Root = reactive.Root

// Node is implemented by Object and Array.
type Node = reactive.Node

// Object observes a map[string]any.
type Object = reactive.Object

// Array observes a []any.
type Array = reactive.Array

// Option configures a root.
type Option = reactive.Option

// CreateReactiveState wraps raw and returns its root wrapper. Values that
// cannot be observed are returned unchanged.
func CreateReactiveState(raw any, opts ...Option) any {
	return reactive.CreateReactiveState(raw, opts...)
}

// NewRoot is the typed form of CreateReactiveState.
func NewRoot(raw any, opts ...Option) (*Root, bool) {
	return reactive.NewRoot(raw, opts...)
}

// WithScheduler sets the scheduler batched bindings defer to.
var WithScheduler = reactive.WithScheduler

// WithMiddleware adds middleware around binding evaluations.
var WithMiddleware = reactive.WithMiddleware

// WithLogger sets the root's logger.
var WithLogger = reactive.WithLogger

// Snapshot returns a plain deep copy of v, unwrapping any wrappers.
func Snapshot(v any) any {
	return reactive.Detach(v)
}

// =============================================================================
// Observers (re-export from pkg/reactive)
// =============================================================================

// Binding is the handle held between mount and unmount.
type Binding = reactive.Binding

// BindOption configures a binding.
type BindOption = reactive.BindOption

// Selector projects a root onto the value a binding depends on.
type Selector = reactive.Selector

// Subscription is a coarse subscription handle.
type Subscription = reactive.Subscription

// BindObserver registers rerender on root.
func BindObserver(root *Root, rerender func(), opts ...BindOption) *Binding {
	return reactive.BindObserver(root, rerender, opts...)
}

// WithSelector makes a binding fire only when sel's value changes.
var WithSelector = reactive.WithSelector

// WithSync delivers on every change instead of once per tick.
var WithSync = reactive.WithSync

// Select is WithSelector for an untyped projection.
func Select(fn func(r *Root) any) BindOption {
	return reactive.Select(fn)
}

// =============================================================================
// Scheduling (re-export from pkg/reactive)
// =============================================================================

// Scheduler runs batched evaluations once per tick.
type Scheduler = reactive.Scheduler

// NewScheduler creates a scheduler.
var NewScheduler = reactive.NewScheduler

// Batch runs fn on root as a single tick.
func Batch(root *Root, fn func()) {
	root.Batch(fn)
}

// =============================================================================
// Middleware (re-export from pkg/reactive)
// =============================================================================

// Middleware wraps binding evaluations.
type Middleware = reactive.Middleware

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc = reactive.MiddlewareFunc

// Dispatch describes one evaluation.
type Dispatch = reactive.Dispatch
