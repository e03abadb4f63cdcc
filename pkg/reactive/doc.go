// Package reactive makes plain data trees observable.
//
// A tree of map[string]any objects and []any arrays is wrapped once; every
// mutation made through the wrappers, at any depth, notifies the root's
// subscribers. Callers never dispatch change events by hand.
//
// # Core Types
//
// Root owns a state tree and its change notifier:
//
//	state := reactive.CreateReactiveState(map[string]any{
//	    "name": "lujs",
//	    "obj":  map[string]any{"age": 18},
//	}).(*reactive.Object)
//
//	state.Object("obj").Set("age", 19) // notifies
//	state.Set("name", "lujs")           // identical value, no notification
//
// Object and Array are the wrappers. Reads wrap nested containers lazily and
// memoize them, so the same raw map always yields the same *Object.
//
// # Subscribing
//
// Root.Subscribe registers a coarse, synchronous callback. BindObserver is
// the surface for view layers: it takes an optional selector and a dispatch
// mode:
//
//	b := reactive.BindObserver(root, rerender,
//	    reactive.Select(func(r *reactive.Root) any {
//	        return r.Object().Object("obj").Get("age")
//	    }),
//	)
//	defer b.Teardown()
//
// A selector binding caches a detached copy of its projection and fires
// only when a new projection differs structurally.
//
// # Batching
//
// Bindings are batched by default: changes mark the binding dirty and one
// evaluation is deferred to the end of the tick. Any number of mutations
// in one tick produce at most one evaluation. WithSync(true) evaluates on
// every change instead.
//
// A root ends a tick when its outermost mutation or Root.Batch returns:
//
//	root.Batch(func() {
//	    state.Set("name", "yahaha")
//	    state.Object("obj").Set("age", 20)
//	}) // rerender runs once, here
//
// A root built WithScheduler defers to that Scheduler instead, and every
// Scheduler.Flush is a tick.
//
// # Thread Safety
//
// A state tree has a single owner. Notifier, scheduler and binding
// bookkeeping are safe to use from several goroutines, but wrappers are
// not: run mutations on one goroutine, for example through Scheduler.Run.
package reactive
