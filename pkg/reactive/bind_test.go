package reactive

import (
	"testing"
)

func personState(t *testing.T) (*Root, *Scheduler) {
	t.Helper()
	return newTestState(t, map[string]any{
		"name": "lujs",
		"obj":  map[string]any{"age": 18},
	})
}

func ageSelector(r *Root) any {
	return r.Object().Object("obj").Get("age")
}

func TestSelectorFiresOnlyOnProjectionChange(t *testing.T) {
	for _, mode := range []Mode{ModeSync, ModeBatched} {
		t.Run(mode.String(), func(t *testing.T) {
			r, sched := personState(t)
			calls := 0
			b := BindObserver(r, func() { calls++ },
				WithSelector(ageSelector), WithSync(mode == ModeSync))
			defer b.Teardown()

			r.Object().Set("name", "yahaha")
			sched.Flush()
			if calls != 0 {
				t.Fatalf("calls after unrelated change = %d, want 0", calls)
			}

			r.Object().Object("obj").Set("age", 19)
			sched.Flush()
			if calls != 1 {
				t.Errorf("calls after selected change = %d, want 1", calls)
			}
		})
	}
}

func TestSelectorComparesStructurally(t *testing.T) {
	r, _ := newTestState(t, map[string]any{
		"obj": map[string]any{"age": 18, "tags": []any{"a"}},
	})
	calls := 0
	b := BindObserver(r, func() { calls++ },
		WithSelector(func(r *Root) any { return r.Object().Object("obj") }),
		WithSync(true))
	defer b.Teardown()

	// A new map with the same content is a different reference but the
	// same projection.
	r.Object().Set("obj", map[string]any{"age": 18, "tags": []any{"a"}})
	if calls != 0 {
		t.Fatalf("calls after structurally equal replacement = %d, want 0", calls)
	}

	// The cached projection must not alias the live tree.
	r.Object().Object("obj").Array("tags").Push("b")
	if calls != 1 {
		t.Errorf("calls after nested push = %d, want 1", calls)
	}
}

func TestSelectorTypedProjection(t *testing.T) {
	r, _ := personState(t)
	calls := 0
	b := BindObserver(r, func() { calls++ },
		Select(func(r *Root) string { return r.Object().Get("name").(string) }),
		WithSync(true))
	defer b.Teardown()

	r.Object().Object("obj").Set("age", 30)
	r.Object().Set("name", "other")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if b.Kind() != KindSelector {
		t.Errorf("Kind() = %v, want %v", b.Kind(), KindSelector)
	}
}

func TestSelectorCacheMovesForward(t *testing.T) {
	r, _ := personState(t)
	calls := 0
	b := BindObserver(r, func() { calls++ }, WithSelector(ageSelector), WithSync(true))
	defer b.Teardown()

	age := r.Object().Object("obj")
	age.Set("age", 19)
	age.Set("age", 19)
	age.Set("age", 18)

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestBatchedCoalescesChanges(t *testing.T) {
	tests := []struct {
		name string
		sync bool
		want int
	}{
		{"batched", false, 1},
		{"sync", true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sched := personState(t)
			calls := 0
			b := BindObserver(r, func() { calls++ }, WithSync(tt.sync))
			defer b.Teardown()

			r.Object().Set("name", "one")
			r.Object().Set("name", "two")
			if tt.sync && calls != 2 {
				t.Fatalf("sync calls before flush = %d, want 2", calls)
			}
			if !tt.sync && calls != 0 {
				t.Fatalf("batched calls before flush = %d, want 0", calls)
			}

			sched.Flush()
			if calls != tt.want {
				t.Errorf("calls = %d, want %d", calls, tt.want)
			}
		})
	}
}

func TestBatchedSeesLatestState(t *testing.T) {
	r, sched := personState(t)
	var seen any
	b := BindObserver(r, func() { seen = r.Object().Get("name") })
	defer b.Teardown()

	r.Object().Set("name", "one")
	r.Object().Set("name", "two")
	sched.Flush()

	if seen != "two" {
		t.Errorf("seen = %v, want two", seen)
	}
}

func TestBatchedOnePerTick(t *testing.T) {
	r, sched := personState(t)
	calls := 0
	b := BindObserver(r, func() { calls++ })
	defer b.Teardown()

	r.Object().Set("name", "one")
	sched.Flush()
	r.Object().Set("name", "two")
	sched.Flush()

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestTeardownCancelsPendingBatch(t *testing.T) {
	r, sched := personState(t)
	calls := 0
	b := BindObserver(r, func() { calls++ })

	r.Object().Set("name", "one")
	if sched.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", sched.Pending())
	}
	b.Teardown()
	sched.Flush()

	if calls != 0 {
		t.Errorf("calls after teardown = %d, want 0", calls)
	}
	if b.Active() {
		t.Error("binding should be inactive after teardown")
	}
	if r.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", r.Subscribers())
	}

	b.Teardown()
	r.Object().Set("name", "two")
	sched.Flush()
	if calls != 0 {
		t.Errorf("calls after second teardown = %d, want 0", calls)
	}
}

func TestTeardownDuringDispatch(t *testing.T) {
	r, _ := personState(t)
	var second *Binding
	firstCalls, secondCalls := 0, 0

	first := BindObserver(r, func() {
		firstCalls++
		second.Teardown()
	}, WithSync(true))
	defer first.Teardown()
	second = BindObserver(r, func() { secondCalls++ }, WithSync(true))

	r.Object().Set("name", "x")

	if firstCalls != 1 || secondCalls != 0 {
		t.Errorf("calls (first, second) = (%d, %d), want (1, 0)", firstCalls, secondCalls)
	}
}

func TestMutationInsideCallback(t *testing.T) {
	r, sched := newTestState(t, map[string]any{"count": 0, "double": 0})
	calls := 0
	b := BindObserver(r, func() {
		calls++
		o := r.Object()
		o.Set("double", o.Get("count").(int)*2)
	})
	defer b.Teardown()

	r.Object().Set("count", 2)
	sched.Flush()

	if got := r.Object().Get("double"); got != 4 {
		t.Errorf("double = %v, want 4", got)
	}
	// The write inside the callback schedules one more evaluation, which
	// writes an identical value and settles.
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSelectorPanicPropagates(t *testing.T) {
	r, _ := personState(t)
	b := BindObserver(r, func() {}, WithSync(true), WithSelector(func(r *Root) any {
		if r.Object().Get("name") == "boom" {
			panic("selector failed")
		}
		return nil
	}))
	defer b.Teardown()

	defer func() {
		if recover() == nil {
			t.Error("selector panic should reach the mutating caller")
		}
	}()
	r.Object().Set("name", "boom")
}

func TestBindingDefaults(t *testing.T) {
	r, _ := NewRoot(map[string]any{
		"name": "lujs",
		"obj":  map[string]any{"age": 18},
	})
	calls := 0
	b := BindObserver(r, func() { calls++ })
	defer b.Teardown()

	if b.Kind() != KindCoarse {
		t.Errorf("Kind() = %v, want coarse", b.Kind())
	}
	if b.Mode() != ModeBatched {
		t.Errorf("Mode() = %v, want batched", b.Mode())
	}
	if b.ID() == 0 {
		t.Error("ID() should be non-zero")
	}

	r.Object().Object("obj").Set("age", 19)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestMiddlewareSeesDispatch(t *testing.T) {
	var got []Dispatch
	mw := MiddlewareFunc(func(d *Dispatch, next func()) {
		next()
		got = append(got, *d)
	})
	sched := NewScheduler()
	r, _ := NewRoot(map[string]any{"name": "a", "age": 1},
		WithScheduler(sched), WithMiddleware(mw))

	b := BindObserver(r, func() {}, WithSync(true),
		WithSelector(func(r *Root) any { return r.Object().Get("age") }))
	defer b.Teardown()

	r.Object().Set("name", "b")
	r.Object().Set("age", 2)

	if len(got) != 2 {
		t.Fatalf("dispatches = %d, want 2", len(got))
	}
	if got[0].Delivered {
		t.Error("first dispatch should not be delivered")
	}
	if !got[1].Delivered {
		t.Error("second dispatch should be delivered")
	}
	if got[1].Kind != KindSelector || got[1].Mode != ModeSync {
		t.Errorf("dispatch = %+v, want selector/sync", got[1])
	}
	if got[1].RootID != r.ID() || got[1].BindingID != b.ID() {
		t.Errorf("dispatch ids = (%d, %d), want (%d, %d)",
			got[1].RootID, got[1].BindingID, r.ID(), b.ID())
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return MiddlewareFunc(func(d *Dispatch, next func()) {
			order = append(order, name+">")
			next()
			order = append(order, "<"+name)
		})
	}

	chain := Chain(mark("a"), nil, mark("b"))
	chain.Handle(&Dispatch{}, func() { order = append(order, "run") })

	want := []string{"a>", "b>", "run", "<b", "<a"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	if Chain() != nil {
		t.Error("Chain() should be nil")
	}
	if Chain(nil, nil) != nil {
		t.Error("Chain(nil, nil) should be nil")
	}
}

func TestKindAndModeString(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{KindCoarse.String(), "coarse"},
		{KindSelector.String(), "selector"},
		{Kind(9).String(), "unknown"},
		{ModeBatched.String(), "batched"},
		{ModeSync.String(), "sync"},
		{Mode(9).String(), "unknown"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
