package reactive

import (
	"testing"
)

// newTestState wraps raw with a private scheduler so tests never share
// deferred work.
func newTestState(t *testing.T, raw any) (*Root, *Scheduler) {
	t.Helper()
	sched := NewScheduler()
	r, ok := NewRoot(raw, WithScheduler(sched))
	if !ok {
		t.Fatalf("NewRoot(%T) reported not observable", raw)
	}
	return r, sched
}

// counter subscribes to r and returns a pointer to the notification count.
func counter(r *Root) *int {
	n := new(int)
	r.Subscribe(func(*Root) { *n++ })
	return n
}

func TestCreateReactiveStateIdempotent(t *testing.T) {
	raw := map[string]any{"name": "a"}

	first := CreateReactiveState(raw)
	second := CreateReactiveState(raw)
	if first != second {
		t.Fatalf("CreateReactiveState returned %p then %p for the same map", first, second)
	}

	r1, _ := NewRoot(raw)
	r2, _ := NewRoot(raw)
	if r1 != r2 {
		t.Error("NewRoot should return the same Root for the same raw value")
	}
	if r1.Node() != first {
		t.Error("root node should be the wrapper returned by CreateReactiveState")
	}
}

func TestCreateReactiveStateScalarsPassThrough(t *testing.T) {
	type point struct{ X, Y int }

	tests := []struct {
		name string
		raw  any
	}{
		{"int", 42},
		{"string", "hello"},
		{"bool", true},
		{"nil", nil},
		{"nil map", map[string]any(nil)},
		{"nil slice", []any(nil)},
		{"struct", point{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateReactiveState(tt.raw)
			if _, isNode := got.(Node); isNode {
				t.Fatalf("CreateReactiveState(%v) returned a wrapper", tt.raw)
			}
			if _, ok := NewRoot(tt.raw); ok {
				t.Errorf("NewRoot(%v) ok = true, want false", tt.raw)
			}
		})
	}
}

func TestCreateReactiveStateOnWrapperReturnsIt(t *testing.T) {
	r, _ := newTestState(t, map[string]any{"a": map[string]any{"b": 1}})
	a := r.Object().Object("a")

	if got := CreateReactiveState(a); got != a {
		t.Errorf("CreateReactiveState(wrapper) = %p, want %p", got, a)
	}
	if got, _ := NewRoot(a); got != r {
		t.Error("NewRoot(wrapper) should return the wrapper's root")
	}
}

func TestArrayRoot(t *testing.T) {
	raw := []any{"lujs", 18}
	state := CreateReactiveState(raw)
	arr, ok := state.(*Array)
	if !ok {
		t.Fatalf("CreateReactiveState([]any) = %T, want *Array", state)
	}
	if again := CreateReactiveState(raw); again != arr {
		t.Error("CreateReactiveState should be idempotent for slices")
	}

	n := counter(arr.Root())
	arr.Set(0, "yahaha")
	if *n != 1 {
		t.Errorf("notifications = %d, want 1", *n)
	}
	if raw[0] != "yahaha" {
		t.Errorf("raw[0] = %v, want write-through to the original slice", raw[0])
	}
}

func TestChangeIffDifferent(t *testing.T) {
	r, _ := newTestState(t, map[string]any{"name": "a"})
	n := counter(r)

	r.Object().Set("name", "a")
	if *n != 0 {
		t.Fatalf("identical write notified %d times, want 0", *n)
	}

	r.Object().Set("name", "b")
	if *n != 1 {
		t.Fatalf("different write notified %d times, want 1", *n)
	}
	if got := r.Object().Get("name"); got != "b" {
		t.Errorf("name = %v, want b", got)
	}
}

func TestIdenticalWrites(t *testing.T) {
	nested := map[string]any{"x": 1}
	list := []any{1, 2}

	tests := []struct {
		name  string
		key   string
		value func(o *Object) any
		want  int
	}{
		{"same string", "s", func(*Object) any { return "v" }, 0},
		{"other string", "s", func(*Object) any { return "w" }, 1},
		{"same int", "i", func(*Object) any { return 7 }, 0},
		{"int vs float", "i", func(*Object) any { return 7.0 }, 1},
		{"int vs int64", "i", func(*Object) any { return int64(7) }, 1},
		{"same float", "f", func(*Object) any { return 7.5 }, 0},
		{"same raw map", "m", func(*Object) any { return nested }, 0},
		{"wrapper of same map", "m", func(o *Object) any { return o.Object("m") }, 0},
		{"equal but new map", "m", func(*Object) any { return map[string]any{"x": 1} }, 1},
		{"same raw slice", "l", func(*Object) any { return list }, 0},
		{"wrapper of same slice", "l", func(o *Object) any { return o.Array("l") }, 0},
		{"nil over nil", "n", func(*Object) any { return nil }, 0},
		{"new key", "fresh", func(*Object) any { return nil }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestState(t, map[string]any{
				"s": "v", "i": 7, "f": 7.5, "m": nested, "l": list, "n": nil,
			})
			o := r.Object()
			v := tt.value(o)
			n := counter(r)
			o.Set(tt.key, v)
			if *n != tt.want {
				t.Errorf("notifications = %d, want %d", *n, tt.want)
			}
		})
	}
}

func TestDeepPropagation(t *testing.T) {
	r, _ := newTestState(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"count": -1},
		},
	})
	n := counter(r)

	b := r.Object().Object("a").Object("b")
	for i := 0; i < 10; i++ {
		b.Set("count", i)
	}
	b.Set("count", b.Get("count").(int)+1)

	if got := b.Get("count"); got != 10 {
		t.Errorf("count = %v, want 10", got)
	}
	if *n != 11 {
		t.Errorf("notifications = %d, want 11", *n)
	}
}

func TestDeleteAlwaysNotifies(t *testing.T) {
	r, _ := newTestState(t, map[string]any{"a": 1})
	n := counter(r)

	r.Object().Delete("a")
	r.Object().Delete("missing")

	if *n != 2 {
		t.Errorf("notifications = %d, want 2", *n)
	}
	if r.Object().Has("a") {
		t.Error("key a should be gone")
	}
}

func TestWrapperIdentityStable(t *testing.T) {
	r, _ := newTestState(t, map[string]any{
		"obj":  map[string]any{"age": 18},
		"list": []any{map[string]any{"id": 1}},
	})
	o := r.Object()

	if o.Object("obj") != o.Object("obj") {
		t.Error("reading the same nested object twice should return one wrapper")
	}
	if o.Array("list") != o.Array("list") {
		t.Error("reading the same nested array twice should return one wrapper")
	}
	if o.Array("list").Object(0) != o.Array("list").Object(0) {
		t.Error("array elements should be memoized too")
	}
}

func TestSharedSubstructureSingleWrapper(t *testing.T) {
	shared := map[string]any{"v": 1}
	items := []any{1, 2, 3}
	r, _ := newTestState(t, map[string]any{
		"left": shared, "right": shared,
		"a": items, "b": items,
	})
	o := r.Object()

	if o.Object("left") != o.Object("right") {
		t.Error("a map reachable by two keys should have one wrapper")
	}
	if o.Array("a") != o.Array("b") {
		t.Error("a slice reachable by two keys should have one wrapper")
	}

	n := counter(r)
	o.Array("a").Push(4)
	if *n != 1 {
		t.Errorf("notifications = %d, want 1", *n)
	}
	if got := o.Array("b").Len(); got != 4 {
		t.Errorf("shared array length through other key = %d, want 4", got)
	}
}

func TestCycleSafety(t *testing.T) {
	parent := map[string]any{"name": "root"}
	child := map[string]any{"parent": parent}
	parent["child"] = child
	parent["self"] = parent

	r, _ := newTestState(t, parent)
	o := r.Object()

	if o.Object("self") != o {
		t.Error("self reference should resolve to the root wrapper")
	}
	if o.Object("child").Object("parent") != o {
		t.Error("back reference should resolve to the root wrapper")
	}

	n := counter(r)
	o.Object("child").Object("parent").Object("self").Set("name", "changed")
	if *n != 1 {
		t.Errorf("notifications = %d, want 1", *n)
	}

	snap := r.Snapshot().(map[string]any)
	if snap["name"] != "changed" {
		t.Errorf("snapshot name = %v, want changed", snap["name"])
	}
	if _, ok := snap["self"].(map[string]any); !ok {
		t.Fatalf("snapshot self = %T, want map", snap["self"])
	}
	if !Equal(snap, o) {
		t.Error("snapshot should equal the live cyclic tree")
	}
}

func TestSetWrapperStoresRaw(t *testing.T) {
	r, _ := newTestState(t, map[string]any{"a": map[string]any{"x": 1}})
	o := r.Object()

	o.Set("b", o.Object("a"))

	raw := o.Raw().(map[string]any)
	if _, ok := raw["b"].(*Object); ok {
		t.Fatal("raw graph should never hold wrappers")
	}
	if o.Object("b") != o.Object("a") {
		t.Error("both keys should resolve to the same wrapper")
	}
}

func TestForeignWrapperIsRewrapped(t *testing.T) {
	other, _ := newTestState(t, map[string]any{"inner": map[string]any{"v": 1}})
	r, _ := newTestState(t, map[string]any{})

	foreign := other.Object().Object("inner")
	r.Object().Set("copy", foreign)

	got := r.Object().Object("copy")
	if got == foreign {
		t.Fatal("a wrapper from another root must not be reused")
	}
	if got.Root() != r {
		t.Error("rewrapped node should belong to the new root")
	}

	n := counter(r)
	m := counter(other)
	got.Set("v", 2)
	if *n != 1 || *m != 0 {
		t.Errorf("notifications (this, other) = (%d, %d), want (1, 0)", *n, *m)
	}
}

func TestArrayOperations(t *testing.T) {
	tests := []struct {
		name    string
		initial []any
		op      func(a *Array)
		want    []any
		notify  int
	}{
		{"push", []any{1}, func(a *Array) { a.Push(2, 3) }, []any{1, 2, 3}, 1},
		{"push nothing", []any{1}, func(a *Array) { a.Push() }, []any{1}, 0},
		{"pop", []any{1, 2}, func(a *Array) { a.Pop() }, []any{1}, 1},
		{"pop empty", []any{}, func(a *Array) { a.Pop() }, []any{}, 0},
		{"set in range", []any{1, 2}, func(a *Array) { a.Set(1, 5) }, []any{1, 5}, 1},
		{"set identical", []any{1, 2}, func(a *Array) { a.Set(1, 2) }, []any{1, 2}, 0},
		{"set past end", []any{1}, func(a *Array) { a.Set(3, 4) }, []any{1, nil, nil, 4}, 1},
		{"delete leaves hole", []any{1, 2, 3}, func(a *Array) { a.Delete(1) }, []any{1, nil, 3}, 1},
		{"delete out of range", []any{1}, func(a *Array) { a.Delete(5) }, []any{1}, 1},
		{"remove", []any{1, 2, 3}, func(a *Array) { a.Remove(0) }, []any{2, 3}, 1},
		{"remove out of range", []any{1}, func(a *Array) { a.Remove(3) }, []any{1}, 0},
		{"truncate", []any{1, 2, 3}, func(a *Array) { a.Truncate(1) }, []any{1}, 1},
		{"truncate longer", []any{1, 2}, func(a *Array) { a.Truncate(5) }, []any{1, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestState(t, map[string]any{"list": tt.initial})
			a := r.Object().Array("list")
			n := counter(r)

			tt.op(a)

			if *n != tt.notify {
				t.Errorf("notifications = %d, want %d", *n, tt.notify)
			}
			if got := a.Snapshot(); !Equal(got, tt.want) {
				t.Errorf("array = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArrayPushKeepsIdentity(t *testing.T) {
	r, _ := newTestState(t, map[string]any{
		"a": map[string]any{"b": []any{1}},
	})
	before := r.Object().Object("a").Array("b")

	var length int
	r.Subscribe(func(root *Root) {
		length = root.Object().Object("a").Array("b").Len()
	})
	before.Push(1)

	if length != 2 {
		t.Errorf("length seen by subscriber = %d, want 2", length)
	}
	if after := r.Object().Object("a").Array("b"); after != before {
		t.Error("push should keep the array wrapper's identity")
	}
}

func TestPopReturnsWrappedValue(t *testing.T) {
	r, _ := newTestState(t, []any{map[string]any{"id": 1}})
	got := r.Array().Pop()
	o, ok := got.(*Object)
	if !ok {
		t.Fatalf("Pop() = %T, want *Object", got)
	}
	if o.Get("id") != 1 {
		t.Errorf("popped id = %v, want 1", o.Get("id"))
	}
}

func TestArrayNegativeIndexPanics(t *testing.T) {
	r, _ := newTestState(t, []any{1})
	defer func() {
		if recover() == nil {
			t.Error("Set(-1) should panic")
		}
	}()
	r.Array().Set(-1, 0)
}

func TestObjectRangeAndKeys(t *testing.T) {
	r, _ := newTestState(t, map[string]any{"b": 2, "a": map[string]any{}, "c": 3})

	keys := r.Object().Keys()
	want := []string{"a", "b", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}

	var visited []string
	r.Object().Range(func(k string, v any) bool {
		visited = append(visited, k)
		if k == "a" {
			if _, ok := v.(*Object); !ok {
				t.Errorf("Range value for a = %T, want *Object", v)
			}
		}
		return k != "b"
	})
	if len(visited) != 2 {
		t.Errorf("Range visited %v, want stop after b", visited)
	}
}
