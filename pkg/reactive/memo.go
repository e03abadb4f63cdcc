package reactive

import (
	"reflect"
	"runtime"
	"sync"
	"weak"
)

// weakTable maps identity keys to weakly held values. The table never keeps
// a value alive: once the value is collected its entry reads as absent and a
// runtime cleanup removes it.
type weakTable[K comparable, T any] struct {
	mu      sync.Mutex
	entries map[K]weak.Pointer[T]
}

func newWeakTable[K comparable, T any]() *weakTable[K, T] {
	return &weakTable[K, T]{entries: make(map[K]weak.Pointer[T])}
}

// load returns the live value stored under key, or nil.
func (t *weakTable[K, T]) load(key K) *T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadLocked(key)
}

func (t *weakTable[K, T]) loadLocked(key K) *T {
	if wp, ok := t.entries[key]; ok {
		return wp.Value()
	}
	return nil
}

// loadOrStore returns the live value under key. When the key is absent or
// its value has been collected, create is called and its result stored.
// The boolean reports whether an existing value was found.
func (t *weakTable[K, T]) loadOrStore(key K, create func() *T) (*T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if v := t.loadLocked(key); v != nil {
		return v, true
	}
	v := create()
	t.entries[key] = weak.Make(v)
	runtime.AddCleanup(v, t.purge, key)
	return v, false
}

// purge drops the entry for key if its value is gone. A newer live value
// stored under the same key is left alone.
func (t *weakTable[K, T]) purge(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if wp, ok := t.entries[key]; ok && wp.Value() == nil {
		delete(t.entries, key)
	}
}

// live returns the number of entries whose value is still reachable.
func (t *weakTable[K, T]) live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, wp := range t.entries {
		if wp.Value() != nil {
			n++
		}
	}
	return n
}

// identityOf returns the reference identity of a raw composite value.
// Only objects (map[string]any) and boxed arrays (*[]any) have one.
func identityOf(v any) (uintptr, bool) {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return 0, false
		}
		return reflect.ValueOf(x).Pointer(), true
	case *[]any:
		if x == nil {
			return 0, false
		}
		return reflect.ValueOf(x).Pointer(), true
	}
	return 0, false
}

// sliceKey identifies a raw slice header. Two containers holding the same
// header share one array box.
type sliceKey struct {
	data     uintptr
	len, cap int
}

// boxes holds the process-wide array boxes so that a raw slice reached
// through several containers, or passed to NewRoot twice, keeps one identity.
var boxes = newWeakTable[sliceKey, []any]()

func keyOfSlice(s []any) (sliceKey, bool) {
	if cap(s) == 0 {
		// Zero-capacity slices share no storage worth tracking.
		return sliceKey{}, false
	}
	return sliceKey{data: reflect.ValueOf(s).Pointer(), len: len(s), cap: cap(s)}, true
}

// box returns the array box for s, creating it on first use.
func box(s []any) *[]any {
	k, ok := keyOfSlice(s)
	if !ok {
		b := s
		return &b
	}
	b, _ := boxes.loadOrStore(k, func() *[]any {
		b := s
		return &b
	})
	return b
}

// lookupBox returns the existing box for s without creating one.
func lookupBox(s []any) *[]any {
	k, ok := keyOfSlice(s)
	if !ok {
		return nil
	}
	return boxes.load(k)
}

// memo is the identity memo of one root: raw composite identity to the
// wrapper created for it. Wrappers are held weakly.
type memo struct {
	objects *weakTable[uintptr, Object]
	arrays  *weakTable[uintptr, Array]
}

func newMemo() *memo {
	return &memo{
		objects: newWeakTable[uintptr, Object](),
		arrays:  newWeakTable[uintptr, Array](),
	}
}

func (m *memo) object(r *Root, raw map[string]any) *Object {
	key, _ := identityOf(raw)
	o, _ := m.objects.loadOrStore(key, func() *Object {
		return &Object{root: r, raw: raw}
	})
	return o
}

func (m *memo) array(r *Root, raw *[]any) *Array {
	key, _ := identityOf(raw)
	a, _ := m.arrays.loadOrStore(key, func() *Array {
		return &Array{root: r, raw: raw}
	})
	return a
}

// holds reports whether n is one of the wrappers this memo created.
// Membership is by wrapper identity, never by looking at the value.
func (m *memo) holds(n Node) bool {
	switch x := n.(type) {
	case *Object:
		key, ok := identityOf(x.raw)
		return ok && m.objects.load(key) == x
	case *Array:
		key, ok := identityOf(x.raw)
		return ok && m.arrays.load(key) == x
	}
	return false
}

// size returns the number of live wrappers, for tests and diagnostics.
func (m *memo) size() int {
	return m.objects.live() + m.arrays.live()
}

// roots is the process-wide registry that makes state creation idempotent:
// raw identity to the Root built for it.
var roots = newWeakTable[uintptr, Root]()
