package reactive

import "reflect"

// Node is an observing wrapper over one raw object or array. Nodes are
// created by the root's identity memo: for a given raw value a root hands out
// at most one live Node.
//
// Nodes are not safe for concurrent mutation. A state tree has one owner;
// use a Scheduler loop to funnel work from other goroutines.
type Node interface {
	// Root returns the root this node belongs to. The root carries the
	// change notifier.
	Root() *Root

	// Raw returns the underlying map[string]any or *[]any.
	Raw() any

	// Len returns the number of keys or elements.
	Len() int

	// Snapshot returns a detached deep copy of the node's data.
	Snapshot() any

	node()
}

// wrap returns the observing wrapper for v. Scalars come back unchanged,
// as do wrappers this root already handed out. A wrapper from another root
// is rewrapped by its raw value.
func (r *Root) wrap(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return v
		}
		return r.memo.object(r, x)
	case *[]any:
		if x == nil {
			return v
		}
		return r.memo.array(r, x)
	case *Object:
		if r.memo.holds(x) {
			return x
		}
		return r.wrap(x.raw)
	case *Array:
		if r.memo.holds(x) {
			return x
		}
		return r.wrap(x.raw)
	}
	return v
}

// wrapStored wraps a value read out of a container. Raw slices are boxed
// first and the box is written back through store. That write is internal
// bookkeeping and never notifies.
func (r *Root) wrapStored(v any, store func(any)) any {
	if s, ok := v.([]any); ok {
		b := box(s)
		store(b)
		return r.wrap(b)
	}
	return r.wrap(v)
}

// unwrap converts a value about to be stored into its raw form. Wrappers
// are replaced by their raw value and raw slices by their existing box so
// the graph never holds wrappers.
func unwrap(v any) any {
	switch x := v.(type) {
	case *Object:
		return x.raw
	case *Array:
		return x.raw
	case []any:
		if b := lookupBox(x); b != nil {
			return b
		}
		return box(x)
	}
	return v
}

// identical reports whether a write of b over a changes nothing. It is
// reference identity for containers and == for comparable scalars; it is
// never deep equality. Values of different types are never identical, so
// int(1) and float64(1) differ.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len() && va.Cap() == vb.Cap()
	case reflect.Func:
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return false
}
