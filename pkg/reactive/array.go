package reactive

// Array observes a boxed raw slice (*[]any). Appends grow the boxed slice
// in place so the array keeps its identity.
type Array struct {
	root *Root
	raw  *[]any
}

func (a *Array) node() {}

// Root returns the root this array belongs to.
func (a *Array) Root() *Root {
	return a.root
}

// Raw returns the underlying *[]any.
func (a *Array) Raw() any {
	return a.raw
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(*a.raw)
}

// At returns element i, or nil when i is out of range. Objects and arrays
// are returned as *Object and *Array.
func (a *Array) At(i int) any {
	v, _ := a.Lookup(i)
	return v
}

// Lookup is like At but also reports whether i was in range.
func (a *Array) Lookup(i int) (any, bool) {
	s := *a.raw
	if i < 0 || i >= len(s) {
		return nil, false
	}
	return a.root.wrapStored(s[i], func(b any) { (*a.raw)[i] = b }), true
}

// Object returns element i as an object, or nil.
func (a *Array) Object(i int) *Object {
	n, _ := a.At(i).(*Object)
	return n
}

// Array returns element i as an array, or nil.
func (a *Array) Array(i int) *Array {
	n, _ := a.At(i).(*Array)
	return n
}

// Values returns all elements, wrapped.
func (a *Array) Values() []any {
	out := make([]any, a.Len())
	for i := range out {
		out[i] = a.At(i)
	}
	return out
}

// Set stores v at index i. Writing past the end grows the array, filling
// the gap with nil. Setting an identical value is accepted silently; as
// with Object.Set, a number of another type is not identical.
// Set panics if i is negative.
func (a *Array) Set(i int, v any) {
	if i < 0 {
		panic("rstate: negative array index")
	}
	v = unwrap(v)
	s := *a.raw
	if i < len(s) {
		if identical(unwrap(s[i]), v) {
			return
		}
		s[i] = v
		a.root.changed()
		return
	}
	for len(s) < i {
		s = append(s, nil)
	}
	*a.raw = append(s, v)
	a.root.changed()
}

// Delete clears element i, leaving a nil hole, and always notifies.
// The length is unchanged.
func (a *Array) Delete(i int) {
	s := *a.raw
	if i >= 0 && i < len(s) {
		s[i] = nil
	}
	a.root.changed()
}

// Remove splices element i out of the array and returns it. Out-of-range
// indexes change nothing and do not notify.
func (a *Array) Remove(i int) any {
	v, ok := a.Lookup(i)
	if !ok {
		return nil
	}
	s := *a.raw
	copy(s[i:], s[i+1:])
	s[len(s)-1] = nil
	*a.raw = s[:len(s)-1]
	a.root.changed()
	return v
}

// Push appends values and notifies once. Pushing nothing is a no-op.
func (a *Array) Push(vs ...any) {
	if len(vs) == 0 {
		return
	}
	s := *a.raw
	for _, v := range vs {
		s = append(s, unwrap(v))
	}
	*a.raw = s
	a.root.changed()
}

// Pop removes and returns the last element. Popping an empty array returns
// nil without notifying.
func (a *Array) Pop() any {
	s := *a.raw
	if len(s) == 0 {
		return nil
	}
	v := a.At(len(s) - 1)
	s = *a.raw
	s[len(s)-1] = nil
	*a.raw = s[:len(s)-1]
	a.root.changed()
	return v
}

// Truncate shortens the array to n elements. It does nothing when the
// array is already that short.
func (a *Array) Truncate(n int) {
	if n < 0 {
		panic("rstate: negative array length")
	}
	s := *a.raw
	if n >= len(s) {
		return
	}
	clear(s[n:])
	*a.raw = s[:n]
	a.root.changed()
}

// Snapshot returns a detached deep copy of the array.
func (a *Array) Snapshot() any {
	return Detach(a.raw)
}
