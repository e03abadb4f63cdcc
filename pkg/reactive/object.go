package reactive

import "sort"

// Object observes a raw map[string]any.
//
// Reads wrap nested objects and arrays on first access. Writes that replace
// a value with an identical one are accepted silently; any other write or
// delete notifies the root's subscribers.
type Object struct {
	root *Root
	raw  map[string]any
}

func (o *Object) node() {}

// Root returns the root this object belongs to.
func (o *Object) Root() *Root {
	return o.root
}

// Raw returns the underlying map. Writing to it directly bypasses
// observation.
func (o *Object) Raw() any {
	return o.raw
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.raw)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.raw[key]
	return ok
}

// Keys returns the keys in sorted order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.raw))
	for k := range o.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value stored under key, or nil when absent. Objects and
// arrays are returned as *Object and *Array.
func (o *Object) Get(key string) any {
	v, _ := o.Lookup(key)
	return v
}

// Lookup is like Get but also reports whether the key was present.
func (o *Object) Lookup(key string) (any, bool) {
	v, ok := o.raw[key]
	if !ok {
		return nil, false
	}
	return o.root.wrapStored(v, func(b any) { o.raw[key] = b }), true
}

// Object returns the nested object under key, or nil if the value is
// absent or not an object.
func (o *Object) Object(key string) *Object {
	n, _ := o.Get(key).(*Object)
	return n
}

// Array returns the nested array under key, or nil if the value is absent
// or not an array.
func (o *Object) Array(key string) *Array {
	n, _ := o.Get(key).(*Array)
	return n
}

// Set stores v under key. Setting a value identical to the current one is
// accepted without notification. Scalars compare by type and value, so 18.0
// over 18 is a change: int(18) and float64(18) are different values.
// document.Normalize maps decoded integers to int and float32 to float64,
// which keeps numbers from a document in one type per kind.
func (o *Object) Set(key string, v any) {
	v = unwrap(v)
	if old, ok := o.raw[key]; ok && identical(unwrap(old), v) {
		return
	}
	o.raw[key] = v
	o.root.changed()
}

// Delete removes key and always notifies, present or not.
func (o *Object) Delete(key string) {
	delete(o.raw, key)
	o.root.changed()
}

// Range calls fn for each key in sorted order with the wrapped value.
// Iteration stops when fn returns false.
func (o *Object) Range(fn func(key string, v any) bool) {
	for _, k := range o.Keys() {
		v, ok := o.Lookup(k)
		if !ok {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

// Snapshot returns a detached deep copy of the object.
func (o *Object) Snapshot() any {
	return Detach(o.raw)
}
