package reactive

import "reflect"

// Detach returns a structural copy of v that shares nothing mutable with
// the live state tree. Wrappers are replaced by copies of their raw data,
// maps become fresh map[string]any and arrays fresh []any. Nil maps and
// slices come back empty, so nil and empty containers detach alike. Cycles
// and shared substructure are preserved in the copy. Other values are
// copied by value.
func Detach(v any) any {
	return detach(v, make(map[any]any))
}

func detach(v any, seen map[any]any) any {
	switch x := v.(type) {
	case *Object:
		return detach(x.raw, seen)
	case *Array:
		return detach(x.raw, seen)
	case map[string]any:
		if x == nil {
			return map[string]any{}
		}
		p := reflect.ValueOf(x).Pointer()
		if c, ok := seen[p]; ok {
			return c
		}
		c := make(map[string]any, len(x))
		seen[p] = c
		for k, e := range x {
			c[k] = detach(e, seen)
		}
		return c
	case *[]any:
		if x == nil {
			return []any{}
		}
		p := reflect.ValueOf(x).Pointer()
		if c, ok := seen[p]; ok {
			return c
		}
		return detachSlice(*x, p, seen)
	case []any:
		if k, ok := keyOfSlice(x); ok {
			if c, ok := seen[k]; ok {
				return c
			}
			return detachSlice(x, k, seen)
		}
		return []any{}
	}
	return v
}

func detachSlice(s []any, key any, seen map[any]any) []any {
	c := make([]any, len(s))
	seen[key] = c
	for i, e := range s {
		c[i] = detach(e, seen)
	}
	return c
}

// Equal reports whether a and b hold the same plain data. Wrappers compare
// by content, so a freshly built projection equals a cached one when their
// structure and scalars match.
func Equal(a, b any) bool {
	return reflect.DeepEqual(Detach(a), Detach(b))
}
