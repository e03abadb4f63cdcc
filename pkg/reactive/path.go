package reactive

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a value inside a state tree. Each segment is an object key
// or, when applied to an array, a decimal index.
type Path []string

// ParsePath parses dotted paths with optional bracket indexes:
//
//	todos[2].title
//	obj.age
//	matrix[0][1]
//
// The empty string is the root itself. Keys cannot contain '.', '[' or ']'.
func ParsePath(s string) (Path, error) {
	p := Path{}
	// prev is the last token kind: 0 at start, 'k' key, 'i' index, '.' dot.
	var prev byte
	for i := 0; i < len(s); {
		switch s[i] {
		case '.':
			if prev != 'k' && prev != 'i' {
				return nil, fmt.Errorf("%w: unexpected '.' in %q", ErrInvalidPath, s)
			}
			prev = '.'
			i++
		case '[':
			if prev == '.' {
				return nil, fmt.Errorf("%w: unexpected '[' in %q", ErrInvalidPath, s)
			}
			j := strings.IndexByte(s[i:], ']')
			if j < 0 {
				return nil, fmt.Errorf("%w: unterminated index in %q", ErrInvalidPath, s)
			}
			idx := s[i+1 : i+j]
			if _, err := strconv.Atoi(idx); err != nil {
				return nil, fmt.Errorf("%w: index %q in %q", ErrInvalidPath, idx, s)
			}
			p = append(p, idx)
			prev = 'i'
			i += j + 1
		case ']':
			return nil, fmt.Errorf("%w: unexpected ']' in %q", ErrInvalidPath, s)
		default:
			if prev != 0 && prev != '.' {
				return nil, fmt.Errorf("%w: missing '.' in %q", ErrInvalidPath, s)
			}
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' && s[j] != ']' {
				j++
			}
			p = append(p, s[i:j])
			prev = 'k'
			i = j
		}
	}
	if prev == '.' {
		return nil, fmt.Errorf("%w: trailing '.' in %q", ErrInvalidPath, s)
	}
	return p, nil
}

// String renders the path in the form ParsePath reads: keys joined by
// dots, numeric segments as bracket indexes.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteByte('[')
			b.WriteString(seg)
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// Get returns the wrapped value at path below n.
func Get(n Node, path string) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	var cur any = n
	for i, seg := range p {
		v, err := child(cur, seg)
		if err != nil {
			return nil, fmt.Errorf("%w at %s", err, Path(p[:i+1]))
		}
		cur = v
	}
	return cur, nil
}

// Set stores v at path below n. The parent must exist; the last segment
// may name a new key or the index one past the end of an array.
func Set(n Node, path string, v any) error {
	parent, last, err := resolveParent(n, path)
	if err != nil {
		return err
	}
	switch x := parent.(type) {
	case *Object:
		x.Set(last, v)
	case *Array:
		i, err := index(last)
		if err != nil {
			return err
		}
		x.Set(i, v)
	}
	return nil
}

// Delete removes the value at path below n. Deleting from an array leaves
// a nil hole, matching Array.Delete.
func Delete(n Node, path string) error {
	parent, last, err := resolveParent(n, path)
	if err != nil {
		return err
	}
	switch x := parent.(type) {
	case *Object:
		x.Delete(last)
	case *Array:
		i, err := index(last)
		if err != nil {
			return err
		}
		x.Delete(i)
	}
	return nil
}

// Push appends vs to the array at path below n.
func Push(n Node, path string, vs ...any) error {
	v, err := Get(n, path)
	if err != nil {
		return err
	}
	a, ok := v.(*Array)
	if !ok {
		return fmt.Errorf("%w: %s is %T", ErrNotContainer, path, v)
	}
	a.Push(vs...)
	return nil
}

func resolveParent(n Node, path string) (Node, string, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, "", err
	}
	if len(p) == 0 {
		return nil, "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	var cur any = n
	for i, seg := range p[:len(p)-1] {
		v, err := child(cur, seg)
		if err != nil {
			return nil, "", fmt.Errorf("%w at %s", err, Path(p[:i+1]))
		}
		cur = v
	}
	parent, ok := cur.(Node)
	if !ok {
		return nil, "", fmt.Errorf("%w at %s", ErrNotContainer, Path(p[:len(p)-1]))
	}
	return parent, p[len(p)-1], nil
}

func child(cur any, seg string) (any, error) {
	switch x := cur.(type) {
	case *Object:
		v, ok := x.Lookup(seg)
		if !ok {
			return nil, ErrPathNotFound
		}
		return v, nil
	case *Array:
		i, err := index(seg)
		if err != nil {
			return nil, err
		}
		v, ok := x.Lookup(i)
		if !ok {
			return nil, ErrPathNotFound
		}
		return v, nil
	}
	return nil, ErrNotContainer
}

func index(seg string) (int, error) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrIndexOutOfRange, seg)
	}
	return i, nil
}
