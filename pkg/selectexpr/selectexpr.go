// Package selectexpr compiles selector expressions for bindings.
//
// An expression is evaluated against a detached snapshot of the root. For
// an object root every top-level key is a variable; for any root the whole
// snapshot is also available as $:
//
//	obj.age
//	len(todos) > 0 ? todos[0].title : ""
//	filter(todos, .done)
//	get($, "todos[2].title")
//
// Unknown variables evaluate to nil rather than failing to compile.
package selectexpr

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/vango-dev/rstate/internal/errors"
	"github.com/vango-dev/rstate/pkg/reactive"
)

// RootVar is the variable bound to the whole snapshot.
const RootVar = "$"

// Selector is a compiled selector expression.
type Selector struct {
	src     string
	program *vm.Program
}

// Compile compiles src. Extra expr options are appended after the
// defaults.
func Compile(src string, opts ...expr.Option) (*Selector, error) {
	options := append([]expr.Option{
		expr.AllowUndefinedVariables(),
		expr.Function("get", getFunc),
	}, opts...)

	program, err := expr.Compile(src, options...)
	if err != nil {
		return nil, errors.New("E130").
			WithDetail(fmt.Sprintf("Cannot compile selector %q.", src)).
			WithExample("obj.age\nget($, \"todos[0].title\")").
			Wrap(err)
	}
	return &Selector{src: src, program: program}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Selector {
	s, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the source expression.
func (s *Selector) String() string {
	return s.src
}

// Eval evaluates the selector against the current state of r.
func (s *Selector) Eval(r *reactive.Root) (any, error) {
	return s.EvalData(r.Snapshot())
}

// EvalData evaluates the selector against plain data.
func (s *Selector) EvalData(data any) (any, error) {
	out, err := expr.Run(s.program, Env(data))
	if err != nil {
		return nil, errors.New("E131").
			WithDetail(fmt.Sprintf("Selector %q failed.", s.src)).
			Wrap(err)
	}
	return out, nil
}

// Func adapts the selector to reactive.Selector. Evaluation errors panic
// with the returned error, reaching whoever triggered the change.
func (s *Selector) Func() reactive.Selector {
	return func(r *reactive.Root) any {
		v, err := s.Eval(r)
		if err != nil {
			panic(err)
		}
		return v
	}
}

// Option returns a bind option selecting with s.
func (s *Selector) Option() reactive.BindOption {
	return reactive.WithSelector(s.Func())
}

// Env builds the evaluation environment for a snapshot.
func Env(data any) map[string]any {
	env := map[string]any{}
	if m, ok := data.(map[string]any); ok {
		for k, v := range m {
			env[k] = v
		}
	}
	env[RootVar] = data
	return env
}
