package document

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/vango-dev/rstate/internal/errors"
	"github.com/vango-dev/rstate/pkg/reactive"
)

// Op is a script step operation.
type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
	OpPush   Op = "push"
	OpTick   Op = "tick"
)

// Step is one mutation.
type Step struct {
	Op     Op     `yaml:"op" json:"op"`
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
	Value  any    `yaml:"value,omitempty" json:"value,omitempty"`
	Values []any  `yaml:"values,omitempty" json:"values,omitempty"`
}

// String renders the step for logs.
func (s Step) String() string {
	switch s.Op {
	case OpTick:
		return "tick"
	case OpDelete:
		return fmt.Sprintf("delete %s", s.Path)
	case OpPush:
		return fmt.Sprintf("push %s %v", s.Path, s.Values)
	default:
		return fmt.Sprintf("%s %s = %v", s.Op, s.Path, s.Value)
	}
}

// Script is an ordered list of steps.
type Script struct {
	Steps []Step `yaml:"steps" json:"steps"`
}

// ParseScript decodes a YAML or JSON script and validates it.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.New("E140").
			WithDetail(yaml.FormatError(err, false, true)).
			Wrap(err)
	}
	for i := range s.Steps {
		s.Steps[i].Value = Normalize(s.Steps[i].Value)
		for j, v := range s.Steps[i].Values {
			s.Steps[i].Values[j] = Normalize(v)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScript reads and decodes the script at path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E100").
			WithDetail("Cannot read " + path).
			Wrap(err)
	}
	return ParseScript(data)
}

// Validate checks every step's op and path.
func (s *Script) Validate() error {
	for i, st := range s.Steps {
		switch st.Op {
		case OpSet, OpDelete, OpPush:
			if st.Path == "" {
				return errors.New("E140").
					WithDetail(fmt.Sprintf("Step %d (%s) has no path.", i, st.Op))
			}
			if _, err := reactive.ParsePath(st.Path); err != nil {
				return errors.New("E140").
					WithDetail(fmt.Sprintf("Step %d has an invalid path %q.", i, st.Path)).
					Wrap(err)
			}
		case OpTick:
		default:
			return errors.New("E140").
				WithDetail(fmt.Sprintf("Step %d has unknown op %q.", i, st.Op)).
				WithExample("- op: set\n  path: obj.age\n  value: 19")
		}
	}
	return nil
}

// Apply runs every step against root. onStep, when non-nil, is called
// after each step with its index. Values are copied before they are
// stored so a script can be applied more than once.
func (s *Script) Apply(root *reactive.Root, onStep func(i int, st Step)) error {
	for i, st := range s.Steps {
		if err := s.ApplyStep(root, i); err != nil {
			return err
		}
		if onStep != nil {
			onStep(i, st)
		}
	}
	return nil
}

// ApplyStep runs step i against root.
func (s *Script) ApplyStep(root *reactive.Root, i int) error {
	st := s.Steps[i]
	if err := st.apply(root); err != nil {
		return errors.New("E141").
			WithDetail(fmt.Sprintf("Step %d (%s) failed.", i, st)).
			Wrap(err)
	}
	return nil
}

func (st Step) apply(root *reactive.Root) error {
	n := root.Node()
	switch st.Op {
	case OpSet:
		return reactive.Set(n, st.Path, Normalize(st.Value))
	case OpDelete:
		return reactive.Delete(n, st.Path)
	case OpPush:
		values := make([]any, len(st.Values))
		for i, v := range st.Values {
			values[i] = Normalize(v)
		}
		return reactive.Push(n, st.Path, values...)
	case OpTick:
		root.Flush()
		return nil
	}
	return fmt.Errorf("unknown op %q", st.Op)
}
