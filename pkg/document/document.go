package document

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/vango-dev/rstate/internal/errors"
	"github.com/vango-dev/rstate/pkg/reactive"
)

// Format selects an output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf guesses the format from a file name. Anything that is not
// .json is treated as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a YAML or JSON document into plain data.
func Parse(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, errors.New("E101").
			WithDetail(yaml.FormatError(err, false, true)).
			Wrap(err)
	}
	return Normalize(v), nil
}

// Load reads and decodes the document at path.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E100").
			WithDetail("Cannot read " + path).
			Wrap(err)
	}
	v, err := Parse(data)
	if err != nil {
		var re *errors.RStateError
		if errors.As(err, &re) {
			re.Detail = path + ":\n" + re.Detail
		}
		return nil, err
	}
	return v, nil
}

// LoadRoot loads the document at path and wraps it in a new root. The top
// level must be a mapping or a sequence.
func LoadRoot(path string, opts ...reactive.Option) (*reactive.Root, error) {
	v, err := Load(path)
	if err != nil {
		return nil, err
	}
	r, ok := reactive.NewRoot(v, opts...)
	if !ok {
		return nil, errors.New("E102").
			WithDetail(fmt.Sprintf("%s decodes to %T.", path, v)).
			WithExample("name: lujs\nobj:\n  age: 18")
	}
	return r, nil
}

// Normalize converts decoded data into the shapes the reactive package
// observes. It always returns fresh containers.
func Normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = Normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case int64:
		if x >= math.MinInt && x <= math.MaxInt {
			return int(x)
		}
	case uint64:
		if x <= math.MaxInt {
			return int(x)
		}
	case int32:
		return int(x)
	case uint32:
		return int(x)
	case uint:
		if x <= math.MaxInt {
			return int(x)
		}
	case float32:
		return float64(x)
	}
	return v
}

// Encode renders v, which may hold wrappers, in the given format. Map keys
// are sorted in both formats.
func Encode(v any, format Format) ([]byte, error) {
	data := reactive.Detach(v)
	if format == FormatJSON {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	}
	return yaml.Marshal(data)
}
