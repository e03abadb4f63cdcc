package selectexpr

import (
	"fmt"
	"strconv"

	"github.com/vango-dev/rstate/pkg/reactive"
)

// getFunc implements get(value, path) over plain data. Missing keys and
// indexes yield nil; a malformed path is an error.
func getFunc(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("get: want 2 arguments, got %d", len(params))
	}
	path, ok := params[1].(string)
	if !ok {
		return nil, fmt.Errorf("get: path must be a string, got %T", params[1])
	}
	p, err := reactive.ParsePath(path)
	if err != nil {
		return nil, err
	}

	cur := params[0]
	for _, seg := range p {
		switch x := cur.(type) {
		case map[string]any:
			cur = x[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(x) {
				return nil, nil
			}
			cur = x[i]
		default:
			return nil, nil
		}
	}
	return cur, nil
}
