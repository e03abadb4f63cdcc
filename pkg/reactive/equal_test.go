package reactive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetachCopiesDeeply(t *testing.T) {
	raw := map[string]any{
		"obj":  map[string]any{"age": 18},
		"list": []any{1, map[string]any{"x": 2}},
	}
	r, _ := newTestState(t, raw)

	snap := Detach(r.Object()).(map[string]any)
	snap["obj"].(map[string]any)["age"] = 99
	snap["list"].([]any)[0] = 100

	if got := r.Object().Object("obj").Get("age"); got != 18 {
		t.Errorf("live age = %v, want 18 after mutating the copy", got)
	}
	if got := r.Object().Array("list").At(0); got != 1 {
		t.Errorf("live list[0] = %v, want 1 after mutating the copy", got)
	}
}

func TestDetachUnboxesArrays(t *testing.T) {
	r, _ := newTestState(t, map[string]any{"list": []any{1, 2}})
	_ = r.Object().Array("list")

	want := map[string]any{"list": []any{1, 2}}
	if diff := cmp.Diff(want, r.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
}

func TestDetachPreservesSharing(t *testing.T) {
	shared := map[string]any{"v": 1}
	snap := Detach(map[string]any{"a": shared, "b": shared}).(map[string]any)

	a := snap["a"].(map[string]any)
	a["v"] = 2
	if snap["b"].(map[string]any)["v"] != 2 {
		t.Error("shared substructure should stay shared in the copy")
	}
	if shared["v"] != 1 {
		t.Error("copy should not alias the original")
	}
}

func TestDetachSubslicesDoNotCollide(t *testing.T) {
	base := []any{1, 2, 3}
	snap := Detach(map[string]any{"all": base, "head": base[:1]}).(map[string]any)

	if got := len(snap["all"].([]any)); got != 3 {
		t.Errorf("len(all) = %d, want 3", got)
	}
	if got := len(snap["head"].([]any)); got != 1 {
		t.Errorf("len(head) = %d, want 1", got)
	}
}

func TestEqual(t *testing.T) {
	r, _ := newTestState(t, map[string]any{"obj": map[string]any{"age": 18}})

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"scalars", 1, 1, true},
		{"different scalars", 1, 2, false},
		{"int vs float", 1, 1.0, false},
		{"nil", nil, nil, true},
		{"wrapper vs plain", r.Object().Object("obj"), map[string]any{"age": 18}, true},
		{"wrapper vs different", r.Object().Object("obj"), map[string]any{"age": 19}, false},
		{"slices", []any{1, "a"}, []any{1, "a"}, true},
		{"slice order", []any{1, 2}, []any{2, 1}, false},
		{"nested", map[string]any{"a": []any{map[string]any{}}}, map[string]any{"a": []any{map[string]any{}}}, true},
		{"nil vs empty slice", []any(nil), []any{}, true},
		{"nil vs empty map", map[string]any(nil), map[string]any{}, true},
		{"nil slice vs nil", []any(nil), nil, false},
		{"nested nil vs empty", map[string]any{"a": []any(nil)}, map[string]any{"a": make([]any, 0, 4)}, true},
		{"nil slice vs empty map", []any(nil), map[string]any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
