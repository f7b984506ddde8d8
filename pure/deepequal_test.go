package pure_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/on-the-ground/tracify/pure"
)

type point struct {
	X, Y int
	tag  string
}

type otherPoint struct {
	X, Y int
	tag  string
}

type codeError struct{ code int }

func (e codeError) Error() string { return fmt.Sprintf("code %d", e.code) }

func TestDeepEqual(t *testing.T) {
	shared := errors.New("shared")
	fn := func() {}
	ch := make(chan int)
	x := 1

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil", nil, nil, true},
		{"nil and zero", nil, 0, false},
		{"typed nil slice and nil", []any(nil), nil, false},
		{"ints", 1, 1, true},
		{"int kinds", int64(1), uint8(1), true},
		{"int and float", 1, 1.0, true},
		{"float32 and float64", float32(2.5), 2.5, true},
		{"different numbers", 1, 2, false},
		{"negative and unsigned", -1, uint64(math.MaxUint64), false},
		{"NaN", math.NaN(), math.NaN(), true},
		{"number and string", 1, "1", false},
		{"bool", true, true, true},
		{"bool and number", true, 1, false},
		{"strings", "a", "a", true},
		{"different strings", "a", "b", false},
		{"slices", []any{1, "a"}, []int{1}, false},
		{"slice kinds", []any{1, 2}, []int{1, 2}, true},
		{"slice order", []any{1, 2}, []any{2, 1}, false},
		{"slice and array", []int{1, 2}, [2]int{1, 2}, true},
		{"empty and nil slice", []any{}, []any(nil), true},
		{"maps", map[string]any{"a": 1, "b": []any{2}}, map[string]any{"b": []any{2}, "a": 1}, true},
		{"map value", map[string]any{"a": 1}, map[string]any{"a": 2}, false},
		{"map keys", map[string]any{"a": 1}, map[string]any{"b": 1}, false},
		{"map size", map[string]any{"a": 1}, map[string]any{"a": 1, "b": 2}, false},
		{"map key kinds", map[string]int{"a": 1}, map[string]any{"a": 1}, true},
		{"map numeric keys", map[int]string{1: "a"}, map[int64]string{1: "a"}, true},
		{"map and slice", map[int]any{0: 1}, []any{1}, false},
		{"structs", point{1, 2, "p"}, point{1, 2, "p"}, true},
		{"struct unexported field", point{1, 2, "p"}, point{1, 2, "q"}, false},
		{"struct types", point{1, 2, ""}, otherPoint{1, 2, ""}, false},
		{"pointers", &point{X: 1}, &point{X: 1}, true},
		{"pointer and value", &x, 1, false},
		{"nil pointers", (*point)(nil), (*point)(nil), true},
		{"errors by message", errors.New("boom"), errors.New("boom"), true},
		{"errors by message differ", errors.New("boom"), errors.New("bang"), false},
		{"errors by type", errors.New("code 1"), codeError{1}, false},
		{"same error", shared, shared, true},
		{"value errors", codeError{1}, codeError{1}, true},
		{"error and string", errors.New("boom"), "boom", false},
		{"same func", fn, fn, true},
		{"different funcs", fn, func() {}, false},
		{"same chan", ch, ch, true},
		{"different chans", ch, make(chan int), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pure.DeepEqual(tt.a, tt.b))
			assert.Equal(t, tt.want, pure.DeepEqual(tt.b, tt.a), "symmetry")
		})
	}
}
