// Package render turns arbitrary values into stable, human-readable text
// for diagnostics and fingerprints.
package render

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/gowebpki/jcs"
)

// Canonical renders v as RFC 8785 canonical JSON.
// Errors are rendered as {"error": message}; values JSON cannot carry
// (funcs, channels) are rendered by type name. If v still cannot be
// encoded, the Go-syntax representation is returned instead.
func Canonical(v any) string {
	raw, err := json.Marshal(normalize(reflect.ValueOf(v)))
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// List renders each value canonically, preserving order.
func List(vs []any) string {
	return Canonical(vs)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func normalize(v reflect.Value) any {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}

	if v.CanInterface() && v.Type().Implements(errorType) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return nil
		}
		return map[string]any{"error": v.Interface().(error).Error()}
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return normalize(v.Elem())
	case reflect.Slice:
		if v.IsNil() {
			return []any{}
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = normalize(v.Index(i))
		}
		return out
	case reflect.Map:
		out := make(map[string]any, v.Len())
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
		})
		for _, k := range keys {
			out[fmt.Sprint(k)] = normalize(v.MapIndex(k))
		}
		return out
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("<%s>", v.Type())
	default:
		if v.CanInterface() {
			return v.Interface()
		}
		return fmt.Sprint(v)
	}
}
