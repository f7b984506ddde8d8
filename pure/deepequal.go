package pure

import (
	"math"
	"reflect"
)

type category int

const (
	catOpaque category = iota
	catBool
	catNumber
	catComplex
	catString
	catSequence
	catKeyed
	catStruct
	catPointer
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// DeepEqual reports whether a and b are structurally equal.
//
//   - identical references and equal primitives are equal
//   - values of different categories are never equal
//   - sequences (slices, arrays) match by length and pairwise, in order
//   - keyed containers (maps) match by key set and per key, order ignored
//   - structs match when they share a type and every field matches
//   - errors match when they share a dynamic type and message
//   - all integer and float kinds form one numeric category
//
// Cyclic values make DeepEqual recurse forever.
func DeepEqual(a, b any) bool {
	return deepEqual(reflect.ValueOf(a), reflect.ValueOf(b))
}

func deepEqual(a, b reflect.Value) bool {
	a, b = unwrap(a), unwrap(b)
	if !a.IsValid() || !b.IsValid() {
		return !a.IsValid() && !b.IsValid()
	}

	ea, aIsErr := asError(a)
	eb, bIsErr := asError(b)
	if aIsErr || bIsErr {
		if !(aIsErr && bIsErr) {
			return false
		}
		return errorsEqual(a, b, ea, eb)
	}

	ca, cb := categoryOf(a), categoryOf(b)
	if ca != cb {
		return false
	}

	switch ca {
	case catBool:
		return a.Bool() == b.Bool()
	case catNumber:
		return numbersEqual(a, b)
	case catComplex:
		return a.Complex() == b.Complex()
	case catString:
		return a.String() == b.String()
	case catSequence:
		return sequencesEqual(a, b)
	case catKeyed:
		return mapsEqual(a, b)
	case catStruct:
		return structsEqual(a, b)
	case catPointer:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		if a.Type() == b.Type() && a.Pointer() == b.Pointer() {
			return true
		}
		return deepEqual(a.Elem(), b.Elem())
	default:
		return a.Kind() == b.Kind() && a.Pointer() == b.Pointer()
	}
}

// unwrap strips interface layers so the dynamic value is inspected.
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func categoryOf(v reflect.Value) category {
	switch v.Kind() {
	case reflect.Bool:
		return catBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return catNumber
	case reflect.Complex64, reflect.Complex128:
		return catComplex
	case reflect.String:
		return catString
	case reflect.Slice, reflect.Array:
		return catSequence
	case reflect.Map:
		return catKeyed
	case reflect.Struct:
		return catStruct
	case reflect.Pointer:
		return catPointer
	default:
		return catOpaque
	}
}

func asError(v reflect.Value) (error, bool) {
	if !v.CanInterface() || !v.Type().Implements(errorType) {
		return nil, false
	}
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, false
	}
	err, ok := v.Interface().(error)
	return err, ok
}

func errorsEqual(a, b reflect.Value, ea, eb error) bool {
	if a.Type() != b.Type() {
		return false
	}
	if a.Kind() == reflect.Pointer && a.Pointer() == b.Pointer() {
		return true
	}
	return ea.Error() == eb.Error()
}

func numbersEqual(a, b reflect.Value) bool {
	switch {
	case isInt(a) && isInt(b):
		return a.Int() == b.Int()
	case isUint(a) && isUint(b):
		return a.Uint() == b.Uint()
	case isInt(a) && isUint(b):
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	case isUint(a) && isInt(b):
		return b.Int() >= 0 && a.Uint() == uint64(b.Int())
	}
	fa, fb := toFloat(a), toFloat(b)
	if math.IsNaN(fa) && math.IsNaN(fb) {
		return true
	}
	return fa == fb
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v):
		return float64(v.Int())
	case isUint(v):
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func sequencesEqual(a, b reflect.Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !deepEqual(a.Index(i), b.Index(i)) {
			return false
		}
	}
	return true
}

func mapsEqual(a, b reflect.Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	if a.Type().Key() == b.Type().Key() {
		iter := a.MapRange()
		for iter.Next() {
			bv := b.MapIndex(iter.Key())
			if !bv.IsValid() || !deepEqual(iter.Value(), bv) {
				return false
			}
		}
		return true
	}

	// key types differ: pair keys structurally
	bKeys := b.MapKeys()
	used := make([]bool, len(bKeys))
	iter := a.MapRange()
	for iter.Next() {
		found := false
		for i, bk := range bKeys {
			if used[i] || !deepEqual(iter.Key(), bk) {
				continue
			}
			if !deepEqual(iter.Value(), b.MapIndex(bk)) {
				return false
			}
			used[i] = true
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

func structsEqual(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	for i := 0; i < a.NumField(); i++ {
		if !deepEqual(a.Field(i), b.Field(i)) {
			return false
		}
	}
	return true
}
