package effects

import (
	"fmt"
	"sort"
	"strings"

	"github.com/on-the-ground/tracify/shared/helper"
)

// Perform calls the named effect and converts the value it resumes with.
//
// A resumption value that is an error, such as a handler failure fed back
// by Handle, is returned as the error. Otherwise the value is asserted to
// T; nil yields the zero value of T.
func Perform[T any](fx *Capabilities, name string, args ...any) (T, error) {
	return helper.GetTypedValueOf[T](func() (any, error) {
		v := fx.Call(name, args...)
		if err, ok := v.(error); ok {
			return nil, err
		}
		return v, nil
	})
}

// MustPerform is the panic-on-failure variant of Perform. The panic
// surfaces as the computation's failure.
func MustPerform[T any](fx *Capabilities, name string, args ...any) T {
	v, err := Perform[T](fx, name, args...)
	if err != nil {
		panic(err)
	}
	return v
}

// getHandler looks up the handler registered for name.
func getHandler(handlers Handlers, name string) (HandlerFunc, error) {
	h, ok := handlers[name]
	if !ok || h == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingHandler, name)
	}
	return h, nil
}

// CheckHandlers reports every effect declared by program that has no
// entry in handlers. It only looks at names; argument shapes are checked
// when the program is verified.
func CheckHandlers(program Program, handlers Handlers) error {
	var missing []string
	for _, name := range program.EffectNames() {
		if _, err := getHandler(handlers, name); err != nil {
			missing = append(missing, fmt.Sprintf("%q", name))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrMissingHandler, strings.Join(missing, ", "))
}
