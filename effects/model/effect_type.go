package effectmodel

import (
	"fmt"
	"strings"
)

// Kind distinguishes the two invocation shapes an effect can take.
type Kind string

const (
	// KindFn is a plain call with positional arguments.
	KindFn Kind = "fn"

	// KindTag is a templated call: literal fragments interleaved with values.
	KindTag Kind = "tag"
)

func (k Kind) Valid() bool {
	return k == KindFn || k == KindTag
}

// ParseKind converts the textual form of a kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown effect kind %q", s)
	}
	return k, nil
}

// Template holds the literal fragments of a tag invocation.
// A tag call passes a Template as its first argument, followed by the
// substituted values, so len(fragments) is normally len(values)+1.
type Template []string

// Interleave rebuilds the invocation text, rendering each value with %v.
func (t Template) Interleave(values ...any) string {
	var b strings.Builder
	for i, frag := range t {
		b.WriteString(frag)
		if i < len(values) {
			fmt.Fprintf(&b, "%v", values[i])
		}
	}
	for i := len(t); i < len(values); i++ {
		fmt.Fprintf(&b, "%v", values[i])
	}
	return b.String()
}

// Descriptor describes one expected effect invocation and the value
// it resolves to. It is a plain value; two descriptors are the same
// when their fields are structurally equal.
type Descriptor struct {
	Kind Kind
	Name string

	// Args are the positional arguments of a fn effect, or the
	// substituted values of a tag effect.
	Args []any

	Result any

	// Template pins the literal fragments of a tag effect. Nil means
	// the fragments are not checked.
	Template Template
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s %q %v -> %v", d.Kind, d.Name, d.Args, d.Result)
}

// Call is an effect request captured at a suspension point.
type Call struct {
	Name     string
	Kind     Kind
	Args     []any
	Template Template
}

// Classify infers the call shape from raw capability arguments.
// A first argument of type Template marks a tag call; every other
// shape, including no arguments at all, is a fn call.
func Classify(name string, args []any) Call {
	if len(args) > 0 {
		if tmpl, ok := args[0].(Template); ok {
			return Call{
				Name:     name,
				Kind:     KindTag,
				Args:     append([]any{}, args[1:]...),
				Template: tmpl,
			}
		}
	}
	return Call{
		Name: name,
		Kind: KindFn,
		Args: append([]any{}, args...),
	}
}

// Arguments returns the arguments in the shape a handler receives them:
// the template first for tag calls, positional otherwise.
func (c Call) Arguments() []any {
	if c.Kind == KindTag {
		return append([]any{c.Template}, c.Args...)
	}
	return append([]any{}, c.Args...)
}

func (c Call) String() string {
	if c.Kind == KindTag {
		return fmt.Sprintf("tag %q %q %v", c.Name, []string(c.Template), c.Args)
	}
	return fmt.Sprintf("fn %q %v", c.Name, c.Args)
}
