package effects

import (
	effectmodel "github.com/on-the-ground/tracify/effects/model"
)

type (
	Kind       = effectmodel.Kind
	Template   = effectmodel.Template
	Descriptor = effectmodel.Descriptor
	Call       = effectmodel.Call
)

const (
	KindFn  = effectmodel.KindFn
	KindTag = effectmodel.KindTag
)

// T builds the literal fragments of a tag invocation.
//
//	fx.Call("sql", effects.T("select * from users where id = ", ""), 1)
func T(fragments ...string) Template {
	return Template(fragments)
}

// EffectBuilder starts the declaration of an effect descriptor.
type EffectBuilder struct {
	kind Kind
	name string
}

// Fn declares an effect invoked with plain positional arguments.
//
//	effects.Fn("fetch").Takes("stripe/customers", query).Returns(customers)
func Fn(name string) EffectBuilder {
	return EffectBuilder{kind: KindFn, name: name}
}

// Tag declares an effect invoked with a template. Takes lists the
// substituted values only; Matching additionally pins the fragments.
//
//	effects.Tag("sql").Takes(1, "Alice").Returns(rows)
func Tag(name string) EffectBuilder {
	return EffectBuilder{kind: KindTag, name: name}
}

// Takes records the expected arguments.
func (b EffectBuilder) Takes(args ...any) ArgsBuilder {
	return ArgsBuilder{
		kind: b.kind,
		name: b.name,
		args: append([]any{}, args...),
	}
}

// Returns completes a descriptor for an effect taking no arguments.
func (b EffectBuilder) Returns(result any) Descriptor {
	return b.Takes().Returns(result)
}

// ArgsBuilder is an effect declaration with its arguments recorded.
type ArgsBuilder struct {
	kind     Kind
	name     string
	args     []any
	template Template
}

// Matching pins the literal fragments of a tag effect.
// It panics when used on a fn effect.
func (b ArgsBuilder) Matching(fragments ...string) ArgsBuilder {
	if b.kind != KindTag {
		panic("effects: Matching is only valid for tag effects")
	}
	b.template = append(Template{}, fragments...)
	return b
}

// Returns completes the descriptor with the value the effect resolves to.
func (b ArgsBuilder) Returns(result any) Descriptor {
	return Descriptor{
		Kind:     b.kind,
		Name:     b.name,
		Args:     b.args,
		Result:   result,
		Template: b.template,
	}
}
