package effects

import (
	"context"

	"github.com/on-the-ground/tracify/effects/internal/coroutine"
	effectmodel "github.com/on-the-ground/tracify/effects/model"
)

// Computation is an effectful procedure. It requests effects through fx
// and terminates by returning a value, or by returning an error or
// panicking.
type Computation func(fx *Capabilities) (any, error)

// Capability performs one named effect and blocks until a value is supplied.
// A Template as first argument makes the call a tag invocation.
type Capability func(args ...any) any

// Capabilities is the effect surface a running computation sees: one
// Capability per effect name, created on first use.
//
// Capabilities belongs to a single run and must only be used from the
// goroutine executing the computation.
type Capabilities struct {
	yield func(effectmodel.Call) any
	table map[string]Capability
}

// Get returns the capability for name.
func (c *Capabilities) Get(name string) Capability {
	if fn, ok := c.table[name]; ok {
		return fn
	}
	fn := func(args ...any) any {
		return c.yield(effectmodel.Classify(name, args))
	}
	c.table[name] = fn
	return fn
}

// Call performs the named effect with args and returns the value it resumes with.
func (c *Capabilities) Call(name string, args ...any) any {
	return c.Get(name)(args...)
}

func start(comp Computation) coroutine.State {
	return coroutine.Start(func(yield func(effectmodel.Call) any) (any, error) {
		return comp(&Capabilities{
			yield: yield,
			table: make(map[string]Capability),
		})
	})
}

// Implementation binds a computation to the program that describes it.
type Implementation struct {
	Program     Program
	Computation Computation
}

// Implement pairs a program with the computation it specifies.
//
//	io := effects.Implement(program, func(fx *effects.Capabilities) (any, error) { ... })
//	err := io.Verify()
func Implement(program Program, comp Computation) Implementation {
	return Implementation{Program: program, Computation: comp}
}

// Verify checks the computation against every trace of the program.
func (i Implementation) Verify(opts ...Option) error {
	return Verify(i.Program, i.Computation, opts...)
}

// VerifyEach checks every trace and reports all faults together.
func (i Implementation) VerifyEach(opts ...Option) error {
	return VerifyEach(i.Program, i.Computation, opts...)
}

// Handle runs the computation against real handlers.
func (i Implementation) Handle(ctx context.Context, handlers Handlers, opts ...Option) (any, error) {
	return Handle(ctx, i.Computation, handlers, opts...)
}

// CheckHandlers reports the program's effects that handlers do not cover.
func (i Implementation) CheckHandlers(handlers Handlers) error {
	return CheckHandlers(i.Program, handlers)
}
