// Package effects lets you describe an effectful computation by the effects it
// requests, run it against real handlers, and check it against a
// hand-written program of expected interactions.
//
// # What is traced?
//
// A computation never touches infrastructure directly. It asks for named
// effects through its Capabilities:
//   - fn effects take positional arguments: fx.Call("fetch", url, opts)
//   - tag effects take a template: fx.Call("sql", effects.T("... id = ", ""), id)
//
// Every request suspends the computation until a value is supplied.
//
// # Two ways to run a computation
//
// Handle drives it against a table of handlers, one request at a time, in
// the order the computation asks. Handler failures are fed back into the
// computation as values; Perform turns them into errors at the call site.
//
// Verify drives it against a Program: a set of Traces, each scripting one
// run step by step. Yields steps check the requested effect (name, kind,
// arguments) and answer it with the declared result; Throws and Returns
// steps check how the run ends. The first divergence is reported as a *Fault.
//
// # Design Philosophy
//
// Programs and computations are written independently and only meet at
// verification time. Shapes are checked at run time, never inferred.
//
// Example:
//
//	program := effects.NewProgram(
//	    effects.MustTrace(
//	        effects.Yields(effects.Fn("random").Returns(42)),
//	        effects.Returns(42),
//	    ),
//	)
//
//	io := effects.Implement(program, func(fx *effects.Capabilities) (any, error) {
//	    return effects.Perform[int](fx, "random")
//	})
//
//	err := io.Verify()
//	v, err := io.Handle(ctx, effects.Handlers{
//	    "random": func(context.Context, ...any) (any, error) { return rand.Int(), nil },
//	})
package effects
