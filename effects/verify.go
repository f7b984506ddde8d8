package effects

import (
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/on-the-ground/tracify/effects/internal/coroutine"
	"github.com/on-the-ground/tracify/pure"
)

// Verify checks that comp reproduces every trace of program, in order,
// and returns the first *Fault. Each trace drives a fresh run whose
// effect requests are answered from the trace itself; no handler is called.
func Verify(program Program, comp Computation, opts ...Option) error {
	if err := program.Validate(); err != nil {
		return err
	}
	o := newOptions(opts)
	for i, t := range program.Traces {
		if err := verifyTrace(i, t, comp, o); err != nil {
			return err
		}
	}
	return nil
}

// VerifyEach checks every trace even after a fault and returns all faults
// combined; multierr.Errors splits them again.
func VerifyEach(program Program, comp Computation, opts ...Option) error {
	if err := program.Validate(); err != nil {
		return err
	}
	o := newOptions(opts)
	var errs error
	for i, t := range program.Traces {
		errs = multierr.Append(errs, verifyTrace(i, t, comp, o))
	}
	return errs
}

// VerifyTrace checks a single trace.
func VerifyTrace(trace Trace, comp Computation, opts ...Option) error {
	if err := trace.Validate(); err != nil {
		return err
	}
	return verifyTrace(0, trace, comp, newOptions(opts))
}

type traceRun struct {
	index  int
	trace  Trace
	logger *zap.Logger
}

func (r traceRun) fault(step int, reason error, expected, observed any) *Fault {
	f := &Fault{
		Reason:      reason,
		TraceIndex:  r.index,
		TraceName:   r.trace.Name,
		Fingerprint: r.trace.Fingerprint(),
		StepIndex:   step,
		Expected:    expected,
		Observed:    observed,
	}
	r.logger.Debug("trace diverged", zap.Int("step", step), zap.Error(f))
	return f
}

func verifyTrace(index int, trace Trace, comp Computation, o options) error {
	r := traceRun{
		index: index,
		trace: trace,
		logger: o.logger.With(
			zap.String("run_id", uuid.New().String()),
			zap.Int("trace", index),
			zap.String("fingerprint", trace.Fingerprint()),
		),
	}
	r.logger.Debug("verifying trace", zap.String("name", trace.Name), zap.Int("steps", len(trace.Steps)))

	state := start(comp)
	defer func() {
		if s, ok := state.(*coroutine.Suspended); ok {
			s.Discard()
		}
	}()

	for i, step := range trace.Steps {
		switch step := step.(type) {
		case Yield:
			s, ok := state.(*coroutine.Suspended)
			if !ok {
				return r.fault(i, ErrUnexpectedTermination, step.Effect, outcomeOf(state))
			}
			if err := r.matchCall(i, step.Effect, s.Call); err != nil {
				return err
			}
			state = s.Resume(step.Effect.Result)

		case Throw:
			switch s := state.(type) {
			case coroutine.Completed:
				return r.fault(i, ErrExpectedFailureButCompleted, step.Err, s.Value)
			case *coroutine.Suspended:
				return r.fault(i, ErrExpectedFailureButSuspended, step.Err, s.Call)
			case coroutine.Failed:
				if !pure.DeepEqual(step.Err, s.Err) {
					return r.fault(i, ErrErrorMismatch, step.Err, s.Err)
				}
			}

		case Return:
			switch s := state.(type) {
			case coroutine.Failed:
				return r.fault(i, ErrExpectedReturnButFailed, step.Value, s.Err)
			case *coroutine.Suspended:
				return r.fault(i, ErrExpectedReturnButSuspended, step.Value, s.Call)
			case coroutine.Completed:
				if !pure.DeepEqual(step.Value, s.Value) {
					return r.fault(i, ErrReturnMismatch, step.Value, s.Value)
				}
			}
		}
	}

	r.logger.Debug("trace reproduced")
	return nil
}

func (r traceRun) matchCall(step int, expected Descriptor, call Call) error {
	if call.Name != expected.Name {
		return r.fault(step, ErrEffectNameMismatch, expected.Name, call.Name)
	}
	if call.Kind != expected.Kind {
		return r.fault(step, ErrEffectKindMismatch, expected.Kind, call.Kind)
	}
	if expected.Template != nil && !pure.DeepEqual(expected.Template, call.Template) {
		return r.fault(step, ErrTemplateMismatch, expected.Template, call.Template)
	}
	if !pure.DeepEqual(expected.Args, call.Args) {
		return r.fault(step, ErrArgumentMismatch, expected.Args, call.Args)
	}
	return nil
}

// outcomeOf is what a terminated run produced: its value or its error.
func outcomeOf(state coroutine.State) any {
	switch s := state.(type) {
	case coroutine.Completed:
		return s.Value
	case coroutine.Failed:
		return s.Err
	}
	return nil
}
