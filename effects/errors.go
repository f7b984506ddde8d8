package effects

import (
	"errors"
	"fmt"

	"github.com/on-the-ground/tracify/effects/internal/coroutine"
	"github.com/on-the-ground/tracify/shared/render"
)

var (
	ErrMissingHandler   = errors.New("no handler registered for effect")
	ErrInvalidTrace     = errors.New("invalid trace")
	ErrConflictingKinds = errors.New("effect declared with conflicting kinds")
)

// Verification faults. Each is the Reason of a *Fault.
var (
	ErrUnexpectedTermination       = errors.New("unexpected termination")
	ErrEffectNameMismatch          = errors.New("effect name mismatch")
	ErrEffectKindMismatch          = errors.New("effect kind mismatch")
	ErrTemplateMismatch            = errors.New("template mismatch")
	ErrArgumentMismatch            = errors.New("argument mismatch")
	ErrExpectedFailureButCompleted = errors.New("expected failure but completed")
	ErrExpectedFailureButSuspended = errors.New("expected failure but suspended")
	ErrErrorMismatch               = errors.New("error mismatch")
	ErrExpectedReturnButFailed     = errors.New("expected return but failed")
	ErrExpectedReturnButSuspended  = errors.New("expected return but suspended")
	ErrReturnMismatch              = errors.New("return mismatch")
)

// PanicError carries a non-error value recovered from a panic in a
// computation or a handler.
type PanicError = coroutine.PanicError

// Fault reports the first step at which a computation diverged from a trace.
type Fault struct {
	Reason error

	TraceIndex  int
	TraceName   string
	Fingerprint string
	StepIndex   int

	Expected any
	Observed any
}

func (f *Fault) Error() string {
	return fmt.Sprintf(
		"%s step %d: %v: expected %s, got %s",
		f.traceLabel(), f.StepIndex, f.Reason,
		render.Canonical(f.Expected), render.Canonical(f.Observed),
	)
}

func (f *Fault) Unwrap() error {
	return f.Reason
}

func (f *Fault) traceLabel() string {
	if f.TraceName == "" {
		return fmt.Sprintf("trace %d", f.TraceIndex)
	}
	return fmt.Sprintf("trace %d (%q)", f.TraceIndex, f.TraceName)
}
