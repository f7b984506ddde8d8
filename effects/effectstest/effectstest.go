// Package effectstest wires effects verification into go test.
package effectstest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/on-the-ground/tracify/effects"
	"github.com/on-the-ground/tracify/effects/fixture"
	effectmodel "github.com/on-the-ground/tracify/effects/model"
)

// RequireVerified fails the test unless comp reproduces every trace of
// program. Each fault is reported separately.
func RequireVerified(t testing.TB, program effects.Program, comp effects.Computation, opts ...effects.Option) {
	t.Helper()
	err := effects.VerifyEach(program, comp, opts...)
	for _, fault := range multierr.Errors(err) {
		t.Errorf("%v", fault)
	}
	if err != nil {
		t.FailNow()
	}
}

// RequireVerifiedFixture loads a YAML program and verifies comp against it.
func RequireVerifiedFixture(t testing.TB, path string, comp effects.Computation, opts ...effects.Option) {
	t.Helper()
	program, err := fixture.Load(path)
	require.NoError(t, err)
	RequireVerified(t, program, comp, opts...)
}

// RequireHandled runs comp against handlers and returns its completion value,
// failing the test if the run fails.
func RequireHandled(t testing.TB, comp effects.Computation, handlers effects.Handlers, opts ...effects.Option) any {
	t.Helper()
	v, err := effects.Handle(context.Background(), comp, handlers, opts...)
	require.NoError(t, err)
	return v
}

// Stub builds a handler that always answers with v.
func Stub(v any) effects.HandlerFunc {
	return func(context.Context, ...any) (any, error) {
		return v, nil
	}
}

// Failing builds a handler that always fails with err.
func Failing(err error) effects.HandlerFunc {
	return func(context.Context, ...any) (any, error) {
		return nil, err
	}
}

// Recorder collects every call a handler table receives, in order.
type Recorder struct {
	Calls []effects.Call
}

// Wrap returns handlers that record each call before delegating.
func (r *Recorder) Wrap(handlers effects.Handlers) effects.Handlers {
	wrapped := make(effects.Handlers, len(handlers))
	for name, h := range handlers {
		wrapped[name] = func(ctx context.Context, args ...any) (any, error) {
			r.Calls = append(r.Calls, effectmodel.Classify(name, args))
			return h(ctx, args...)
		}
	}
	return wrapped
}

// Names lists the recorded effect names in call order.
func (r *Recorder) Names() []string {
	names := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		names[i] = c.Name
	}
	return names
}
