package effects_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/tracify/effects"
)

func TestHandle_ResolvesHandlerValue(t *testing.T) {
	v, err := effects.Handle(context.Background(), func(fx *effects.Capabilities) (any, error) {
		return fx.Call("random"), nil
	}, effects.Handlers{
		"random": func(context.Context, ...any) (any, error) { return 42, nil },
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestHandle_ReraisedHandlerFailure(t *testing.T) {
	boom := errors.New("boom")
	v, err := effects.Handle(context.Background(), func(fx *effects.Capabilities) (any, error) {
		return effects.Perform[int](fx, "random")
	}, effects.Handlers{
		"random": func(context.Context, ...any) (any, error) { return nil, boom },
	})

	assert.Nil(t, v)
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "boom")
}

func TestHandle_HandlerFailureIsResumptionValue(t *testing.T) {
	boom := errors.New("boom")
	v, err := effects.Handle(context.Background(), func(fx *effects.Capabilities) (any, error) {
		return fx.Call("random"), nil
	}, effects.Handlers{
		"random": func(context.Context, ...any) (any, error) { return nil, boom },
	})

	require.NoError(t, err)
	assert.Equal(t, boom, v)
}

func TestHandle_HandlerPanicIsResumptionValue(t *testing.T) {
	v, err := effects.Handle(context.Background(), func(fx *effects.Capabilities) (any, error) {
		return fx.Call("random"), nil
	}, effects.Handlers{
		"random": func(context.Context, ...any) (any, error) { panic("dice lost") },
	})

	require.NoError(t, err)
	var pe *effects.PanicError
	require.ErrorAs(t, v.(error), &pe)
	assert.Equal(t, "dice lost", pe.Value)
}

func TestHandle_ComputationPanicFails(t *testing.T) {
	_, err := effects.Handle(context.Background(), func(fx *effects.Capabilities) (any, error) {
		panic("broken")
	}, effects.Handlers{})

	var pe *effects.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "broken", pe.Value)
}

func TestHandle_MissingHandlerAbortsRun(t *testing.T) {
	var unwound atomic.Bool
	_, err := effects.Handle(context.Background(), func(fx *effects.Capabilities) (any, error) {
		defer unwound.Store(true)
		fx.Call("sql", effects.T("select 1"))
		fx.Call("fetch", "stripe/customers")
		return nil, nil
	}, effects.Handlers{
		"sql": func(context.Context, ...any) (any, error) { return []any{}, nil },
	})

	assert.ErrorIs(t, err, effects.ErrMissingHandler)
	assert.Contains(t, err.Error(), `"fetch"`)
	assert.True(t, unwound.Load(), "abandoned computation must unwind")
}

func TestHandle_TagHandlerReceivesTemplate(t *testing.T) {
	var got []any
	_, err := effects.Handle(context.Background(), func(fx *effects.Capabilities) (any, error) {
		return fx.Call("sql", effects.T("select * from users where id = ", " and name = ", ""), 1, "Alice"), nil
	}, effects.Handlers{
		"sql": func(_ context.Context, args ...any) (any, error) {
			got = args
			return nil, nil
		},
	})

	require.NoError(t, err)
	require.Len(t, got, 3)
	tmpl, ok := got[0].(effects.Template)
	require.True(t, ok)
	assert.Equal(t, "select * from users where id = 1 and name = Alice", tmpl.Interleave(got[1:]...))
}

func TestHandle_SequentialInRequestOrder(t *testing.T) {
	var (
		mu       sync.Mutex
		order    []string
		inFlight atomic.Int32
		overlap  atomic.Bool
	)
	delayed := func(name string, delay time.Duration) effects.HandlerFunc {
		return effects.Async(func(context.Context, ...any) (any, error) {
			if inFlight.Add(1) > 1 {
				overlap.Store(true)
			}
			defer inFlight.Add(-1)
			time.Sleep(delay)
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return name, nil
		})
	}

	v, err := effects.Handle(context.Background(), func(fx *effects.Capabilities) (any, error) {
		return []any{fx.Call("A"), fx.Call("B"), fx.Call("C")}, nil
	}, effects.Handlers{
		"A": delayed("A", 30*time.Millisecond),
		"B": delayed("B", 10*time.Millisecond),
		"C": delayed("C", 0),
	})

	require.NoError(t, err)
	assert.Equal(t, []any{"A", "B", "C"}, v)
	assert.Equal(t, []string{"A", "B", "C"}, order)
	assert.False(t, overlap.Load(), "handlers must never run concurrently")
}

func TestHandle_AsyncFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := effects.Handle(context.Background(), func(fx *effects.Capabilities) (any, error) {
		return effects.Perform[int](fx, "random")
	}, effects.Handlers{
		"random": effects.Async(func(context.Context, ...any) (any, error) { return nil, boom }),
	})

	assert.ErrorIs(t, err, boom)
}

func TestHandle_CancelledWhileAwaiting(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	var unwound atomic.Bool
	_, err := effects.Handle(ctx, func(fx *effects.Capabilities) (any, error) {
		defer unwound.Store(true)
		return fx.Call("slow"), nil
	}, effects.Handlers{
		"slow": effects.Async(func(context.Context, ...any) (any, error) {
			<-release
			return "late", nil
		}),
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, unwound.Load())
}

func TestHandle_ObserversSeeEveryCall(t *testing.T) {
	boom := errors.New("boom")
	var entered []string
	var left []any

	_, err := effects.Handle(context.Background(), func(fx *effects.Capabilities) (any, error) {
		fx.Call("first", 1)
		fx.Call("second")
		return nil, nil
	}, effects.Handlers{
		"first":  func(context.Context, ...any) (any, error) { return "one", nil },
		"second": func(context.Context, ...any) (any, error) { return nil, boom },
	},
		effects.WithEnter(func(name string, args []any) { entered = append(entered, name) }),
		effects.WithLeave(func(name string, result any) { left = append(left, result) }),
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, entered)
	assert.Equal(t, []any{"one", boom}, left)
}

func TestHandle_LogsEachEffect(t *testing.T) {
	logger, logs := newTestLogger()

	_, err := effects.Handle(context.Background(), func(fx *effects.Capabilities) (any, error) {
		fx.Call("first")
		fx.Call("second")
		return nil, nil
	}, effects.Handlers{
		"first":  func(context.Context, ...any) (any, error) { return nil, nil },
		"second": func(context.Context, ...any) (any, error) { return nil, nil },
	}, effects.WithLogger(logger))
	require.NoError(t, err)

	handled := logs.FilterMessage("effect handled").All()
	require.Len(t, handled, 2)
	assert.Equal(t, "first", handled[0].ContextMap()["effect"])
	assert.Equal(t, "second", handled[1].ContextMap()["effect"])
	assert.Equal(t, handled[0].ContextMap()["run_id"], handled[1].ContextMap()["run_id"])
	assert.Equal(t, 1, logs.FilterMessage("computation completed").Len())
}

func TestCheckHandlers(t *testing.T) {
	program := usersProgram()

	err := effects.CheckHandlers(program, effects.Handlers{
		"sql": func(context.Context, ...any) (any, error) { return nil, nil },
	})
	assert.ErrorIs(t, err, effects.ErrMissingHandler)
	assert.Contains(t, err.Error(), `"fetch"`)

	err = effects.CheckHandlers(program, effects.Handlers{
		"sql":   func(context.Context, ...any) (any, error) { return nil, nil },
		"fetch": func(context.Context, ...any) (any, error) { return nil, nil },
	})
	assert.NoError(t, err)
}
