package effects

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/on-the-ground/tracify/effects/internal/coroutine"
)

// HandlerFunc implements one effect. Tag effects receive their Template
// as the first argument, followed by the substituted values.
//
// A handler answers synchronously by returning its result, or
// asynchronously by returning a <-chan Result (see Async).
type HandlerFunc func(ctx context.Context, args ...any) (any, error)

// Handlers maps effect names to their implementations.
type Handlers map[string]HandlerFunc

// Result is the outcome of an asynchronous handler.
type Result struct {
	Value any
	Err   error
}

func ResultFrom(v any, err error) Result {
	return Result{Value: v, Err: err}
}

var errResultChannelClosed = errors.New("async result channel closed without a result")

// Async runs fn on its own goroutine. The wrapped handler returns at once
// with a channel that Handle waits on before resuming the computation.
func Async(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, args ...any) (any, error) {
		done := make(chan Result, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- Result{Err: coroutine.FromPanic(r)}
				}
				close(done)
			}()
			done <- ResultFrom(fn(ctx, args...))
		}()
		return (<-chan Result)(done), nil
	}
}

// Handle drives comp to completion against handlers.
//
// Handlers run one at a time, in the order the computation requests them.
// A handler failure is not raised at the request site: the error becomes
// the value the computation resumes with, and the computation decides
// whether to fail (Perform does so). Handle returns the completion value,
// or the computation's own error unchanged.
//
// A request with no handler aborts the run with ErrMissingHandler. If ctx
// is cancelled while an asynchronous result is awaited, the run is
// abandoned and ctx.Err() returned.
func Handle(ctx context.Context, comp Computation, handlers Handlers, opts ...Option) (any, error) {
	o := newOptions(opts)
	logger := o.logger.With(zap.String("run_id", uuid.New().String()))

	state := start(comp)
	for {
		switch s := state.(type) {
		case coroutine.Completed:
			logger.Debug("computation completed")
			return s.Value, nil

		case coroutine.Failed:
			logger.Debug("computation failed", zap.Error(s.Err))
			return nil, s.Err

		case *coroutine.Suspended:
			name := s.Call.Name
			args := s.Call.Arguments()
			o.enter(name, args)

			handler, err := getHandler(handlers, name)
			if err != nil {
				logger.Debug("missing handler", zap.String("effect", name))
				s.Discard()
				return nil, err
			}

			started := time.Now()
			value, failure, err := await(ctx, handler, args)
			if err != nil {
				logger.Debug("run abandoned", zap.String("effect", name), zap.Error(err))
				s.Discard()
				return nil, err
			}

			resumeWith := value
			if failure != nil {
				resumeWith = failure
			}
			o.leave(name, resumeWith)
			logger.Debug("effect handled",
				zap.String("effect", name),
				zap.String("kind", string(s.Call.Kind)),
				zap.Duration("took", since(started).Duration()),
				zap.NamedError("failure", failure),
			)

			state = s.Resume(resumeWith)
		}
	}
}

// await invokes h and waits for its final value. failure is the handler's
// own error or recovered panic; err is set only when ctx ends the wait.
func await(ctx context.Context, h HandlerFunc, args []any) (value any, failure error, err error) {
	value, failure = invoke(ctx, h, args)
	if failure != nil {
		return nil, failure, nil
	}

	var ch <-chan Result
	switch v := value.(type) {
	case <-chan Result:
		ch = v
	case chan Result:
		ch = v
	default:
		return value, nil, nil
	}

	select {
	case res, ok := <-ch:
		if !ok {
			return nil, errResultChannelClosed, nil
		}
		if res.Err != nil {
			return nil, res.Err, nil
		}
		return res.Value, nil, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

func invoke(ctx context.Context, h HandlerFunc, args []any) (value any, failure error) {
	defer func() {
		if r := recover(); r != nil {
			value, failure = nil, coroutine.FromPanic(r)
		}
	}()
	return h(ctx, args...)
}
