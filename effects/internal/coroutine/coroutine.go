package coroutine

import (
	"fmt"
	"sync"
	"sync/atomic"

	effectmodel "github.com/on-the-ground/tracify/effects/model"
)

// Body is a computation driven step by step. Calling yield suspends the
// body on an effect request; it returns once the driver resumes it.
type Body func(yield func(effectmodel.Call) any) (any, error)

// State is the pending state of a run: *Suspended, Completed or Failed.
type State interface {
	state()
}

// Completed is normal termination.
type Completed struct {
	Value any
}

func (Completed) state() {}

// Failed is termination by an error returned from, or a panic raised in, the body.
type Failed struct {
	Err error
}

func (Failed) state() {}

// Suspended is a run blocked on an effect request.
//
// Suspended enforces affine semantics: Resume may be called at most once,
// a second call panics. Discard abandons the run instead of resuming it.
type Suspended struct {
	Call effectmodel.Call

	used     atomic.Uintptr
	resumeCh chan any
	co       *coroutine
}

func (*Suspended) state() {}

// Resume hands v to the body as the result of its pending request and
// runs it to the next suspension or termination.
func (s *Suspended) Resume(v any) State {
	if s.used.Add(1) != 1 {
		panic("coroutine: suspension resumed twice")
	}
	s.resumeCh <- v
	return s.co.next()
}

// Discard abandons the run. The pending request panics inside the body so
// its deferred calls run; Discard returns once the body has unwound.
func (s *Suspended) Discard() {
	if s.used.Add(1) != 1 {
		return
	}
	s.co.abandon()
}

// PanicError carries a non-error value recovered from a panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// FromPanic converts a recovered value into an error. Panics raised
// with an error value keep that error.
func FromPanic(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}

// Start launches body and runs it up to its first suspension or termination.
func Start(body Body) State {
	co := &coroutine{
		suspendCh: make(chan suspendMessage),
		doneCh:    make(chan outcome, 1),
		abandonCh: make(chan struct{}),
	}
	go co.run(body)
	return co.next()
}

type suspendMessage struct {
	call     effectmodel.Call
	resumeCh chan any
}

type outcome struct {
	value any
	err   error
}

// abandoned unwinds a body whose run was discarded.
type abandoned struct{}

// IMPORTANT:
// A coroutine is driven by exactly one goroutine. The body runs on its own
// goroutine but only between a resume and the next suspension, so the two
// sides never execute at the same time. Calling yield from goroutines the
// body spawns is not supported.
type coroutine struct {
	suspendCh   chan suspendMessage
	doneCh      chan outcome
	abandonCh   chan struct{}
	abandonOnce sync.Once
}

func (co *coroutine) run(body Body) {
	var out outcome
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(abandoned); ok {
				out = outcome{}
			} else {
				out = outcome{err: FromPanic(r)}
			}
		}
		co.doneCh <- out
	}()

	value, err := body(co.yield)
	out = outcome{value: value, err: err}
}

func (co *coroutine) yield(call effectmodel.Call) any {
	msg := suspendMessage{
		call:     call,
		resumeCh: make(chan any),
	}
	select {
	case co.suspendCh <- msg:
	case <-co.abandonCh:
		panic(abandoned{})
	}

	select {
	case v := <-msg.resumeCh:
		return v
	case <-co.abandonCh:
		panic(abandoned{})
	}
}

func (co *coroutine) next() State {
	select {
	case msg := <-co.suspendCh:
		return &Suspended{
			Call:     msg.call,
			resumeCh: msg.resumeCh,
			co:       co,
		}
	case out := <-co.doneCh:
		if out.err != nil {
			return Failed{Err: out.err}
		}
		return Completed{Value: out.value}
	}
}

func (co *coroutine) abandon() {
	co.abandonOnce.Do(func() {
		close(co.abandonCh)
		<-co.doneCh
	})
}
