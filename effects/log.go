package effects

import "go.uber.org/zap"

// Observer is notified around every handler call made by Handle.
// It has no influence on control flow.
type Observer interface {
	Enter(name string, args []any)
	Leave(name string, result any)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnEnter func(name string, args []any)
	OnLeave func(name string, result any)
}

func (o ObserverFuncs) Enter(name string, args []any) {
	if o.OnEnter != nil {
		o.OnEnter(name, args)
	}
}

func (o ObserverFuncs) Leave(name string, result any) {
	if o.OnLeave != nil {
		o.OnLeave(name, result)
	}
}

// Option configures Handle and the Verify family.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	observers []Observer
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for debug output of both engines.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver adds an observer to Handle. Verification ignores observers.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, obs)
	}
}

// WithEnter is shorthand for an observer with only an enter callback.
func WithEnter(fn func(name string, args []any)) Option {
	return WithObserver(ObserverFuncs{OnEnter: fn})
}

// WithLeave is shorthand for an observer with only a leave callback.
func WithLeave(fn func(name string, result any)) Option {
	return WithObserver(ObserverFuncs{OnLeave: fn})
}

func (o options) enter(name string, args []any) {
	for _, obs := range o.observers {
		obs.Enter(name, args)
	}
}

func (o options) leave(name string, result any) {
	for _, obs := range o.observers {
		obs.Leave(name, result)
	}
}
