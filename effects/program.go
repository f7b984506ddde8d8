package effects

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/on-the-ground/tracify/shared/render"
)

// Step is one expected interaction in a trace: Yield, Throw or Return.
type Step interface {
	fmt.Stringer
	step()
}

// Yield expects the computation to request Effect and resumes it with Effect.Result.
type Yield struct {
	Effect Descriptor
}

// Throw expects the computation to fail with Err.
type Throw struct {
	Err error
}

// Return expects the computation to complete with Value.
type Return struct {
	Value any
}

func (Yield) step()  {}
func (Throw) step()  {}
func (Return) step() {}

func Yields(effect Descriptor) Step { return Yield{Effect: effect} }
func Throws(err error) Step         { return Throw{Err: err} }
func Returns(value any) Step        { return Return{Value: value} }

func (y Yield) String() string {
	d := y.Effect
	s := fmt.Sprintf("yields %s %s %s -> %s", d.Kind, d.Name, render.List(d.Args), render.Canonical(d.Result))
	if d.Template != nil {
		s += " matching " + render.Canonical([]string(d.Template))
	}
	return s
}

func (t Throw) String() string {
	if t.Err == nil {
		return "throws <nil>"
	}
	return "throws " + strconv.Quote(t.Err.Error())
}

func (r Return) String() string {
	return "returns " + render.Canonical(r.Value)
}

func isTerminal(s Step) bool {
	switch s.(type) {
	case Throw, Return:
		return true
	}
	return false
}

// Trace is one scripted run of a computation: the effects it requests in
// order, optionally closed by the outcome it terminates with.
type Trace struct {
	Name  string
	Steps []Step
}

// NewTrace builds a trace and checks its shape: at least one step and at
// most one terminal step, placed last.
func NewTrace(steps ...Step) (Trace, error) {
	t := Trace{Steps: append([]Step{}, steps...)}
	if err := t.Validate(); err != nil {
		return Trace{}, err
	}
	return t, nil
}

// MustTrace is the panic-on-failure variant of NewTrace.
func MustTrace(steps ...Step) Trace {
	t, err := NewTrace(steps...)
	if err != nil {
		panic(err)
	}
	return t
}

// Named returns a copy of the trace labelled for diagnostics.
func (t Trace) Named(name string) Trace {
	t.Name = name
	return t
}

func (t Trace) Validate() error {
	if len(t.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidTrace)
	}
	for i, s := range t.Steps {
		switch s := s.(type) {
		case nil:
			return fmt.Errorf("%w: step %d is nil", ErrInvalidTrace, i)
		case Yield:
			if s.Effect.Name == "" {
				return fmt.Errorf("%w: step %d yields an unnamed effect", ErrInvalidTrace, i)
			}
			if !s.Effect.Kind.Valid() {
				return fmt.Errorf("%w: step %d yields effect %q of unknown kind %q", ErrInvalidTrace, i, s.Effect.Name, s.Effect.Kind)
			}
		case Throw:
			if s.Err == nil {
				return fmt.Errorf("%w: step %d throws a nil error", ErrInvalidTrace, i)
			}
		}
		if isTerminal(t.Steps[i]) && i != len(t.Steps)-1 {
			return fmt.Errorf("%w: terminal step %d is followed by %d more", ErrInvalidTrace, i, len(t.Steps)-1-i)
		}
	}
	return nil
}

// Terminal returns the closing Throw or Return step, if any.
func (t Trace) Terminal() (Step, bool) {
	if len(t.Steps) == 0 {
		return nil, false
	}
	last := t.Steps[len(t.Steps)-1]
	return last, isTerminal(last)
}

// Fingerprint identifies the trace by content, independent of its name and
// its position in a program.
func (t Trace) Fingerprint() string {
	var b strings.Builder
	for _, s := range t.Steps {
		if s == nil {
			b.WriteString("<nil>\n")
			continue
		}
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}

func (t Trace) String() string {
	var b strings.Builder
	if t.Name == "" {
		b.WriteString("trace\n")
	} else {
		fmt.Fprintf(&b, "trace %q\n", t.Name)
	}
	for _, s := range t.Steps {
		fmt.Fprintf(&b, "  %v\n", s)
	}
	return b.String()
}

// Program is the set of traces a computation is expected to reproduce.
// Order is kept for reporting only.
type Program struct {
	Traces []Trace
}

func NewProgram(traces ...Trace) Program {
	return Program{Traces: append([]Trace{}, traces...)}
}

// Validate checks every trace and that no effect name is declared with
// two different kinds.
func (p Program) Validate() error {
	for i, t := range p.Traces {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("trace %d: %w", i, err)
		}
	}
	_, err := p.signatures()
	return err
}

// Signatures maps every declared effect name to its kind.
func (p Program) Signatures() map[string]Kind {
	sigs, _ := p.signatures()
	return sigs
}

func (p Program) signatures() (map[string]Kind, error) {
	sigs := make(map[string]Kind)
	for i, t := range p.Traces {
		for j, s := range t.Steps {
			y, ok := s.(Yield)
			if !ok {
				continue
			}
			d := y.Effect
			if k, seen := sigs[d.Name]; seen && k != d.Kind {
				return sigs, fmt.Errorf("%w: %q is %s, trace %d step %d declares %s", ErrConflictingKinds, d.Name, k, i, j, d.Kind)
			}
			sigs[d.Name] = d.Kind
		}
	}
	return sigs, nil
}

// EffectNames lists the declared effect names, sorted.
func (p Program) EffectNames() []string {
	sigs := p.Signatures()
	names := make([]string, 0, len(sigs))
	for name := range sigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p Program) String() string {
	var b strings.Builder
	for i, t := range p.Traces {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.String())
	}
	return b.String()
}
