// Package fixture loads programs from YAML files.
//
// # Format
//
//	traces:
//	  - name: no users
//	    steps:
//	      - yields:
//	          kind: tag
//	          name: sql
//	          args: [1, Alice]
//	          result: []
//	      - throws: no users
//	  - steps:
//	      - yields: {kind: fn, name: random, result: 42}
//	      - returns: 42
//
// Each step holds exactly one of yields, throws or returns. A throws value
// is an error message; it becomes errors.New(message). A yields entry may
// pin tag fragments with template: [...]. Unknown fields are rejected.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/on-the-ground/tracify/effects"
	effectmodel "github.com/on-the-ground/tracify/effects/model"
)

var ErrInvalidFixture = errors.New("invalid program fixture")

// Document is the YAML shape of a program.
type Document struct {
	Traces []TraceDoc `yaml:"traces"`
}

// TraceDoc is the YAML shape of a trace.
type TraceDoc struct {
	Name  string    `yaml:"name,omitempty"`
	Steps []StepDoc `yaml:"steps"`
}

// StepDoc is one step; exactly one field is set.
type StepDoc struct {
	Yields  *EffectDoc
	Throws  *string
	Returns *any
}

// EffectDoc is the YAML shape of an effect descriptor.
type EffectDoc struct {
	Kind     string   `yaml:"kind"`
	Name     string   `yaml:"name"`
	Args     []any    `yaml:"args,omitempty"`
	Result   any      `yaml:"result,omitempty"`
	Template []string `yaml:"template,omitempty"`
}

// Load reads and parses a program fixture file.
func Load(path string) (effects.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return effects.Program{}, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a program fixture and validates the resulting program.
func Parse(data []byte) (effects.Program, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return effects.Program{}, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidFixture, err)
	}
	return doc.Program()
}

// Program converts the document and validates it.
func (d Document) Program() (effects.Program, error) {
	if len(d.Traces) == 0 {
		return effects.Program{}, fmt.Errorf("%w: no traces", ErrInvalidFixture)
	}
	traces := make([]effects.Trace, 0, len(d.Traces))
	for i, td := range d.Traces {
		steps := make([]effects.Step, 0, len(td.Steps))
		for j, sd := range td.Steps {
			step, err := sd.step()
			if err != nil {
				return effects.Program{}, fmt.Errorf("%w: trace %d step %d: %v", ErrInvalidFixture, i, j, err)
			}
			steps = append(steps, step)
		}
		traces = append(traces, effects.Trace{Name: td.Name, Steps: steps})
	}
	program := effects.NewProgram(traces...)
	if err := program.Validate(); err != nil {
		return effects.Program{}, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	return program, nil
}

func (s StepDoc) step() (effects.Step, error) {
	switch {
	case s.Yields != nil:
		kind, err := effectmodel.ParseKind(s.Yields.Kind)
		if err != nil {
			return nil, err
		}
		d := effects.Descriptor{
			Kind:   kind,
			Name:   s.Yields.Name,
			Args:   s.Yields.Args,
			Result: s.Yields.Result,
		}
		if d.Args == nil {
			d.Args = []any{}
		}
		if s.Yields.Template != nil {
			d.Template = effects.Template(s.Yields.Template)
		}
		return effects.Yields(d), nil
	case s.Throws != nil:
		return effects.Throws(errors.New(*s.Throws)), nil
	case s.Returns != nil:
		return effects.Returns(*s.Returns), nil
	default:
		return nil, errors.New("empty step")
	}
}

// UnmarshalYAML accepts a mapping with exactly one of yields, throws or returns.
func (s *StepDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: step must be a mapping", node.Line)
	}
	if len(node.Content) != 2 {
		return fmt.Errorf("line %d: step must hold exactly one of yields, throws, returns", node.Line)
	}
	key, value := node.Content[0], node.Content[1]
	switch key.Value {
	case "yields":
		if err := checkKeys(value, "kind", "name", "args", "result", "template"); err != nil {
			return err
		}
		var eff EffectDoc
		if err := value.Decode(&eff); err != nil {
			return err
		}
		s.Yields = &eff
	case "throws":
		var msg string
		if err := value.Decode(&msg); err != nil {
			return err
		}
		s.Throws = &msg
	case "returns":
		var v any
		if err := value.Decode(&v); err != nil {
			return err
		}
		s.Returns = &v
	default:
		return fmt.Errorf("line %d: unknown step %q", key.Line, key.Value)
	}
	return nil
}

func checkKeys(node *yaml.Node, allowed ...string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: effect must be a mapping", node.Line)
	}
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		known := false
		for _, a := range allowed {
			if key.Value == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("line %d: field %s not found in effect", key.Line, key.Value)
		}
	}
	return nil
}
