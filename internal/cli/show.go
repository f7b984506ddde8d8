package cli

import (
	"github.com/spf13/cobra"

	"github.com/on-the-ground/tracify/effects/fixture"
)

// TraceView is the JSON form of a trace printed by show.
type TraceView struct {
	Name        string   `json:"name,omitempty"`
	Fingerprint string   `json:"fingerprint"`
	Steps       []string `json:"steps"`
}

// ProgramView is the JSON form of a program printed by show.
type ProgramView struct {
	Effects map[string]string `json:"effects"`
	Traces  []TraceView       `json:"traces"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <fixture.yaml>",
		Short: "Print a program fixture in canonical form",
		Long: `Load a YAML program fixture and print every trace with its
fingerprint. Fingerprints match the ones reported in verification faults.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runShow(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	program, err := fixture.Load(path)
	if err != nil {
		return err
	}

	if !formatter.JSON() {
		for i, t := range program.Traces {
			if i > 0 {
				formatter.Printf("\n")
			}
			formatter.Printf("# %s\n%s", t.Fingerprint(), t.String())
		}
		return nil
	}

	view := ProgramView{Effects: make(map[string]string)}
	for name, kind := range program.Signatures() {
		view.Effects[name] = string(kind)
	}
	for _, t := range program.Traces {
		tv := TraceView{Name: t.Name, Fingerprint: t.Fingerprint()}
		for _, s := range t.Steps {
			tv.Steps = append(tv.Steps, s.String())
		}
		view.Traces = append(view.Traces, tv)
	}
	return formatter.WriteJSON(view)
}
