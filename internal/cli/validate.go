package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/on-the-ground/tracify/effects/fixture"
)

// ValidationResult is the outcome of loading one fixture file.
type ValidationResult struct {
	File    string            `json:"file"`
	Valid   bool              `json:"valid"`
	Traces  int               `json:"traces,omitempty"`
	Effects map[string]string `json:"effects,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <fixture.yaml>...",
		Short: "Check program fixtures for shape errors",
		Long: `Load each YAML program fixture and validate it: every trace is
non-empty, terminal steps come last, and no effect is declared with two
different kinds.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	results := make([]ValidationResult, 0, len(files))
	invalid := 0
	for _, path := range files {
		res := validateFile(path)
		if !res.Valid {
			invalid++
			opts.Logger.Debug("invalid fixture", zap.String("file", path), zap.String("error", res.Error))
		}
		results = append(results, res)
	}

	if formatter.JSON() {
		if err := formatter.WriteJSON(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.Valid {
				formatter.Printf("ok    %s (%d traces; %s)\n", res.File, res.Traces, effectList(res.Effects))
			} else {
				formatter.Printf("FAIL  %s: %s\n", res.File, res.Error)
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d fixture(s) invalid", invalid, len(files))
	}
	return nil
}

func validateFile(path string) ValidationResult {
	program, err := fixture.Load(path)
	if err != nil {
		return ValidationResult{File: path, Error: err.Error()}
	}

	effects := make(map[string]string)
	for name, kind := range program.Signatures() {
		effects[name] = string(kind)
	}
	return ValidationResult{
		File:    path,
		Valid:   true,
		Traces:  len(program.Traces),
		Effects: effects,
	}
}

func effectList(effects map[string]string) string {
	names := make([]string, 0, len(effects))
	for name := range effects {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ":" + effects[name]
	}
	return strings.Join(parts, ", ")
}
