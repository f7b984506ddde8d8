package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/on-the-ground/tracify/internal/config"
)

// RootOptions holds global flags and the resolved configuration for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string

	Config *config.Config
	Logger *zap.Logger
}

// NewRootCommand creates the root command for the tracify CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tracify",
		Short: "Inspect effect program fixtures",
		Long: `tracify loads YAML effect programs: the scripted traces a computation
is verified against. It checks them for shape errors and prints them in
their canonical form.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				if !config.IsValidFormat(opts.Format) {
					return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, config.ValidFormats)
				}
				cfg.Output.Format = opts.Format
			}
			logger, err := cfg.NewLogger()
			if err != nil {
				return err
			}
			opts.Config = cfg
			opts.Logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				_ = opts.Logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))

	return cmd
}
