package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jean-pierre/jpc/internal/logging"
)

var (
	version = "0.1.0"
	cfgFile string
	verbose bool
	noColor bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "jpc",
	Short: "Plan and apply code changes with a local model",
	Long: `jpc turns a request into a JSON plan of file writes and commands,
then applies it with a backup of every file it overwrites.

Get started:
  jpc init                   Write default config and prompts
  jpc plan "add a README"    Print a plan for a request
  jpc apply plan.json        Apply a saved plan (--dry-run to list it)
  jpc chat "what does x do"  Ask the remote model about the project`,
	Version:       version,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}

		l, err := logging.New(verbose)
		if err != nil {
			return err
		}
		logger = l.With(zap.String("invocation", uuid.NewString()))
		logger.Debug("starting", zap.String("command", cmd.CommandPath()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .jpc/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.SetVersionTemplate(fmt.Sprintf("jpc version %s\n", version))
}
