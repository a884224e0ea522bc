package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jean-pierre/jpc/internal/config"
	"github.com/jean-pierre/jpc/internal/prompts"
	"github.com/jean-pierre/jpc/internal/workspace"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration files",
	Long: `Initialize jpc in the current directory.

Writes a default config.toml to the user config directory and to .jpc/,
and creates:
  - .jpc/prompts/   Customizable prompt templates
  - .jpc/backups/   Copies of files overwritten by 'jpc apply'

Existing files are kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}

		paths := config.DefaultPaths(cwd)
		if cfgFile != "" {
			paths.Local = cfgFile
		}

		written, err := config.Init(paths, cwd, initForce)
		if err != nil {
			return err
		}
		if err := prompts.Install(cwd, initForce); err != nil {
			return err
		}
		if _, err := workspace.BackupsDir(cwd); err != nil {
			return err
		}

		d := newDisplay(cmd)
		for _, path := range written {
			d.Success("wrote " + path)
		}
		if len(written) < 2 {
			d.Warning("kept existing config (use --force to overwrite)")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Initialized configuration for jean-pierre-code.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config and prompts")
	rootCmd.AddCommand(initCmd)
}
