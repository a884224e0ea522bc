package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jean-pierre/jpc/internal/snapshot"
)

var (
	contextMaxFiles int
	contextMaxBytes int
	contextPrompt   int
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print gathered project context as JSON",
	Long: `Print the project context that 'jpc plan' sends to the model.

By default the snapshot is printed as JSON. With --prompt N it is printed the
way the planner renders it, cut to N bytes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession()
		if err != nil {
			return err
		}

		maxFiles, maxBytes := s.cfg.Context.MaxFiles, s.cfg.Context.MaxBytes
		if cmd.Flags().Changed("max-files") {
			maxFiles = contextMaxFiles
		}
		if cmd.Flags().Changed("max-bytes") {
			maxBytes = contextMaxBytes
		}

		snap, err := snapshot.Gather(snapshot.Options{
			Dir:      s.cfg.ProjectRoot,
			MaxFiles: maxFiles,
			MaxBytes: maxBytes,
		})
		if err != nil {
			return err
		}

		if contextPrompt > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), snapshot.RenderForPrompt(snap, contextPrompt))
			return nil
		}

		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode context: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	contextCmd.Flags().IntVar(&contextMaxFiles, "max-files", 0, "max number of files to include")
	contextCmd.Flags().IntVar(&contextMaxBytes, "max-bytes", 0, "max total bytes to include")
	contextCmd.Flags().IntVar(&contextPrompt, "prompt", 0, "render as prompt text cut to N bytes")
	rootCmd.AddCommand(contextCmd)
}
