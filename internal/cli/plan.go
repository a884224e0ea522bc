package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jean-pierre/jpc/internal/plan"
	"github.com/jean-pierre/jpc/internal/planner"
	"github.com/jean-pierre/jpc/internal/snapshot"
)

var (
	planMaxTokens int
	planOut       string
)

var planCmd = &cobra.Command{
	Use:   "plan <query>",
	Short: "Create an action plan for a query",
	Long: `Ask the configured model for a plan and print it as JSON.

When the model is unavailable or its output holds no usable plan, a simple
built-in planner answers instead; the command itself does not fail.

Examples:
  jpc plan "update the README"
  jpc plan "add a --json flag" --max-tokens 4096 --out plan.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		s, err := loadSession()
		if err != nil {
			return err
		}

		snap, err := snapshot.Gather(snapshot.Options{
			Dir:      s.cfg.ProjectRoot,
			MaxFiles: s.cfg.Context.MaxFiles,
			MaxBytes: s.cfg.Context.MaxBytes,
		})
		if err != nil {
			return err
		}

		maxTokens := s.cfg.Plan.MaxTokens
		if cmd.Flags().Changed("max-tokens") {
			maxTokens = planMaxTokens
		}

		p := planner.New(&planner.Generative{
			NewBackend:  s.newBackend,
			Model:       s.cfg.Model,
			PromptChars: s.cfg.Plan.PromptChars,
			Root:        s.root,
		}, logger)

		ctx, cancel := interruptContext()
		defer cancel()

		logger.Debug("planning",
			zap.String("backend", s.cfg.Backend),
			zap.Int("files", len(snap.Files)),
			zap.Int("max_tokens", maxTokens))
		result := p.Plan(ctx, snap, query, maxTokens)

		data, err := plan.Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode plan: %w", err)
		}
		newStderrDisplay(cmd).Box("PLAN", result.Description, fmt.Sprintf("%d actions", len(result.Actions)))
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return err
		}

		if planOut != "" {
			if err := os.WriteFile(planOut, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", planOut, err)
			}
			logger.Debug("plan written", zap.String("path", planOut))
		}
		return nil
	},
}

func init() {
	planCmd.Flags().IntVar(&planMaxTokens, "max-tokens", planner.DefaultMaxTokens, "token limit for the generated plan")
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "also write the plan to this file")
	rootCmd.AddCommand(planCmd)
}
