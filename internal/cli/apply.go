package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jean-pierre/jpc/internal/executor"
	"github.com/jean-pierre/jpc/internal/plan"
	"github.com/jean-pierre/jpc/internal/workspace"
)

var applyDryRun bool

var applyCmd = &cobra.Command{
	Use:   "apply <plan-file>",
	Short: "Apply a JSON plan file of actions",
	Long: `Apply the actions of a plan file in order.

Files that already exist are copied to .jpc/backups/ before they are
overwritten. The first failing action stops the run; actions applied before
it are kept.

Use --dry-run to list the actions without touching anything.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}

		d := newDisplay(cmd)
		if applyDryRun {
			d.DryRun(p)
			return nil
		}

		s, err := loadSession()
		if err != nil {
			return err
		}
		backups, err := workspace.BackupsDir(s.root)
		if err != nil {
			return err
		}

		d.Info("plan", p.Description)
		ex := executor.New(backups, logger)
		ex.WorkDir = s.cfg.ProjectRoot
		ex.Stdout = cmd.OutOrStdout()
		ex.Stderr = cmd.ErrOrStderr()

		report, err := ex.Apply(context.Background(), p)
		if err != nil {
			var actionErr *executor.ActionError
			if errors.As(err, &actionErr) {
				d.ApplyFailed(actionErr.Label, actionErr.Err, report.Applied)
			}
			return err
		}

		d.Applied(report.Applied, report.Backups)
		return nil
	},
}

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "list the actions without applying them")
	rootCmd.AddCommand(applyCmd)
}
