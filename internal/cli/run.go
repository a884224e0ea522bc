package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jean-pierre/jpc/internal/executor"
)

var runCmd = &cobra.Command{
	Use:   "run <build|test|program>",
	Short: "Run the project's build or tests, or any program",
	Long: `Run a helper command in the project root.

  jpc run build   go build ./... (or cargo build without a go.mod)
  jpc run test    go test ./...  (or cargo test without a go.mod)
  jpc run make    any other name runs that program with no arguments

Output is printed once the command exits. A non-zero exit fails jpc.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession()
		if err != nil {
			return err
		}

		name, cmdArgs := toolchainCommand(s.cfg.ProjectRoot, args[0])
		logger.Debug("running", zap.String("cmd", name), zap.Strings("args", cmdArgs))

		ctx, cancel := interruptContext()
		defer cancel()

		return executor.RunCommand(ctx, s.cfg.ProjectRoot, cmd.OutOrStdout(), cmd.ErrOrStderr(), name, cmdArgs...)
	},
}

// toolchainCommand maps build and test onto the project's toolchain.
func toolchainCommand(root, what string) (string, []string) {
	_, err := os.Stat(filepath.Join(root, "go.mod"))
	isGo := err == nil

	switch what {
	case "build":
		if isGo {
			return "go", []string{"build", "./..."}
		}
		return "cargo", []string{"build"}
	case "test":
		if isGo {
			return "go", []string{"test", "./..."}
		}
		return "cargo", []string{"test"}
	default:
		return what, nil
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
