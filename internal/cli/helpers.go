package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jean-pierre/jpc/internal/config"
	"github.com/jean-pierre/jpc/internal/display"
	"github.com/jean-pierre/jpc/internal/llm"
	"github.com/jean-pierre/jpc/internal/workspace"
)

// session is what most commands need: where they run and the merged config.
type session struct {
	cwd   string
	root  string
	paths config.Paths
	cfg   *config.Config
}

func loadSession() (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	root := workspace.Root(cwd)

	paths := config.DefaultPaths(root)
	if cfgFile != "" {
		paths.Local = cfgFile
	}

	cfg, err := config.Load(paths, cwd)
	if err != nil {
		return nil, err
	}
	return &session{cwd: cwd, root: root, paths: paths, cfg: cfg}, nil
}

// newBackend builds the configured generation backend on demand so that an
// unusable backend only surfaces when a plan is requested.
func (s *session) newBackend() (llm.Backend, error) {
	return llm.New(llm.Options{
		Backend:    s.cfg.Backend,
		Model:      s.cfg.Model,
		APIKey:     config.ResolveAPIKey(s.cfg),
		OllamaURL:  s.cfg.OllamaURL,
		GeminiURL:  s.cfg.GeminiURL,
		Binary:     s.cfg.Command.Binary,
		BinaryArgs: s.cfg.Command.Args,
		WorkDir:    s.cfg.ProjectRoot,
	})
}

func newDisplay(cmd *cobra.Command) *display.Display {
	return display.NewWithOptions(cmd.OutOrStdout(), noColor)
}

// newStderrDisplay keeps stdout free for machine-readable output.
func newStderrDisplay(cmd *cobra.Command) *display.Display {
	return display.NewWithOptions(cmd.ErrOrStderr(), noColor)
}

// interruptContext is cancelled on SIGINT or SIGTERM.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
