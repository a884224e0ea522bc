// Package executor applies plans: file writes with backup-before-overwrite and
// external commands with captured output.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jean-pierre/jpc/internal/clock"
	"github.com/jean-pierre/jpc/internal/plan"
)

// BackupTimeFormat is the UTC timestamp embedded in backup file names.
const BackupTimeFormat = "20060102150405"

// Executor applies actions strictly in order. It is not safe for concurrent
// use against the same target paths.
type Executor struct {
	BackupDir string
	WorkDir   string
	Clock     clock.Clock
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *zap.Logger
}

// New creates an executor writing backups into backupDir and relaying
// command output to the process's own streams.
func New(backupDir string, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		BackupDir: backupDir,
		Clock:     clock.RealClock{},
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Logger:    logger,
	}
}

// Report describes a completed or aborted Apply.
type Report struct {
	Applied int
	Backups []string
}

// Apply runs every action in order. The first failure stops processing and
// is returned as an *ActionError; the report still counts what was applied.
func (e *Executor) Apply(ctx context.Context, p *plan.Plan) (*Report, error) {
	report := &Report{}
	for i, action := range p.Actions {
		if err := e.apply(ctx, action, report); err != nil {
			e.logger().Error("action failed",
				zap.Int("index", i),
				zap.String("action", action.Label()),
				zap.Error(err))
			return report, &ActionError{Index: i, Applied: report.Applied, Label: action.Label(), Err: err}
		}
		report.Applied++
		e.logger().Debug("action applied", zap.Int("index", i), zap.String("action", action.Label()))
	}
	return report, nil
}

func (e *Executor) apply(ctx context.Context, action plan.Action, report *Report) error {
	switch a := action.(type) {
	case plan.WriteFile:
		backup, err := e.writeFile(a)
		if backup != "" {
			report.Backups = append(report.Backups, backup)
		}
		return err
	case plan.Run:
		return e.run(ctx, a)
	default:
		return fmt.Errorf("unsupported action %T", action)
	}
}

// writeFile backs up an existing target before replacing it. Parent
// directories are only created when the action asks for it.
func (e *Executor) writeFile(a plan.WriteFile) (string, error) {
	path := e.resolve(a.Path)

	if a.CreateDirs {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return "", &FileError{Op: "mkdir", Path: dir, Err: err}
			}
		}
	}

	backup := ""
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		backup, err = e.backup(path)
		if err != nil {
			return "", err
		}
	}

	if err := os.WriteFile(path, []byte(a.Content), 0644); err != nil {
		return backup, &FileError{Op: "write", Path: path, Err: err}
	}
	return backup, nil
}

func (e *Executor) backup(path string) (string, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return "", &FileError{Op: "backup", Path: path, Err: err}
	}
	if err := os.MkdirAll(e.BackupDir, 0755); err != nil {
		return "", &FileError{Op: "mkdir", Path: e.BackupDir, Err: err}
	}

	stamp := e.clk().Now().UTC().Format(BackupTimeFormat)
	dest := filepath.Join(e.BackupDir, fmt.Sprintf("%s-%s.bak", filepath.Base(path), stamp))
	if err := os.WriteFile(dest, original, 0644); err != nil {
		return "", &FileError{Op: "backup", Path: dest, Err: err}
	}
	e.logger().Debug("backed up file", zap.String("path", path), zap.String("backup", dest))
	return dest, nil
}

func (e *Executor) run(ctx context.Context, a plan.Run) error {
	return RunCommand(ctx, e.WorkDir, e.stdout(), e.stderr(), a.Cmd, a.Args...)
}

// RunCommand runs name with args, captures its output, relays stdout and
// stderr to the given writers once it exits, and reports failure as a
// *SpawnError or *ExitError.
func RunCommand(ctx context.Context, dir string, stdout, stderr io.Writer, name string, args ...string) error {
	var outBuf, errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()

	if stdout != nil {
		_, _ = stdout.Write(outBuf.Bytes())
	}
	if stderr != nil {
		_, _ = stderr.Write(errBuf.Bytes())
	}

	if runErr == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return &ExitError{
			Cmd:    name,
			Args:   args,
			Code:   exitErr.ExitCode(),
			Status: exitErr.ProcessState.String(),
		}
	}
	return &SpawnError{Cmd: name, Err: runErr}
}

func (e *Executor) resolve(path string) string {
	if e.WorkDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.WorkDir, path)
}

func (e *Executor) clk() clock.Clock {
	if e.Clock == nil {
		return clock.RealClock{}
	}
	return e.Clock
}

func (e *Executor) stdout() io.Writer {
	if e.Stdout == nil {
		return io.Discard
	}
	return e.Stdout
}

func (e *Executor) stderr() io.Writer {
	if e.Stderr == nil {
		return io.Discard
	}
	return e.Stderr
}

func (e *Executor) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
