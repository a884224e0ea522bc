package executor

import (
	"fmt"
	"strings"
)

// ActionError reports the action that aborted Apply. Applied actions before
// Index stay applied.
type ActionError struct {
	Index   int // zero-based position in the plan
	Applied int
	Label   string
	Err     error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %03d (%s) failed after %d applied: %v", e.Index+1, e.Label, e.Applied, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// FileError is a filesystem failure while applying a write.
type FileError struct {
	Op   string // "mkdir", "backup", "write"
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// SpawnError means the process could not be started.
type SpawnError struct {
	Cmd string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start command '%s': %v", e.Cmd, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError means the process ran and exited unsuccessfully. Code is -1 when
// the process was terminated by a signal.
type ExitError struct {
	Cmd    string
	Args   []string
	Code   int
	Status string
}

func (e *ExitError) Error() string {
	cmdline := e.Cmd
	if len(e.Args) > 0 {
		cmdline += " " + strings.Join(e.Args, " ")
	}
	return fmt.Sprintf("command '%s' failed with status %s", cmdline, e.Status)
}
