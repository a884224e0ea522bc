package llm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Command runs a local model CLI (claude, llm, ollama run, ...) with the
// prompt as its final argument and streams its stdout.
type Command struct {
	BinaryPath string
	Args       []string
	WorkDir    string
}

// NewCommand creates a command backend. The binary must be resolvable.
func NewCommand(binary string, args []string, workDir string) (*Command, error) {
	if binary == "" {
		return nil, fmt.Errorf("command backend needs a binary (set command.binary)")
	}
	resolved := ResolveBinaryPath(binary)
	if _, err := exec.LookPath(resolved); err != nil {
		return nil, binaryNotFoundError(binary)
	}
	return &Command{BinaryPath: resolved, Args: args, WorkDir: workDir}, nil
}

func (c *Command) Name() string {
	return "command"
}

// Stream spawns the binary and emits stdout one word at a time, each word
// carrying the whitespace that follows it.
func (c *Command) Stream(ctx context.Context, req Request, emit func(string) bool) error {
	out, err := c.start(ctx, req)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanWordsWithSpace)

	stopped := false
	for scanner.Scan() {
		if !emit(scanner.Text()) {
			stopped = true
			break
		}
	}
	scanErr := scanner.Err()

	if stopped {
		// The child is killed when its context is cancelled; its exit status is irrelevant.
		out.cancel()
		_ = out.Close()
		return nil
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%s exited: %w", filepath.Base(c.BinaryPath), err)
	}
	return scanErr
}

func (c *Command) start(ctx context.Context, req Request) (*cmdReader, error) {
	ctx, cancel := context.WithCancel(ctx)

	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + req.Prompt
	}
	args := append(append([]string{}, c.Args...), prompt)

	cmd := exec.CommandContext(ctx, c.BinaryPath, args...)
	cmd.Dir = c.WorkDir
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		if strings.Contains(err.Error(), "executable file not found") {
			return nil, binaryNotFoundError(c.BinaryPath)
		}
		return nil, fmt.Errorf("failed to start %s: %w", c.BinaryPath, err)
	}

	return &cmdReader{ReadCloser: stdout, cmd: cmd, cancel: cancel}, nil
}

// cmdReader wraps the child's stdout and waits for the command on close
type cmdReader struct {
	io.ReadCloser
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

func (r *cmdReader) Close() error {
	defer r.cancel()
	closeErr := r.ReadCloser.Close()
	waitErr := r.cmd.Wait()
	if waitErr != nil {
		return waitErr
	}
	return closeErr
}

// scanWordsWithSpace is a bufio.SplitFunc returning a run of non-space bytes
// together with the whitespace run that follows it, so joining all tokens
// reproduces the input exactly.
func scanWordsWithSpace(data []byte, atEOF bool) (int, []byte, error) {
	i := 0
	for i < len(data) && !isSpace(data[i]) {
		i++
	}
	for i < len(data) && isSpace(data[i]) {
		i++
	}
	if i < len(data) {
		return i, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

// ResolveBinaryPath finds a binary, checking PATH, a tilde prefix and common locations
func ResolveBinaryPath(binaryPath string) string {
	if filepath.IsAbs(binaryPath) {
		return binaryPath
	}

	if path, err := exec.LookPath(binaryPath); err == nil {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return binaryPath
	}

	if strings.HasPrefix(binaryPath, "~") {
		return filepath.Join(home, binaryPath[1:])
	}

	name := filepath.Base(binaryPath)
	commonPaths := []string{
		filepath.Join(home, "."+name, "local", name),
		filepath.Join(home, ".local", "bin", name),
		"/usr/local/bin/" + name,
		"/opt/homebrew/bin/" + name,
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	// Return original, will fail with helpful error later
	return binaryPath
}

func binaryNotFoundError(binary string) error {
	return fmt.Errorf(`%s not found in PATH

To fix, add its directory to PATH in your ~/.zshrc or ~/.bashrc,
or set the full path in .jpc/config.toml:
  [command]
  binary = "/path/to/%s"`, binary, filepath.Base(binary))
}
