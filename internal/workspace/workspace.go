package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Dir is the per-project directory holding local config, prompts and backups.
const Dir = ".jpc"

var ErrNoWorkspace = errors.New("no .jpc directory found (run 'jpc init' first)")

// Find walks up from start looking for a .jpc/ directory and returns the
// directory that contains it.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, Dir)); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoWorkspace
		}
		dir = parent
	}
}

// Root returns the workspace containing cwd, or cwd itself when there is none.
func Root(cwd string) string {
	if root, err := Find(cwd); err == nil {
		return root
	}
	return cwd
}

// Path returns the .jpc directory for a project root.
func Path(root string) string {
	return filepath.Join(root, Dir)
}

// ConfigPath returns the local config.toml path.
func ConfigPath(root string) string {
	return filepath.Join(root, Dir, "config.toml")
}

// PromptsPath returns the directory of prompt overrides.
func PromptsPath(root string) string {
	return filepath.Join(root, Dir, "prompts")
}

// BackupsDir returns the backup directory for a project root, creating it if needed.
func BackupsDir(root string) (string, error) {
	dir := filepath.Join(root, Dir, "backups")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backups directory %s: %w", dir, err)
	}
	return dir, nil
}
