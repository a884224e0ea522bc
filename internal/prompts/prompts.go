// Package prompts holds the embedded prompt templates. A workspace may
// override any of them by placing a file of the same name in .jpc/prompts/.
package prompts

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jean-pierre/jpc/internal/workspace"
)

//go:embed templates/*.md
var embeddedPrompts embed.FS

// Names lists the embedded templates.
var Names = []string{"planner.md"}

// Get returns the embedded prompt content
func Get(name string) (string, error) {
	name = normalize(name)
	content, err := embeddedPrompts.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("prompt %s not found: %w", name, err)
	}
	return string(content), nil
}

// GetForWorkspace returns prompt content, checking the workspace first then embedded
func GetForWorkspace(root, name string) (string, error) {
	name = normalize(name)
	if root != "" {
		localPath := filepath.Join(workspace.PromptsPath(root), name)
		if content, err := os.ReadFile(localPath); err == nil {
			return string(content), nil
		}
	}
	return Get(name)
}

// Install copies the embedded templates into the workspace prompts directory
// so they can be edited. Existing files are kept unless force is set.
func Install(root string, force bool) error {
	dir := workspace.PromptsPath(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	for _, name := range Names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil && !force {
			continue
		}
		content, err := Get(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

func normalize(name string) string {
	if !strings.HasSuffix(name, ".md") {
		return name + ".md"
	}
	return name
}
