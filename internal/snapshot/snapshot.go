// Package snapshot collects a bounded, read-only view of the project that the
// planner renders into its prompt.
package snapshot

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMaxFiles = 50
	DefaultMaxBytes = 512_000

	// maxFileBytes caps a single file's content before the cumulative budget applies.
	maxFileBytes = 64_000
	maxWalkDepth = 4
)

// Manifests are project files included when present at the root.
var Manifests = []string{"go.mod", "go.sum", "Cargo.toml", "Cargo.lock", "package.json", "pyproject.toml"}

// SourceDirs are walked for regular files, in this order.
var SourceDirs = []string{"src", "cmd", "internal", "pkg", "tests"}

// Snapshot is constructed once per invocation and not modified afterwards.
type Snapshot struct {
	Cwd   string        `json:"cwd"`
	Git   *GitInfo      `json:"git"`
	Files []FileSnippet `json:"files"`
}

// GitInfo holds repository metadata; either field may be nil when git could not report it.
type GitInfo struct {
	Branch *string `json:"branch"`
	Status *string `json:"status"`
}

// FileSnippet is a possibly truncated file. Bytes is the length of Content.
type FileSnippet struct {
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
	Content string `json:"content"`
}

// Options bounds collection. Zero values select the defaults.
type Options struct {
	Dir      string
	MaxFiles int
	MaxBytes int
	// Git reports repository metadata for Dir. Defaults to running the git binary.
	Git func(dir string) *GitInfo
}

// Gather builds a Snapshot of opts.Dir (the current directory when empty).
func Gather(opts Options) (*Snapshot, error) {
	dir := opts.Dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = cwd
	}
	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	gitFn := opts.Git
	if gitFn == nil {
		gitFn = ReadGitInfo
	}

	paths, err := candidates(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) > maxFiles {
		paths = paths[:maxFiles]
	}

	snap := &Snapshot{Cwd: dir, Git: gitFn(dir), Files: []FileSnippet{}}
	used := 0
	for _, rel := range paths {
		// Unreadable and non-UTF-8 files are listed with empty content.
		data, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil || !utf8.Valid(data) {
			data = nil
		}
		content := truncate(string(data), maxFileBytes)
		if used+len(content) > maxBytes {
			break
		}
		used += len(content)
		snap.Files = append(snap.Files, FileSnippet{
			Path:    filepath.ToSlash(rel),
			Bytes:   len(content),
			Content: content,
		})
	}

	return snap, nil
}

// candidates lists manifest files then source files, relative to dir.
func candidates(dir string) ([]string, error) {
	var out []string
	for _, name := range Manifests {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && info.Mode().IsRegular() {
			out = append(out, name)
		}
	}

	for _, sub := range SourceDirs {
		root := filepath.Join(dir, sub)
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			depth := strings.Count(filepath.ToSlash(rel), "/")
			if d.IsDir() {
				if depth >= maxWalkDepth {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				out = append(out, rel)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	return out, nil
}

// ReadGitInfo asks git for the current branch and porcelain status. It
// returns nil when neither is available.
func ReadGitInfo(dir string) *GitInfo {
	branch := gitOutput(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if branch != nil {
		trimmed := strings.TrimSpace(*branch)
		branch = &trimmed
	}
	status := gitOutput(dir, "status", "--porcelain")
	if branch == nil && status == nil {
		return nil
	}
	return &GitInfo{Branch: branch, Status: status}
}

func gitOutput(dir string, args ...string) *string {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil
	}
	s := string(out)
	return &s
}

// RenderForPrompt renders the snapshot as text no longer than maxChars bytes.
// Files are appended in order until the text exceeds the budget; the result is
// then cut back to maxChars.
func RenderForPrompt(snap *Snapshot, maxChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "cwd: %s\n", snap.Cwd)
	if snap.Git != nil {
		branch := "none"
		if snap.Git.Branch != nil {
			branch = fmt.Sprintf("%q", *snap.Git.Branch)
		}
		fmt.Fprintf(&b, "git: branch=%s\n", branch)
	}
	for _, f := range snap.Files {
		fmt.Fprintf(&b, "--- %s (%d bytes) ---\n", f.Path, f.Bytes)
		b.WriteString(f.Content)
		b.WriteByte('\n')
		if b.Len() > maxChars {
			break
		}
	}
	return truncate(b.String(), maxChars)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := n
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i]
}
