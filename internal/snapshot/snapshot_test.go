package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noGit(string) *GitInfo { return nil }

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestGatherOrderAndFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":                    "module x\n",
		"README.md":                 "not collected",
		"internal/a/a.go":           "package a\n",
		"cmd/x/main.go":             "package main\n",
		"src/1/2/3/deep.txt":        "depth four",
		"src/1/2/3/4/too_deep.txt":  "depth five",
		"vendor/ignored/ignored.go": "package ignored\n",
	})

	snap, err := Gather(Options{Dir: root, Git: noGit})
	require.NoError(t, err)

	var paths []string
	for _, f := range snap.Files {
		paths = append(paths, f.Path)
		assert.Equal(t, len(f.Content), f.Bytes)
	}
	assert.Equal(t, []string{"go.mod", "src/1/2/3/deep.txt", "cmd/x/main.go", "internal/a/a.go"}, paths)
	assert.Nil(t, snap.Git)
	assert.Equal(t, root, snap.Cwd)
}

func TestGatherFileCap(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.txt": "a",
		"src/b.txt": "b",
		"src/c.txt": "c",
	})

	snap, err := Gather(Options{Dir: root, MaxFiles: 2, Git: noGit})
	require.NoError(t, err)
	assert.Len(t, snap.Files, 2)
}

func TestGatherByteCapStopsAtFirstOverflow(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.txt": strings.Repeat("a", 40),
		"src/b.txt": strings.Repeat("b", 40),
		"src/c.txt": "c",
	})

	snap, err := Gather(Options{Dir: root, MaxBytes: 60, Git: noGit})
	require.NoError(t, err)

	// b would overflow, so collection stops there even though c would fit.
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "src/a.txt", snap.Files[0].Path)
}

func TestGatherTruncatesLargeFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/big.txt": strings.Repeat("x", maxFileBytes+100),
	})

	snap, err := Gather(Options{Dir: root, Git: noGit})
	require.NoError(t, err)
	require.Len(t, snap.Files, 1)
	assert.Equal(t, maxFileBytes, snap.Files[0].Bytes)
}

func TestRenderForPrompt(t *testing.T) {
	branch := "main"
	snap := &Snapshot{
		Cwd: "/work",
		Git: &GitInfo{Branch: &branch},
		Files: []FileSnippet{
			{Path: "a.go", Bytes: 5, Content: "aaaaa"},
			{Path: "b.go", Bytes: 5, Content: "bbbbb"},
		},
	}

	full := RenderForPrompt(snap, 10_000)
	assert.Equal(t, "cwd: /work\ngit: branch=\"main\"\n--- a.go (5 bytes) ---\naaaaa\n--- b.go (5 bytes) ---\nbbbbb\n", full)

	short := RenderForPrompt(snap, 20)
	assert.Equal(t, full[:20], short)

	noBranch := RenderForPrompt(&Snapshot{Cwd: "/w", Git: &GitInfo{}}, 100)
	assert.Equal(t, "cwd: /w\ngit: branch=none\n", noBranch)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	s := "héllo"
	// "h" is one byte, "é" is two; cutting at 2 would split it.
	assert.Equal(t, "h", truncate(s, 2))
	assert.Equal(t, "hé", truncate(s, 3))
	assert.Equal(t, s, truncate(s, 100))
}

func TestGatherBlanksNonUTF8Files(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/blob.bin": "\xff\xfe\x00\x80x",
		"src/ok.txt":   "fine",
	})

	snap, err := Gather(Options{Dir: root, Git: noGit})
	require.NoError(t, err)
	require.Len(t, snap.Files, 2)

	blob := snap.Files[0]
	assert.Equal(t, "src/blob.bin", blob.Path)
	assert.Equal(t, 0, blob.Bytes)
	assert.Empty(t, blob.Content)
	assert.Equal(t, "fine", snap.Files[1].Content)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var back Snapshot
	require.NoError(t, json.Unmarshal(data, &back))
	for _, f := range back.Files {
		assert.Equal(t, f.Bytes, len(f.Content), f.Path)
	}
}
