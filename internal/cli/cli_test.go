package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/jean-pierre/jpc/internal/plan"
	"github.com/jean-pierre/jpc/internal/snapshot"
)

// setupProject isolates config lookups and moves into a fresh project dir.
func setupProject(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{"JPC_REMOTE_ENDPOINT", "JPC_API_KEY", "JPC_MODEL", "JPC_PROJECT_ROOT", "JPC_BACKEND", "JPC_OLLAMA_URL", "JPC_GEMINI_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	keyring.MockInit()

	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// execute runs the root command with fresh flag state and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeSplit(t, args...)
	return stdout, err
}

func executeSplit(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.Flags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--no-color"))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writePlan(t *testing.T, dir string, p *plan.Plan) string {
	t.Helper()
	data, err := plan.Encode(p)
	require.NoError(t, err)
	path := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestRootHelp(t *testing.T) {
	setupProject(t)
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "jpc")

	for _, name := range []string{"init", "context", "plan", "apply", "chat", "run", "config"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestVersionFlag(t *testing.T) {
	setupProject(t)
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "jpc version "+version+"\n", out)
}

func TestUnknownCommand(t *testing.T) {
	setupProject(t)
	_, err := execute(t, "explode")
	assert.Error(t, err)
}

func TestInitCreatesWorkspace(t *testing.T) {
	dir := setupProject(t)

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized configuration for jean-pierre-code.")

	for _, rel := range []string{".jpc/config.toml", ".jpc/prompts/planner.md", ".jpc/backups"} {
		_, err := os.Stat(filepath.Join(dir, rel))
		assert.NoError(t, err, rel)
	}

	out, err = execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "kept existing config")
}

func TestApplyDryRun(t *testing.T) {
	dir := setupProject(t)
	path := writePlan(t, dir, &plan.Plan{Description: "d", Actions: []plan.Action{
		plan.WriteFile{Path: "a.txt", Content: "a"},
		plan.Run{Cmd: "false", Args: []string{}},
	}})

	out, err := execute(t, "apply", path, "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "Would apply 2 actions:\n001: write_file:a.txt\n002: run:false\n", out)

	_, err = os.Stat(filepath.Join(dir, "a.txt"))
	assert.True(t, os.IsNotExist(err), "dry run must not write")
	_, err = os.Stat(filepath.Join(dir, ".jpc"))
	assert.True(t, os.IsNotExist(err), "dry run must not create backups")
}

func TestApplyWritesAndBacksUp(t *testing.T) {
	dir := setupProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("old"), 0644))
	path := writePlan(t, dir, &plan.Plan{Description: "d", Actions: []plan.Action{
		plan.WriteFile{Path: "a.txt", Content: "new"},
		plan.WriteFile{Path: "docs/b.txt", Content: "b", CreateDirs: true},
	}})

	out, err := execute(t, "apply", path)
	require.NoError(t, err)
	assert.Contains(t, out, "plan: d\n")
	assert.Contains(t, out, "Applied 2 actions.")

	got, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	backups, err := os.ReadDir(filepath.Join(dir, ".jpc", "backups"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.True(t, strings.HasPrefix(backups[0].Name(), "a.txt-"))
}

func TestApplyReportsPartialProgress(t *testing.T) {
	dir := setupProject(t)
	path := writePlan(t, dir, &plan.Plan{Description: "d", Actions: []plan.Action{
		plan.WriteFile{Path: "a.txt", Content: "a"},
		plan.Run{Cmd: "jpc-no-such-program", Args: []string{}},
		plan.WriteFile{Path: "c.txt", Content: "c"},
	}})

	out, err := execute(t, "apply", path)
	require.Error(t, err)
	assert.Contains(t, out, "Stopping. 1 actions applied, 1 failed.")

	_, err = os.Stat(filepath.Join(dir, "c.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestApplyMalformedPlan(t *testing.T) {
	dir := setupProject(t)
	path := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"description":"d","actions":[{"type":"delete","path":"x"}]}`), 0644))

	_, err := execute(t, "apply", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, plan.ErrUnknownAction)
}

func TestPlanFallsBackWhenModelUnreachable(t *testing.T) {
	dir := setupProject(t)
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()
	t.Setenv("JPC_OLLAMA_URL", url)

	out, stderr, err := executeSplit(t, "plan", "update", "the", "README", "--out", "saved.json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "┌─ PLAN ")
	assert.Contains(t, stderr, "│ 1 actions ")

	p, err := plan.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "Heuristic plan for query: 'update the README' with 0 files in context.", p.Description)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, "write_file:README.md", p.Actions[0].Label())

	saved, err := os.ReadFile(filepath.Join(dir, "saved.json"))
	require.NoError(t, err)
	assert.Equal(t, out, string(saved))
}

func TestContextJSON(t *testing.T) {
	dir := setupProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0644))

	out, err := execute(t, "context", "--max-files", "5")
	require.NoError(t, err)

	var snap snapshot.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "go.mod", snap.Files[0].Path)
}

func TestChatEchoesWithoutRemote(t *testing.T) {
	setupProject(t)
	out, err := execute(t, "chat", "hello", "--raw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[no remote configured]\nEchoing prompt:\nUser: hello\n\nContext (truncated): cwd: "))
}

func TestChatRendersThroughGutter(t *testing.T) {
	setupProject(t)
	out, err := execute(t, "chat", "hello")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "▎ [no remote configured]\n▎ Echoing prompt:\n▎ User: hello\n"), out)
}

func TestConfigSetAndGet(t *testing.T) {
	setupProject(t)
	_, err := execute(t, "init")
	require.NoError(t, err)

	_, err = execute(t, "config", "backend", "gemini")
	require.NoError(t, err)

	out, err := execute(t, "config", "backend")
	require.NoError(t, err)
	assert.Equal(t, "gemini\n", out)

	_, err = execute(t, "config", "no_such_key")
	assert.Error(t, err)

	_, err = execute(t, "config", "api_key", "secret", "--keyring")
	require.NoError(t, err)
	stored, err := keyring.Get("jpc", "gemini")
	require.NoError(t, err)
	assert.Equal(t, "secret", stored)

	out, err = execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "backend = gemini")
}

func TestToolchainCommand(t *testing.T) {
	goRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(goRoot, "go.mod"), []byte("module x\n"), 0644))
	rustRoot := t.TempDir()

	tests := []struct {
		root     string
		what     string
		wantCmd  string
		wantArgs []string
	}{
		{goRoot, "build", "go", []string{"build", "./..."}},
		{goRoot, "test", "go", []string{"test", "./..."}},
		{rustRoot, "build", "cargo", []string{"build"}},
		{rustRoot, "test", "cargo", []string{"test"}},
		{goRoot, "make", "make", nil},
	}

	for _, tt := range tests {
		t.Run(tt.what+"@"+filepath.Base(tt.root), func(t *testing.T) {
			cmd, args := toolchainCommand(tt.root, tt.what)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRunProgram(t *testing.T) {
	setupProject(t)
	_, err := execute(t, "run", "true")
	require.NoError(t, err)

	_, err = execute(t, "run", "false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command 'false' failed with status exit status 1")
}
