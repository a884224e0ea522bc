package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, Dir), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(nested)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("Find() = %q, want %q", got, want)
	}
	if Root(nested) != want {
		t.Errorf("Root() = %q, want %q", Root(nested), want)
	}
}

func TestRootFallsBackToCwd(t *testing.T) {
	dir := t.TempDir()
	if _, err := Find(dir); err == nil {
		t.Skip("a .jpc directory exists above the temp dir")
	}
	if got := Root(dir); got != dir {
		t.Errorf("Root() = %q, want %q", got, dir)
	}
}

func TestBackupsDirCreated(t *testing.T) {
	root := t.TempDir()

	dir, err := BackupsDir(root)
	if err != nil {
		t.Fatalf("BackupsDir() error = %v", err)
	}
	if dir != filepath.Join(root, ".jpc", "backups") {
		t.Errorf("BackupsDir() = %q", dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("backups dir not created: %v", err)
	}

	// Second call is a no-op.
	if _, err := BackupsDir(root); err != nil {
		t.Errorf("second BackupsDir() error = %v", err)
	}
}
