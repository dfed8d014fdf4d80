package service

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestCollectMatchesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "")
	writeFile(t, dir, "b.js", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, "README.md", "")

	walker := NewFileWalker([]string{"*.py", "*.js"}, nil, false)
	files, err := walker.Collect(dir)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	got := basenames(files)
	want := []string{"a.py", "b.js"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Collect = %v, want %v", got, want)
	}
}

func TestCollectSortedOutput(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.py", "a.py", "m.py", "sub/q.py"} {
		writeFile(t, dir, name, "")
	}

	walker := NewFileWalker([]string{"*.py"}, nil, false)
	files, err := walker.Collect(dir)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !sort.StringsAreSorted(files) {
		t.Errorf("Collect output not sorted: %v", files)
	}
	if len(files) != 4 {
		t.Errorf("Collect found %d files, want 4", len(files))
	}
}

func TestCollectExcludesDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "")
	writeFile(t, dir, filepath.Join("venv", "lib.py"), "")
	writeFile(t, dir, filepath.Join("src", "__pycache__", "cached.py"), "")
	writeFile(t, dir, filepath.Join("src", "ok.py"), "")

	walker := NewFileWalker([]string{"*.py"}, []string{"venv", "__pycache__"}, false)
	files, err := walker.Collect(dir)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	got := basenames(files)
	if len(got) != 2 {
		t.Fatalf("Collect = %v, want app.py and ok.py only", got)
	}
}

func TestCollectExplicitFileBypassesIncludes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "script.txt", "")

	walker := NewFileWalker([]string{"*.py"}, nil, false)
	files, err := walker.Collect(path)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Errorf("explicit file path should be returned as-is, got %v", files)
	}
}

func TestCollectMissingRoot(t *testing.T) {
	walker := NewFileWalker([]string{"*.py"}, nil, false)
	if _, err := walker.Collect("/no/such/dir"); err == nil {
		t.Fatal("missing root should be a fatal error")
	}
}

func TestCollectRespectsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\nsecret.py\n")
	writeFile(t, dir, "keep.py", "")
	writeFile(t, dir, "secret.py", "")
	writeFile(t, dir, filepath.Join("generated", "gen.py"), "")

	walker := NewFileWalker([]string{"*.py"}, nil, true)
	files, err := walker.Collect(dir)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	got := basenames(files)
	if len(got) != 1 || got[0] != "keep.py" {
		t.Errorf("Collect = %v, want [keep.py]", got)
	}
}

func TestCollectGitignoreDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "secret.py\n")
	writeFile(t, dir, "keep.py", "")
	writeFile(t, dir, "secret.py", "")

	walker := NewFileWalker([]string{"*.py"}, nil, false)
	files, err := walker.Collect(dir)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Collect = %v, want both files when gitignore handling is off", basenames(files))
	}
}

func TestCollectUnreadableSubtreeIsNonFatal(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits are ignored when running as root")
	}
	dir := t.TempDir()
	writeFile(t, dir, "ok.py", "")
	locked := filepath.Join(dir, "locked")
	writeFile(t, dir, filepath.Join("locked", "hidden.py"), "")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	walker := NewFileWalker([]string{"*.py"}, nil, false)
	files, err := walker.Collect(dir)
	if err != nil {
		t.Fatalf("unreadable subtree should not abort the walk: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Collect = %v, want [ok.py]", basenames(files))
	}
}
