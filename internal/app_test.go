package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewAppWiresServices(t *testing.T) {
	dir := t.TempDir()

	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer func() { _ = app.Shutdown(context.Background()) }()

	if app.Config == nil {
		t.Fatal("config not loaded")
	}
	if app.Client == nil || app.Store == nil {
		t.Fatal("storage layer not wired")
	}
	if app.Writer == nil {
		t.Fatal("debounced writer not wired")
	}
	if app.EventLog == nil {
		t.Fatal("event log not wired")
	}
	if app.MetricsCalc == nil {
		t.Fatal("metrics calculator not wired")
	}

	// The event log is created relative to the base path.
	if _, err := os.Stat(filepath.Join(dir, "board-events.jsonl")); err != nil {
		t.Fatalf("event log file not created: %v", err)
	}
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	content := "store:\n  url: \"not a url\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".boardconfig"), []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := NewApp(dir); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}

func TestResolveBasePathEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BBOARD_HOME", dir)

	if got := ResolveBasePath(); got != dir {
		t.Fatalf("ResolveBasePath = %q, want %q", got, dir)
	}
}

func TestResolveBasePathWalksUp(t *testing.T) {
	t.Setenv("BBOARD_HOME", "")

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".boardconfig"), []byte("store:\n  url: http://localhost:8787\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("creating nested dir: %v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	got := ResolveBasePath()
	// Temp dirs may resolve through symlinks; compare resolved paths.
	wantResolved, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != wantResolved {
		t.Fatalf("ResolveBasePath = %q, want %q", got, root)
	}
}
