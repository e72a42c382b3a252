package cmdexec_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/advdv/lfcdk/cmd/lf/internal/cmdexec"
	"github.com/advdv/lfcdk/cmd/lf/internal/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Project:    config.Project{Version: "1", CDKDir: "infra"},
		ProjectDir: "/test/project",
	}

	if got := cmdexec.New(cfg).Dir(); got != "/test/project/infra" {
		t.Errorf("expected dir /test/project/infra, got %s", got)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	exec := cmdexec.NewWithDir(t.TempDir()).WithOutput(&stdout, &stderr)
	if err := exec.Run(context.Background(), "echo", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stdout.String() != "hello\n" {
		t.Errorf("expected 'hello\\n', got %q", stdout.String())
	}
}

func TestRunInCorrectDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var stdout bytes.Buffer
	if err := cmdexec.NewWithDir(dir).WithOutput(&stdout, nil).Run(context.Background(), "pwd"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Resolve symlinks for macOS /private/var -> /var
	expectedDir, _ := filepath.EvalSymlinks(dir)
	gotDir, _ := filepath.EvalSymlinks(strings.TrimSpace(stdout.String()))
	if gotDir != expectedDir {
		t.Errorf("expected dir %s, got %s", expectedDir, gotDir)
	}
}

func TestRunError(t *testing.T) {
	t.Parallel()

	err := cmdexec.NewWithDir(t.TempDir()).Run(context.Background(), "false")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "false failed") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestWithEnv(t *testing.T) {
	t.Parallel()

	base := cmdexec.NewWithDir(t.TempDir())

	var withEnv, without bytes.Buffer
	err := base.WithEnv("LFCDK_TEST_VAR", "value").WithOutput(&withEnv, nil).
		Run(context.Background(), "sh", "-c", "echo $LFCDK_TEST_VAR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(withEnv.String()); got != "value" {
		t.Errorf("expected 'value', got %q", got)
	}

	err = base.WithOutput(&without, nil).Run(context.Background(), "sh", "-c", "echo $LFCDK_TEST_VAR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(without.String()); got != "" {
		t.Errorf("original executor changed, got %q", got)
	}
}

func TestDryRun(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	exec := cmdexec.NewWithDir(t.TempDir()).
		WithOutput(&stdout, nil).
		WithEnv("AWS_PROFILE", "langfuse").
		WithDryRun()

	if err := exec.Mise(context.Background(), "cdk", "synth", "--all"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "AWS_PROFILE=langfuse mise exec -- cdk synth --all\n"
	if stdout.String() != want {
		t.Errorf("expected %q, got %q", want, stdout.String())
	}
}
