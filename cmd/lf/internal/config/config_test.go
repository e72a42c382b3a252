package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/advdv/lfcdk/cmd/lf/internal/config"
)

func writeProject(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoader(t *testing.T) {
	t.Parallel()

	t.Run("loads valid project", func(t *testing.T) {
		t.Parallel()
		path := writeProject(t, t.TempDir(),
			"version: \"1\"\ncdkDir: infra\nprofile: langfuse\nrestrictedEnvironments: [prod]\n")

		proj, err := config.NewLoader().Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if proj.CDKDir != "infra" {
			t.Errorf("expected cdkDir 'infra', got %q", proj.CDKDir)
		}
		if proj.Profile != "langfuse" {
			t.Errorf("expected profile 'langfuse', got %q", proj.Profile)
		}
		if !proj.IsRestricted("prod") || proj.IsRestricted("dev") {
			t.Errorf("unexpected restricted environments %v", proj.RestrictedEnvironments)
		}
	})

	t.Run("defaults cdkDir", func(t *testing.T) {
		t.Parallel()
		path := writeProject(t, t.TempDir(), "version: \"1\"\n")

		proj, err := config.NewLoader().Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if proj.CDKDir != "." {
			t.Errorf("expected cdkDir '.', got %q", proj.CDKDir)
		}
	})

	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "invalid: yaml: content:"},
		{"invalid version", "version: \"2\"\n"},
		{"missing version", "{}\n"},
		{"missing version with other fields", "cdkDir: infra\nprofile: langfuse\n"},
		{"unknown field", "version: \"1\"\nunknown_field: value\n"},
		{"empty restricted name", "version: \"1\"\nrestrictedEnvironments: [\"\"]\n"},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeProject(t, t.TempDir(), tt.content)

			if _, err := config.NewLoader().Load(path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestFinder(t *testing.T) {
	t.Parallel()

	t.Run("finds project in current directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeProject(t, dir, "version: \"1\"\n")

		_, projectDir, err := config.NewFinder(config.NewLoader()).Find(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if projectDir != dir {
			t.Errorf("expected projectDir %q, got %q", dir, projectDir)
		}
	})

	t.Run("finds project in parent directory", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		subDir := filepath.Join(root, "sub", "deep")
		if err := os.MkdirAll(subDir, 0o755); err != nil {
			t.Fatal(err)
		}
		writeProject(t, root, "version: \"1\"\n")

		_, projectDir, err := config.NewFinder(config.NewLoader()).Find(subDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if projectDir != root {
			t.Errorf("expected projectDir %q, got %q", root, projectDir)
		}
	})

	t.Run("returns error when not found", func(t *testing.T) {
		t.Parallel()

		_, _, err := config.NewFinder(config.NewLoader()).Find(t.TempDir())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("returns load error", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeProject(t, dir, "version: \"9\"\n")

		_, _, err := config.NewFinder(config.NewLoader()).Find(dir)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
