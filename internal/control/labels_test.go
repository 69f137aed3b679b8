package control

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLabelsFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "control.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write control.yaml: %v", err)
	}
	return path
}

func TestLoadLabelsPopulatesTable(t *testing.T) {
	path := writeLabelsFile(t, `
version: 1
streams:
  cam1:
    label: "Loading Dock"
  cam2:
    label: "Front Gate"
`)

	if err := LoadLabels(path); err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}

	if got := Label("cam1"); got != "Loading Dock" {
		t.Errorf("expected 'Loading Dock', got %q", got)
	}
	if got := Label("cam2"); got != "Front Gate" {
		t.Errorf("expected 'Front Gate', got %q", got)
	}
}

func TestLabelReturnsEmptyForUnknownStream(t *testing.T) {
	path := writeLabelsFile(t, "version: 1\nstreams: {}\n")
	if err := LoadLabels(path); err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}
	if got := Label("unknown"); got != "" {
		t.Errorf("expected empty label for unknown stream, got %q", got)
	}
}

func TestLoadLabelsRejectsUnsupportedVersion(t *testing.T) {
	path := writeLabelsFile(t, "version: 2\nstreams: {}\n")
	if err := LoadLabels(path); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestLoadLabelsRejectsMissingFile(t *testing.T) {
	if err := LoadLabels(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
