// Where: internal/config/presets_test.go
// What: Tests for prompt preset loading and validation.
// Why: Ensure prompts.yaml is schema-checked and builtins cover the missing-file case.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePresetsFixture(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadPresetsMissingFileReturnsBuiltins(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "prompts.yaml"))
	if err != nil {
		t.Fatalf("load presets: %v", err)
	}
	if presets.Default != "general" {
		t.Fatalf("unexpected default preset: %q", presets.Default)
	}
	if _, ok := presets.Find("general"); !ok {
		t.Fatal("builtin preset general should exist")
	}
	if _, ok := presets.Find("ocr"); !ok {
		t.Fatal("builtin preset ocr should exist")
	}
}

func TestLoadPresetsValidFile(t *testing.T) {
	path := writePresetsFixture(t, `
version: 1
default: receipts
presets:
  - name: receipts
    system: You are an accountant.
    prompt: List every line item and the total.
  - name: plain
    prompt: Describe this image.
`)

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("load presets: %v", err)
	}
	preset, ok := presets.Find("")
	if !ok {
		t.Fatal("default preset should resolve")
	}
	if preset.Name != "receipts" {
		t.Fatalf("unexpected default preset: %q", preset.Name)
	}
	if got := presets.Names(); len(got) != 2 || got[0] != "receipts" || got[1] != "plain" {
		t.Fatalf("unexpected names: %v", got)
	}
}

func TestLoadPresetsRejectsSchemaViolation(t *testing.T) {
	path := writePresetsFixture(t, `
version: 2
presets:
  - name: general
`)

	if _, err := LoadPresets(path); err == nil {
		t.Fatal("expected schema validation error for version 2")
	}
}

func TestLoadPresetsRejectsMissingName(t *testing.T) {
	path := writePresetsFixture(t, `
version: 1
presets:
  - prompt: Describe this image.
`)

	if _, err := LoadPresets(path); err == nil {
		t.Fatal("expected schema validation error for preset without name")
	}
}

func TestLoadPresetsRejectsUnknownDefault(t *testing.T) {
	path := writePresetsFixture(t, `
version: 1
default: missing
presets:
  - name: general
`)

	_, err := LoadPresets(path)
	if err == nil {
		t.Fatal("expected error for unknown default preset")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Fatalf("error should name the unknown preset: %v", err)
	}
}

func TestLoadPresetsRejectsDuplicateNames(t *testing.T) {
	path := writePresetsFixture(t, `
version: 1
presets:
  - name: general
  - name: general
`)

	if _, err := LoadPresets(path); err == nil {
		t.Fatal("expected error for duplicate preset names")
	}
}

func TestFindUnknownPreset(t *testing.T) {
	presets := BuiltinPresets()
	if _, ok := presets.Find("nope"); ok {
		t.Fatal("unknown preset should not resolve")
	}
}
