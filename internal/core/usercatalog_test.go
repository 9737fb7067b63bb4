package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cliup/internal/core/backend"
)

func writeUserCatalog(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, userCatalogFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadUserCatalogMissingFile(t *testing.T) {
	specs, err := LoadUserCatalog(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if specs != nil {
		t.Fatalf("specs = %v, want nil", specs)
	}
}

func TestLoadUserCatalogParsesJWCC(t *testing.T) {
	dir := t.TempDir()
	writeUserCatalog(t, dir, `{
  // locally pinned extras
  "tools": [
    {
      "key": "aider",
      "label": "Aider",
      "packages": ["aider-install"],
      "commands": ["aider"],
    },
  ],
}`)
	specs, err := LoadUserCatalog(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 1 {
		t.Fatalf("got %d specs, want 1", len(specs))
	}
	spec := specs[0]
	if spec.Key != "aider" || spec.Label != "Aider" || spec.Backend != backend.KindNpm {
		t.Fatalf("spec = %+v", spec)
	}
}

func TestLoadUserCatalogRejectsBuiltinShadow(t *testing.T) {
	dir := t.TempDir()
	writeUserCatalog(t, dir, `{"tools": [{"key": "claude", "packages": ["x"], "commands": ["x"]}]}`)
	_, err := LoadUserCatalog(dir)
	if err == nil || !strings.Contains(err.Error(), "shadows") {
		t.Fatalf("err = %v, want shadow rejection", err)
	}
}

func TestLoadUserCatalogRejectsBuiltinShadowAnyCase(t *testing.T) {
	dir := t.TempDir()
	writeUserCatalog(t, dir, `{"tools": [{"key": "Claude", "packages": ["x"], "commands": ["x"]}]}`)
	_, err := LoadUserCatalog(dir)
	if err == nil || !strings.Contains(err.Error(), "shadows") {
		t.Fatalf("err = %v, want shadow rejection regardless of key case", err)
	}
}

func TestLoadUserCatalogNormalizesKeyCase(t *testing.T) {
	dir := t.TempDir()
	writeUserCatalog(t, dir, `{"tools": [{"key": "MyTool", "packages": ["mytool"], "commands": ["mytool"]}]}`)
	specs, err := LoadUserCatalog(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 1 || specs[0].Key != "mytool" {
		t.Fatalf("specs = %+v, want one entry keyed mytool", specs)
	}

	// A listed tool must also be selectable, however its key was written.
	catalog := append(BuiltinCatalog(), specs...)
	selected, err := SelectTools(catalog, []string{"MyTool"})
	if err != nil {
		t.Fatalf("SelectTools error: %v", err)
	}
	if len(selected) != 1 || selected[0].Key != "mytool" {
		t.Fatalf("selected = %+v, want the user tool", selected)
	}
}

func TestLoadUserCatalogRejectsIncompleteEntry(t *testing.T) {
	dir := t.TempDir()
	writeUserCatalog(t, dir, `{"tools": [{"key": "mytool", "commands": ["mytool"]}]}`)
	_, err := LoadUserCatalog(dir)
	if err == nil || !strings.Contains(err.Error(), "tools[0]") {
		t.Fatalf("err = %v, want a positional error", err)
	}
}

func TestFullCatalogAppendsUserTools(t *testing.T) {
	dir := t.TempDir()
	writeUserCatalog(t, dir, `{"tools": [{"key": "aider", "packages": ["aider-install"], "commands": ["aider"]}]}`)
	catalog, err := FullCatalog(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(catalog) != len(builtinCatalog)+1 {
		t.Fatalf("catalog size = %d, want %d", len(catalog), len(builtinCatalog)+1)
	}
	if _, ok := LookupTool(catalog, "aider"); !ok {
		t.Fatal("user tool not in full catalog")
	}
}
