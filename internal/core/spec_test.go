package core

import (
	"strings"
	"testing"

	"cliup/internal/core/backend"
)

func TestBuiltinCatalogShape(t *testing.T) {
	seen := make(map[string]bool)
	for _, spec := range builtinCatalog {
		if spec.Key == "" || spec.Label == "" {
			t.Errorf("catalog entry missing key or label: %+v", spec)
		}
		if seen[spec.Key] {
			t.Errorf("duplicate key %q", spec.Key)
		}
		seen[spec.Key] = true
		if len(spec.Packages) == 0 {
			t.Errorf("%s: no package candidates", spec.Key)
		}
		if len(spec.Commands) == 0 {
			t.Errorf("%s: no command candidates", spec.Key)
		}
		switch spec.Backend {
		case backend.KindNpm, backend.KindPython, backend.KindVendor:
		default:
			t.Errorf("%s: unknown backend %q", spec.Key, spec.Backend)
		}
	}
	for _, key := range []string{"claude", "codex", "gemini", "qwen", "ollama", "copilot"} {
		if !seen[key] {
			t.Errorf("catalog missing %q", key)
		}
	}
}

func TestSelectToolsAll(t *testing.T) {
	catalog := BuiltinCatalog()
	got, err := SelectTools(catalog, []string{"all"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(catalog) {
		t.Fatalf("got %d tools, want %d", len(got), len(catalog))
	}
	got, err = SelectTools(catalog, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(catalog) {
		t.Fatalf("no keys: got %d tools, want %d", len(got), len(catalog))
	}
}

func TestSelectToolsPreservesRequestOrder(t *testing.T) {
	got, err := SelectTools(BuiltinCatalog(), []string{"gemini", "claude", "gemini"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Key != "gemini" || got[1].Key != "claude" {
		keys := make([]string, len(got))
		for i, s := range got {
			keys[i] = s.Key
		}
		t.Fatalf("selected = %v, want [gemini claude]", strings.Join(keys, ","))
	}
}

func TestLookupToolIgnoresKeyCase(t *testing.T) {
	spec, ok := LookupTool(BuiltinCatalog(), "Claude")
	if !ok || spec.Key != "claude" {
		t.Fatalf("LookupTool(Claude) = %+v, %v; want the claude entry", spec, ok)
	}
}

func TestSelectToolsUnknownKey(t *testing.T) {
	_, err := SelectTools(BuiltinCatalog(), []string{"nonesuch"})
	if err == nil || !strings.Contains(err.Error(), "nonesuch") {
		t.Fatalf("err = %v, want unknown-tool error", err)
	}
}
