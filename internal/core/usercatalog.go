package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"cliup/internal/core/backend"
)

const userCatalogFile = "catalog.jsonc"

// userCatalogDoc is the JWCC document shape of catalog.jsonc in the
// state dir. Comments and trailing commas are allowed.
type userCatalogDoc struct {
	Tools []userToolEntry `json:"tools"`
}

type userToolEntry struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Help     string   `json:"help"`
	Packages []string `json:"packages"`
	Commands []string `json:"commands"`
	Shortcut string   `json:"shortcut"`
	Optional bool     `json:"optional"`
}

// LoadUserCatalog reads user-declared tools from catalog.jsonc. User
// tools are always npm-backed and may not shadow built-in keys. A missing
// file yields an empty list.
func LoadUserCatalog(stateDir string) ([]ToolSpec, error) {
	data, err := os.ReadFile(filepath.Join(stateDir, userCatalogFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading user catalog: %w", err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", userCatalogFile, err)
	}
	var doc userCatalogDoc
	if err := json.Unmarshal(std, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", userCatalogFile, err)
	}

	var specs []ToolSpec
	for i, entry := range doc.Tools {
		spec, err := entry.toSpec()
		if err != nil {
			return nil, fmt.Errorf("%s: tools[%d]: %w", userCatalogFile, i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (e userToolEntry) toSpec() (ToolSpec, error) {
	// Keys are stored lower-cased so catalog listings and install/info
	// lookups agree regardless of how the entry was written.
	key := strings.ToLower(strings.TrimSpace(e.Key))
	if key == "" {
		return ToolSpec{}, fmt.Errorf("missing key")
	}
	if _, exists := LookupTool(builtinCatalog, key); exists {
		return ToolSpec{}, fmt.Errorf("key %q shadows a built-in tool", key)
	}
	if len(e.Packages) == 0 {
		return ToolSpec{}, fmt.Errorf("tool %q declares no packages", key)
	}
	if len(e.Commands) == 0 {
		return ToolSpec{}, fmt.Errorf("tool %q declares no commands", key)
	}
	label := e.Label
	if label == "" {
		label = key
	}
	return ToolSpec{
		Key:          key,
		Label:        label,
		Help:         e.Help,
		Packages:     e.Packages,
		Commands:     e.Commands,
		ShortcutName: e.Shortcut,
		Backend:      backend.KindNpm,
		Optional:     e.Optional,
	}, nil
}

// FullCatalog returns the built-in catalog followed by any user-declared
// tools from the state dir.
func FullCatalog(stateDir string) ([]ToolSpec, error) {
	user, err := LoadUserCatalog(stateDir)
	if err != nil {
		return nil, err
	}
	return append(BuiltinCatalog(), user...), nil
}
