package core

import (
	"fmt"
	"slices"
	"strings"

	"cliup/internal/core/backend"
)

// ToolSpec describes one installable CLI tool: what to call it, which
// package candidates to try in order, which command names it answers to,
// and which backend installs it.
type ToolSpec struct {
	Key          string       // stable identifier used on the command line
	Label        string       // human-readable name
	Help         string       // one-paragraph description for `info`
	Packages     []string     // package candidates, preferred first
	Commands     []string     // command-name candidates, preferred first
	ShortcutName string       // desktop shortcut label; empty = no shortcut
	Backend      backend.Kind // install mechanism
	Optional     bool         // failures skip instead of aborting the run
}

// builtinCatalog is the product set, in install order. Optional entries
// are newer or less established tools whose registries come and go.
var builtinCatalog = []ToolSpec{
	{
		Key:          "claude",
		Label:        "Claude Code",
		Help:         "Anthropic's agentic coding tool. Runs `claude` in a terminal.",
		Packages:     []string{"@anthropic-ai/claude-code"},
		Commands:     []string{"claude"},
		ShortcutName: "Claude Code",
		Backend:      backend.KindNpm,
	},
	{
		Key:          "codex",
		Label:        "Codex CLI",
		Help:         "OpenAI's coding agent for the terminal.",
		Packages:     []string{"@openai/codex"},
		Commands:     []string{"codex"},
		ShortcutName: "Codex CLI",
		Backend:      backend.KindNpm,
	},
	{
		Key:          "gemini",
		Label:        "Gemini CLI",
		Help:         "Google's Gemini agent for the terminal.",
		Packages:     []string{"@google/gemini-cli"},
		Commands:     []string{"gemini"},
		ShortcutName: "Gemini CLI",
		Backend:      backend.KindNpm,
	},
	{
		Key:      "grok",
		Label:    "Grok CLI",
		Help:     "Community CLI for xAI's Grok models.",
		Packages: []string{"@vibe-kit/grok-cli"},
		Commands: []string{"grok", "grok-cli"},
		Backend:  backend.KindNpm,
		Optional: true,
	},
	{
		Key:          "qwen",
		Label:        "Qwen Code",
		Help:         "Alibaba's Qwen coding agent.",
		Packages:     []string{"@qwen-code/qwen-code", "qwen-code"},
		Commands:     []string{"qwen", "qwen-code"},
		ShortcutName: "Qwen Code",
		Backend:      backend.KindNpm,
	},
	{
		Key:      "mistral",
		Label:    "Mistral Vibe",
		Help:     "Mistral's vibe coding CLI, distributed on PyPI.",
		Packages: []string{"mistral-vibe"},
		Commands: []string{"vibe", "mistral-vibe"},
		Backend:  backend.KindPython,
		Optional: true,
	},
	{
		Key:          "ollama",
		Label:        "Ollama",
		Help:         "Local model runtime, installed through the vendor channel.",
		Packages:     []string{"Ollama.Ollama"},
		Commands:     []string{"ollama"},
		ShortcutName: "Ollama",
		Backend:      backend.KindVendor,
	},
	{
		Key:          "copilot",
		Label:        "GitHub Copilot CLI",
		Help:         "GitHub Copilot for the command line.",
		Packages:     []string{"@github/copilot", "@githubnext/github-copilot-cli"},
		Commands:     []string{"copilot", "github-copilot-cli", "github-copilot"},
		ShortcutName: "GitHub Copilot CLI",
		Backend:      backend.KindNpm,
	},
	{
		Key:      "openclaw",
		Label:    "OpenClaw",
		Help:     "Open-source personal AI assistant.",
		Packages: []string{"openclaw"},
		Commands: []string{"openclaw"},
		Backend:  backend.KindNpm,
		Optional: true,
	},
	{
		Key:      "ironclaw",
		Label:    "IronClaw",
		Help:     "Community fork of OpenClaw.",
		Packages: []string{"ironclaw"},
		Commands: []string{"ironclaw"},
		Backend:  backend.KindNpm,
		Optional: true,
	},
}

// BuiltinCatalog returns a copy of the built-in tool set.
func BuiltinCatalog() []ToolSpec {
	return slices.Clone(builtinCatalog)
}

// LookupTool finds a tool by key in the given catalog. Keys match
// case-insensitively so `info Claude` resolves the same tool as
// `install claude`.
func LookupTool(catalog []ToolSpec, key string) (ToolSpec, bool) {
	for _, spec := range catalog {
		if strings.EqualFold(spec.Key, key) {
			return spec, true
		}
	}
	return ToolSpec{}, false
}

// SelectTools resolves user-supplied keys against the catalog, preserving
// the order the keys were given and dropping duplicates. No keys, or the
// single key "all", selects the whole catalog in its own order.
func SelectTools(catalog []ToolSpec, keys []string) ([]ToolSpec, error) {
	if len(keys) == 0 || (len(keys) == 1 && keys[0] == "all") {
		return slices.Clone(catalog), nil
	}
	var selected []ToolSpec
	seen := make(map[string]bool)
	for _, key := range keys {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" || seen[key] {
			continue
		}
		spec, ok := LookupTool(catalog, key)
		if !ok {
			return nil, fmt.Errorf("unknown tool %q (run `cliup catalog` for the list)", key)
		}
		seen[key] = true
		selected = append(selected, spec)
	}
	return selected, nil
}
