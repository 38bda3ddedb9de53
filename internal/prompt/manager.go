// Package prompt loads versioned LLM call configurations from YAML template files.
package prompt

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// CallConfig holds the per-stage parameters of a single LLM call. Configs are
// resolved once at pipeline build time and are immutable afterward.
type CallConfig struct {
	SystemPrompt    string   `yaml:"system_prompt"`
	UserPrompt      string   `yaml:"user_prompt"`
	Temperature     *float64 `yaml:"temperature"`
	ReasoningEffort string   `yaml:"reasoning_effort"`
}

// Manager loads and renders call configurations from a prompts directory.
// Raw file contents are cached after the first read.
type Manager struct {
	dir string

	mu    sync.Mutex
	cache map[string]string
}

// NewManager creates a Manager rooted at the given prompts directory.
func NewManager(dir string) *Manager {
	slog.Debug("prompt.NewManager: creating prompt manager", "dir", dir)
	return &Manager{dir: dir, cache: make(map[string]string)}
}

// GetCallConfig loads <name>.yaml, substitutes {{key}} occurrences with the
// supplied variables, and parses the result. A missing or malformed file
// degrades to the zero config with an error log rather than failing the
// caller; the pipeline then runs with an empty system prompt.
func (m *Manager) GetCallConfig(name string, vars map[string]string) CallConfig {
	raw, err := m.loadFile(name)
	if err != nil {
		slog.Error("prompt.GetCallConfig: failed to load config file", "name", name, "error", err)
		return CallConfig{}
	}

	rendered := renderTemplate(raw, vars)

	var cfg CallConfig
	if err := yaml.Unmarshal([]byte(rendered), &cfg); err != nil {
		slog.Error("prompt.GetCallConfig: failed to parse config YAML", "name", name, "error", err)
		return CallConfig{}
	}
	return cfg
}

// loadFile reads a config file through the cache.
func (m *Manager) loadFile(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, ok := m.cache[name]; ok {
		return cached, nil
	}

	path := filepath.Join(m.dir, name+".yaml")
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	m.cache[name] = string(content)
	return string(content), nil
}

// renderTemplate substitutes {{key}} markers with variable values.
func renderTemplate(raw string, vars map[string]string) string {
	if len(vars) == 0 {
		return raw
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(raw)
}
