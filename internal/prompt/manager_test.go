package prompt

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}
}

func TestManager_GetCallConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "xml_generation", `
system_prompt: "Generate BPMN XML."
temperature: 0.2
reasoning_effort: medium
`)

	m := NewManager(dir)
	cfg := m.GetCallConfig("xml_generation", nil)
	if cfg.SystemPrompt != "Generate BPMN XML." {
		t.Errorf("system prompt = %q", cfg.SystemPrompt)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", cfg.Temperature)
	}
	if cfg.ReasoningEffort != "medium" {
		t.Errorf("reasoning effort = %q, want medium", cfg.ReasoningEffort)
	}
}

func TestManager_VariableSubstitution(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "greeting", `system_prompt: "You help {{audience}} model processes."`)

	m := NewManager(dir)
	cfg := m.GetCallConfig("greeting", map[string]string{"audience": "analysts"})
	if cfg.SystemPrompt != "You help analysts model processes." {
		t.Errorf("substitution failed: %q", cfg.SystemPrompt)
	}
}

func TestManager_MissingFileDegradesToZeroConfig(t *testing.T) {
	m := NewManager(t.TempDir())
	cfg := m.GetCallConfig("does_not_exist", nil)
	if cfg.SystemPrompt != "" || cfg.Temperature != nil || cfg.ReasoningEffort != "" {
		t.Errorf("expected zero config for missing file, got %+v", cfg)
	}
}

func TestManager_MalformedYAMLDegradesToZeroConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "broken", "system_prompt: [unterminated")

	m := NewManager(dir)
	cfg := m.GetCallConfig("broken", nil)
	if cfg.SystemPrompt != "" {
		t.Errorf("expected zero config for malformed YAML, got %+v", cfg)
	}
}

func TestSchemaManager_GetSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "process_input.json")
	if err := os.WriteFile(path, []byte(`{"type": "object", "required": ["process"]}`), 0o644); err != nil {
		t.Fatalf("failed to write schema fixture: %v", err)
	}

	sm := NewSchemaManager(dir)
	schema, err := sm.GetSchema("process_input")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema["type"] != "object" {
		t.Errorf("schema content mismatch: %+v", schema)
	}

	if _, err := sm.GetSchema("missing"); err == nil {
		t.Error("expected error for missing schema file")
	}
}
