package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SchemaManager loads JSON schemas used for structured-output generation.
// Parsed schemas are cached after the first read.
type SchemaManager struct {
	dir string

	mu    sync.Mutex
	cache map[string]map[string]any
}

// NewSchemaManager creates a SchemaManager rooted at the given schema directory.
func NewSchemaManager(dir string) *SchemaManager {
	return &SchemaManager{dir: dir, cache: make(map[string]map[string]any)}
}

// GetSchema loads <name>.json and returns it as a generic map suitable for
// passing to the generation client as a response format constraint.
func (sm *SchemaManager) GetSchema(name string) (map[string]any, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if cached, ok := sm.cache[name]; ok {
		return cached, nil
	}

	path := filepath.Join(sm.dir, name+".json")
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	var schema map[string]any
	if err := json.Unmarshal(content, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}

	sm.cache[name] = schema
	return schema, nil
}
