package validation

import (
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// processInputSchemaJSON is the JSON Schema for normalized BPMN process input.
// Embedded as a constant to avoid filesystem dependencies.
const processInputSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://vibe-bpmn.dev/schemas/process-input.json",
  "type": "object",
  "required": ["process"],
  "properties": {
    "collaboration": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "participants": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "processRef"],
            "properties": {
              "id": { "type": "string", "minLength": 1 },
              "name": { "type": "string" },
              "processRef": { "type": "string", "minLength": 1 }
            },
            "additionalProperties": false
          }
        }
      },
      "additionalProperties": false
    },
    "process": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "name": { "type": "string" },
        "nodes": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["type", "id"],
            "properties": {
              "type": { "type": "string", "minLength": 1 },
              "id": { "type": "string", "minLength": 1 },
              "name": { "type": "string" }
            },
            "additionalProperties": false
          }
        }
      },
      "additionalProperties": false
    },
    "flow": {
      "type": "object",
      "properties": {
        "flows": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "sourceRef", "targetRef"],
            "properties": {
              "id": { "type": "string", "minLength": 1 },
              "sourceRef": { "type": "string", "minLength": 1 },
              "targetRef": { "type": "string", "minLength": 1 },
              "name": { "type": "string" }
            },
            "additionalProperties": false
          }
        }
      },
      "additionalProperties": false
    },
    "layout": {
      "type": "object",
      "properties": {
        "positions": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["elementId", "bounds"],
            "properties": {
              "elementId": { "type": "string", "minLength": 1 },
              "bounds": {
                "type": "object",
                "required": ["x", "y", "width", "height"],
                "properties": {
                  "x": { "type": "number" },
                  "y": { "type": "number" },
                  "width": { "type": "number" },
                  "height": { "type": "number" }
                },
                "additionalProperties": false
              }
            },
            "additionalProperties": false
          }
        }
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

// InputValidator validates normalized JSON process input against the embedded
// schema. It is safe for concurrent use.
type InputValidator struct {
	schema *jsonschema.Schema
}

// NewInputValidator compiles the embedded process input schema.
func NewInputValidator() (*InputValidator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(processInputSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded process input schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("process-input.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add process input schema resource: %w", err)
	}
	schema, err := c.Compile("process-input.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile process input schema: %w", err)
	}

	return &InputValidator{schema: schema}, nil
}

// Validate checks a decoded JSON document against the process input schema.
// The document must be the result of decoding JSON into interface{} values.
func (v *InputValidator) Validate(doc any) error {
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("process input validation failed: %w", err)
	}
	return nil
}
