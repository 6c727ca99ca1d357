/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package templates provides JSON schema validation for request and tool
// arguments, and the text templates used for generated task descriptions.
package templates

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/PivotLLM/ClickBridge/logging"
)

// Validator validates JSON documents against schemas.
// Compiled schemas are cached by their source text; safe for concurrent use.
type Validator struct {
	logger      *logging.Logger
	mu          sync.Mutex
	schemaCache map[string]*gojsonschema.Schema
}

// ValidationResult represents the result of a validation
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors,omitempty"`     // User-friendly error messages
	RawErrors []string `json:"raw_errors,omitempty"` // Original error messages from validator
}

// Message joins the user-friendly errors into one line
func (r *ValidationResult) Message() string {
	return strings.Join(r.Errors, "; ")
}

// New creates a new Validator
func New(logger *logging.Logger) *Validator {
	return &Validator{
		logger:      logger,
		schemaCache: make(map[string]*gojsonschema.Schema),
	}
}

// ValidateJSON validates JSON data against a schema string
func (v *Validator) ValidateJSON(data []byte, schemaJSON string) (*ValidationResult, error) {
	schema, err := v.compile(schemaJSON)
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	validationResult := &ValidationResult{
		Valid: result.Valid(),
	}

	if !result.Valid() {
		for _, desc := range result.Errors() {
			rawError := desc.String()
			validationResult.RawErrors = append(validationResult.RawErrors, rawError)
			validationResult.Errors = append(validationResult.Errors, formatValidationError(rawError))
		}
		v.logger.Debugf("schema validation failed: %s", validationResult.Message())
	}

	return validationResult, nil
}

// ValidateValue marshals a Go value and validates it against schema.
// schema may be a JSON string or any value that marshals to a JSON schema.
func (v *Validator) ValidateValue(value interface{}, schema interface{}) (*ValidationResult, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	schemaJSON, ok := schema.(string)
	if !ok {
		raw, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema: %w", err)
		}
		schemaJSON = string(raw)
	}

	return v.ValidateJSON(data, schemaJSON)
}

func (v *Validator) compile(schemaJSON string) (*gojsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if schema, ok := v.schemaCache[schemaJSON]; ok {
		return schema, nil
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	v.schemaCache[schemaJSON] = schema
	return schema, nil
}

// formatValidationError converts technical validation errors to user-friendly messages
func formatValidationError(rawError string) string {
	// Common patterns from gojsonschema:
	// "(root): title is required" -> "Missing required field: title"
	// "(root): Additional property x is not allowed" -> "Unexpected field: x (not allowed by schema)"
	// "priority: Invalid type. Expected: integer, given: string" -> "Field 'priority': expected integer, got string"
	// "goals.0: id is required" -> "Missing required field: id (in goals.0)"

	if strings.Contains(rawError, "is required") {
		parts := strings.SplitN(rawError, ": ", 2)
		if len(parts) == 2 {
			fieldName := strings.TrimSuffix(parts[1], " is required")
			if parts[0] != "(root)" {
				return fmt.Sprintf("Missing required field: %s (in %s)", fieldName, strings.TrimPrefix(parts[0], "(root)."))
			}
			return fmt.Sprintf("Missing required field: %s", fieldName)
		}
	}

	if strings.Contains(rawError, "Additional property") {
		parts := strings.SplitN(rawError, "Additional property ", 2)
		if len(parts) == 2 {
			fieldPart := strings.TrimSuffix(parts[1], " is not allowed")
			return fmt.Sprintf("Unexpected field: %s (not allowed by schema)", fieldPart)
		}
	}

	if strings.Contains(rawError, "Invalid type") {
		parts := strings.SplitN(rawError, ": Invalid type. ", 2)
		if len(parts) == 2 {
			field := parts[0]
			if field == "(root)" {
				field = "root object"
			}
			typeInfo := strings.ReplaceAll(parts[1], "Expected: ", "expected ")
			typeInfo = strings.ReplaceAll(typeInfo, ", given: ", ", got ")
			return fmt.Sprintf("Field '%s': %s", field, typeInfo)
		}
	}

	if strings.Contains(rawError, "must be one of the following") {
		parts := strings.SplitN(rawError, ": ", 2)
		if len(parts) == 2 {
			return fmt.Sprintf("Field '%s': %s", parts[0], parts[1])
		}
	}

	if strings.HasPrefix(rawError, "(root): ") {
		return strings.TrimPrefix(rawError, "(root): ")
	}
	return strings.TrimPrefix(rawError, "(root).")
}

// GoalsSchema describes the body accepted when replacing learning goals
const GoalsSchema = `{
	"type": "object",
	"required": ["goals"],
	"properties": {
		"goals": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "title"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"title": {"type": "string", "minLength": 1},
					"description": {"type": "string"},
					"progress": {"type": "number", "minimum": 0},
					"targetDate": {"type": "string"}
				}
			}
		}
	}
}`
