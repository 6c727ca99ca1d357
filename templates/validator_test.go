/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package templates

import (
	"strings"
	"testing"
)

func TestValidateJSON(t *testing.T) {
	v := New(nil)

	schema := `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string"},
			"priority": {"type": "number", "enum": [1, 2, 3, 4]}
		}
	}`

	tests := []struct {
		name  string
		data  string
		valid bool
	}{
		{
			name:  "valid with required field",
			data:  `{"title": "T"}`,
			valid: true,
		},
		{
			name:  "valid with all fields",
			data:  `{"title": "T", "priority": 2}`,
			valid: true,
		},
		{
			name:  "invalid missing required field",
			data:  `{"priority": 2}`,
			valid: false,
		},
		{
			name:  "invalid wrong type",
			data:  `{"title": 123}`,
			valid: false,
		},
		{
			name:  "invalid enum value",
			data:  `{"title": "T", "priority": 9}`,
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateJSON([]byte(tt.data), schema)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Valid != tt.valid {
				t.Errorf("valid = %v, want %v; errors: %v", result.Valid, tt.valid, result.Errors)
			}
		})
	}
}

func TestValidateValueMissingRequired(t *testing.T) {
	v := New(nil)

	schema := map[string]interface{}{
		"type":     "object",
		"required": []string{"title"},
		"properties": map[string]interface{}{
			"title": map[string]interface{}{"type": "string"},
		},
	}

	result, err := v.ValidateValue(map[string]interface{}{"status": "to do"}, schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result")
	}
	if !strings.Contains(result.Message(), "Missing required field: title") {
		t.Errorf("Message() = %q", result.Message())
	}
}

func TestValidateGoalsSchema(t *testing.T) {
	v := New(nil)

	tests := []struct {
		name  string
		data  string
		valid bool
	}{
		{"valid goals", `{"goals":[{"id":"a","title":"A","progress":10}]}`, true},
		{"empty goals", `{"goals":[]}`, true},
		{"missing goals", `{}`, false},
		{"goal without id", `{"goals":[{"title":"A"}]}`, false},
		{"negative progress", `{"goals":[{"id":"a","title":"A","progress":-1}]}`, false},
		{"goals not array", `{"goals":"a"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateJSON([]byte(tt.data), GoalsSchema)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Valid != tt.valid {
				t.Errorf("valid = %v, want %v; errors: %v", result.Valid, tt.valid, result.Errors)
			}
		})
	}
}

func TestInvalidSchema(t *testing.T) {
	v := New(nil)
	if _, err := v.ValidateJSON([]byte(`{}`), `{"type": 12}`); err == nil {
		t.Error("expected error for invalid schema")
	}
}

func TestFormatValidationError(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"(root): title is required", "Missing required field: title"},
		{"goals.0: id is required", "Missing required field: id (in goals.0)"},
		{"(root): Additional property foo is not allowed", "Unexpected field: foo (not allowed by schema)"},
		{"priority: Invalid type. Expected: number, given: string", "Field 'priority': expected number, got string"},
		{"status: status must be one of the following: \"to do\", \"done\"", "Field 'status': status must be one of the following: \"to do\", \"done\""},
		{"(root): something else", "something else"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := formatValidationError(tt.raw); got != tt.want {
				t.Errorf("formatValidationError() = %q, want %q", got, tt.want)
			}
		})
	}
}
