/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PivotLLM/ClickBridge/global"
)

const maxBodyBytes = 1 << 20

// readBody returns the raw request body. An empty body is an error unless
// allowEmpty is set, in which case "{}" is returned.
func readBody(w http.ResponseWriter, r *http.Request, allowEmpty bool) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, validationError("failed to read request body: %v", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		if allowEmpty {
			return []byte("{}"), nil
		}
		return nil, validationError("request body is required")
	}
	return data, nil
}

// decodeBody reads and decodes a JSON object body into v
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, allowEmpty bool) error {
	data, err := readBody(w, r, allowEmpty)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return validationError("invalid JSON body: %v", err)
	}
	return nil
}

// isNull reports whether raw is absent or a JSON null
func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}

// parseDueDate converts a due date value into Unix milliseconds.
// Accepted forms are a number, a numeric string, YYYY-MM-DD (UTC midnight)
// and RFC 3339. Null and the empty string yield nil.
func parseDueDate(raw json.RawMessage) (*int64, error) {
	if isNull(raw) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, validationError("invalid due_date: %v", err)
	}

	switch v := value.(type) {
	case json.Number:
		return numberMillis(v.String())
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		if ms, err := numberMillis(s); err == nil {
			return ms, nil
		}
		if t, err := time.ParseInLocation(global.DateLayout, s, time.UTC); err == nil {
			ms := t.UnixMilli()
			return &ms, nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			ms := t.UnixMilli()
			return &ms, nil
		}
		return nil, validationError("invalid due_date %q: expected Unix milliseconds or YYYY-MM-DD", s)
	default:
		return nil, validationError("invalid due_date: expected a number or a date string")
	}
}

func numberMillis(s string) (*int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &ms, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, validationError("invalid due_date %q", s)
	}
	// milliseconds are whole numbers; 1.7e12 is fine, 1.5 is not
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return nil, validationError("invalid due_date %q: must be a whole number of milliseconds", s)
	}
	ms := int64(f)
	return &ms, nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, validationError("%s must be a non-negative integer", name)
	}
	return &n, nil
}

// splitStatuses splits a comma-separated status filter, dropping blanks
func splitStatuses(raw string) []string {
	var statuses []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

// stringField decodes a required, non-empty string field from a raw body
func stringField(body map[string]json.RawMessage, name string) (string, error) {
	raw, ok := body[name]
	if !ok || isNull(raw) {
		return "", validationError("%s is required", name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", validationError("%s must be a string", name)
	}
	if s = strings.TrimSpace(s); s == "" {
		return "", validationError("%s is required", name)
	}
	return s, nil
}
