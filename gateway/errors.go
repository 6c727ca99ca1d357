/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/PivotLLM/ClickBridge/clickup"
	"github.com/PivotLLM/ClickBridge/global"
)

// Error is a classified failure rendered as the JSON error envelope
type Error struct {
	Status  int
	Kind    string
	Message string
	Details json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// errorBody is the wire form of Error
type errorBody struct {
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

func validationError(format string, args ...interface{}) *Error {
	return &Error{Status: http.StatusBadRequest, Kind: global.ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

// classify maps any handler error onto the error taxonomy
func classify(err error) *Error {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}

	if errors.Is(err, clickup.ErrMissingToken) {
		return &Error{Status: http.StatusBadRequest, Kind: global.ErrKindConfiguration, Message: err.Error()}
	}

	var apiErr *clickup.APIError
	if errors.As(err, &apiErr) {
		return &Error{Status: apiErr.StatusCode, Kind: global.ErrKindClickUpAPI, Message: apiErr.Error(), Details: apiErr.Body}
	}

	var netErr *clickup.NetworkError
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Status: http.StatusInternalServerError, Kind: global.ErrKindNetwork, Message: err.Error()}
	}

	return &Error{Status: http.StatusInternalServerError, Kind: global.ErrKindInternal, Message: err.Error()}
}

// writeJSON writes data with the given status
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError renders err as the error envelope and logs it
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)

	logger := loggerFrom(r.Context())
	if e.Status >= http.StatusInternalServerError {
		logger.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		logger.Warnf("%s %s rejected: %v", r.Method, r.URL.Path, err)
	}

	writeJSON(w, e.Status, errorBody{
		Error:     e.Kind,
		Message:   e.Message,
		Details:   e.Details,
		RequestID: requestIDFrom(r.Context()),
	})
}
