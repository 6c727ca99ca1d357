/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingToken is returned when no API credential is configured
var ErrMissingToken = errors.New("CLICKUP_API_TOKEN not set")

// APIError is a non-2xx response from ClickUp
type APIError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	var body struct {
		Err   string `json:"err"`
		ECode string `json:"ECODE"`
	}
	if json.Unmarshal(e.Body, &body) == nil && body.Err != "" {
		if body.ECode != "" {
			return fmt.Sprintf("clickup returned %d: %s (%s)", e.StatusCode, body.Err, body.ECode)
		}
		return fmt.Sprintf("clickup returned %d: %s", e.StatusCode, body.Err)
	}
	return fmt.Sprintf("clickup returned %d", e.StatusCode)
}

// NetworkError means ClickUp could not be reached or answered with
// something that is not JSON
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
