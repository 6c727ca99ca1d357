/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PivotLLM/ClickBridge/global"
)

// gatewayClient calls the ClickBridge gateway on behalf of tools
type gatewayClient struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

func newGatewayClient(baseURL, secret string, timeout time.Duration) *gatewayClient {
	return &gatewayClient{
		baseURL:    baseURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// gatewayError is the gateway's error envelope
type gatewayError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// call sends one request to the gateway and decodes the response into out.
// path may carry a query string.
func (c *gatewayClient) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(global.HeaderSharedSecret, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call worker: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read worker response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope gatewayError
		if json.Unmarshal(data, &envelope) != nil || envelope.Error == "" {
			return fmt.Errorf("worker API error: %s", http.StatusText(resp.StatusCode))
		}
		if envelope.Message != "" {
			return fmt.Errorf("worker API error: %s (%s)", envelope.Error, envelope.Message)
		}
		return fmt.Errorf("worker API error: %s", envelope.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode worker response: %w", err)
	}
	return nil
}
