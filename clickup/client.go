/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package clickup is a small client for the ClickUp REST API v2.
// Each method performs exactly one HTTP call.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PivotLLM/ClickBridge/logging"
)

// Client calls the ClickUp API with a fixed credential
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	logger     *logging.Logger
}

// Option is a functional option for configuring Client
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every upstream call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client. token must already be normalized (no "Bearer " prefix);
// ClickUp personal tokens are sent as the raw Authorization value.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasToken reports whether a credential is configured
func (c *Client) HasToken() bool {
	return c.token != ""
}

// CurrentUser returns the user the credential belongs to
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, "/user", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// CreateTask creates a task in the given list
func (c *Client) CreateTask(ctx context.Context, listID string, req *CreateTaskRequest) (*Task, error) {
	var task Task
	path := "/list/" + url.PathEscape(listID) + "/task"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns one page of tasks from the given list
func (c *Client) ListTasks(ctx context.Context, listID string, q ListQuery) ([]Task, error) {
	params := url.Values{}
	for _, s := range q.Statuses {
		params.Add("statuses[]", s)
	}
	if q.Page != nil {
		params.Set("page", strconv.Itoa(*q.Page))
	}
	if q.Limit != nil {
		params.Set("limit", strconv.Itoa(*q.Limit))
	}

	var resp taskListResponse
	path := "/list/" + url.PathEscape(listID) + "/task"
	if err := c.do(ctx, http.MethodGet, path, params, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		resp.Tasks = []Task{}
	}
	return resp.Tasks, nil
}

// UpdateTask applies a partial update to a task
func (c *Client) UpdateTask(ctx context.Context, taskID string, req UpdateTaskRequest) (*Task, error) {
	if req == nil {
		req = UpdateTaskRequest{}
	}
	var task Task
	if err := c.do(ctx, http.MethodPut, "/task/"+url.PathEscape(taskID), nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/task/"+url.PathEscape(taskID), nil, nil, nil)
}

// do performs one request. out may be nil when the response body is not needed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if c.token == "" {
		return ErrMissingToken
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "read " + path, Err: err}
	}
	c.logger.Debugf("clickup %s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(started).Round(time.Millisecond))

	trimmed := bytes.TrimSpace(data)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(trimmed) == 0 {
			return &APIError{StatusCode: resp.StatusCode, Body: json.RawMessage("null")}
		}
		if !json.Valid(trimmed) {
			return &NetworkError{Op: "decode " + path, Err: fmt.Errorf("status %d with non-JSON body", resp.StatusCode)}
		}
		return &APIError{StatusCode: resp.StatusCode, Body: json.RawMessage(trimmed)}
	}

	if out == nil {
		return nil
	}
	if len(trimmed) == 0 {
		return &NetworkError{Op: "decode " + path, Err: fmt.Errorf("empty response body")}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return &NetworkError{Op: "decode " + path, Err: err}
	}
	return nil
}
