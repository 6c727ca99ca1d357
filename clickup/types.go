/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// User is the authenticated ClickUp user
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// userResponse wraps the user object returned by GET /user
type userResponse struct {
	User User `json:"user"`
}

// TaskStatus is the nested status object on a task
type TaskStatus struct {
	Status string `json:"status"`
}

// Assignee is a user assigned to a task
type Assignee struct {
	ID int64 `json:"id"`
}

// Task is the subset of the ClickUp task object the gateway consumes
type Task struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      TaskStatus      `json:"status"`
	URL         string          `json:"url"`
	DueDate     json.RawMessage `json:"due_date"` // Unix milliseconds as a string or number, or null
	Assignees   []Assignee      `json:"assignees"`
}

// DueDateMillis returns the due date as Unix milliseconds, or nil when the
// task has none or the upstream value is not numeric
func (t *Task) DueDateMillis() *int64 {
	raw := bytes.TrimSpace(t.DueDate)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
	} else {
		s = string(raw)
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &ms
}

// AssigneeIDs returns the ids of all assignees, never nil
func (t *Task) AssigneeIDs() []int64 {
	ids := make([]int64, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		ids = append(ids, a.ID)
	}
	return ids
}

// taskListResponse wraps GET /list/{id}/task
type taskListResponse struct {
	Tasks []Task `json:"tasks"`
}

// CreateTaskRequest is the payload for POST /list/{id}/task.
// Assignees and CustomFields are forwarded verbatim.
type CreateTaskRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Status       string          `json:"status,omitempty"`
	Priority     *int            `json:"priority,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	DueDate      *int64          `json:"due_date,omitempty"`
	Assignees    json.RawMessage `json:"assignees,omitempty"`
	CustomFields json.RawMessage `json:"custom_fields,omitempty"`
}

// ListQuery holds the filters for GET /list/{id}/task
type ListQuery struct {
	Statuses []string
	Page     *int
	Limit    *int
}

// UpdateTaskRequest is a partial update payload for PUT /task/{id}.
// Only the keys present are sent, so absent fields keep their upstream values.
type UpdateTaskRequest map[string]json.RawMessage
