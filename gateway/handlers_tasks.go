/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/PivotLLM/ClickBridge/clickup"
	"github.com/PivotLLM/ClickBridge/global"
)

// taskSummary is the response shape for a single created or updated task
type taskSummary struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
}

func summarize(task *clickup.Task, message string) taskSummary {
	return taskSummary{
		ID:      task.ID,
		URL:     task.URL,
		Status:  task.Status.Status,
		Title:   task.Name,
		Message: message,
	}
}

// listedTask is one entry of the list response
type listedTask struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Status    string  `json:"status"`
	DueDate   *int64  `json:"due_date"`
	Assignees []int64 `json:"assignees"`
	URL       string  `json:"url"`
}

type createTaskBody struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Status       string          `json:"status"`
	Priority     *int            `json:"priority"`
	Tags         []string        `json:"tags"`
	DueDate      json.RawMessage `json:"due_date"`
	Assignees    json.RawMessage `json:"assignees"`
	CustomFields json.RawMessage `json:"custom_fields"`
	ListID       string          `json:"list_id"`
}

// updateRenames maps request keys onto upstream keys. Keys not listed here
// are not forwarded.
var updateRenames = map[string]string{
	"title":         "name",
	"description":   "description",
	"status":        "status",
	"due_date":      "due_date",
	"assignees":     "assignees",
	"priority":      "priority",
	"tags":          "tags",
	"custom_fields": "custom_fields",
}

func (g *Gateway) handleMe(w http.ResponseWriter, r *http.Request) error {
	user, err := g.client.CurrentUser(r.Context())
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, user)
	return nil
}

func (g *Gateway) handleCreateTask(w http.ResponseWriter, r *http.Request) error {
	var body createTaskBody
	if err := decodeBody(w, r, &body, false); err != nil {
		return err
	}

	listID, err := g.resolveListID(body.ListID)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(body.Title)
	if title == "" {
		return validationError("title is required")
	}

	if body.Priority != nil && (*body.Priority < global.PriorityUrgent || *body.Priority > global.PriorityLow) {
		return validationError("priority must be between %d and %d", global.PriorityUrgent, global.PriorityLow)
	}

	dueDate, err := parseDueDate(body.DueDate)
	if err != nil {
		return err
	}

	req := &clickup.CreateTaskRequest{
		Name:        title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		Tags:        body.Tags,
		DueDate:     dueDate,
	}
	if !isNull(body.Assignees) {
		req.Assignees = body.Assignees
	}
	if !isNull(body.CustomFields) {
		req.CustomFields = body.CustomFields
	}

	task, err := g.client.CreateTask(r.Context(), listID, req)
	if err != nil {
		return err
	}

	loggerFrom(r.Context()).Infof("created task %s in list %s", task.ID, listID)
	writeJSON(w, http.StatusOK, summarize(task, ""))
	return nil
}

func (g *Gateway) handleListTasks(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()

	listID, err := g.resolveListID(query.Get("list_id"))
	if err != nil {
		return err
	}

	page, err := queryInt(r, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}

	tasks, err := g.client.ListTasks(r.Context(), listID, clickup.ListQuery{
		Statuses: splitStatuses(query.Get("statuses")),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	out := make([]listedTask, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		out = append(out, listedTask{
			ID:        t.ID,
			Title:     t.Name,
			Status:    t.Status.Status,
			DueDate:   t.DueDateMillis(),
			Assignees: t.AssigneeIDs(),
			URL:       t.URL,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": out})
	return nil
}

func (g *Gateway) handleUpdateTask(w http.ResponseWriter, r *http.Request) error {
	var body map[string]json.RawMessage
	if err := decodeBody(w, r, &body, false); err != nil {
		return err
	}

	id, err := stringField(body, "id")
	if err != nil {
		return err
	}

	payload := clickup.UpdateTaskRequest{}
	for key, raw := range body {
		upstreamKey, ok := updateRenames[key]
		if !ok {
			continue
		}
		if key == "due_date" && !isNull(raw) {
			ms, err := parseDueDate(raw)
			if err != nil {
				return err
			}
			if ms == nil {
				raw = json.RawMessage("null")
			} else {
				raw, _ = json.Marshal(*ms)
			}
		}
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		payload[upstreamKey] = raw
	}

	task, err := g.client.UpdateTask(r.Context(), id, payload)
	if err != nil {
		return err
	}

	loggerFrom(r.Context()).Infof("updated task %s (%d fields)", id, len(payload))
	writeJSON(w, http.StatusOK, summarize(task, ""))
	return nil
}

func (g *Gateway) handleDeleteTask(w http.ResponseWriter, r *http.Request) error {
	var body map[string]json.RawMessage
	if err := decodeBody(w, r, &body, false); err != nil {
		return err
	}

	id, err := stringField(body, "id")
	if err != nil {
		return err
	}

	if err := g.client.DeleteTask(r.Context(), id); err != nil {
		return err
	}

	loggerFrom(r.Context()).Infof("deleted task %s", id)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Task deleted successfully",
		"id":      id,
	})
	return nil
}
