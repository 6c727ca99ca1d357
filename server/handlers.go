/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/PivotLLM/ClickBridge/global"
)

// toolHandler returns the markdown text shown to the assistant
type toolHandler func(ctx context.Context, request mcp.CallToolRequest) (string, error)

// taskResult is the gateway response for a single task
type taskResult struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// updateKeys are the update_task arguments forwarded when supplied
var updateKeys = []string{"title", "description", "status", "priority", "tags", "due_date"}

// errorResult renders any failure as an error text block
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("❌ Error: " + err.Error())
}

// wrap validates arguments against the tool schema, runs fn and converts the
// outcome to a tool result. No error or panic escapes.
func (s *Server) wrap(tool mcp.Tool, fn toolHandler) server.ToolHandlerFunc {
	schema := tool.InputSchema
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Errorf("Tool %s panicked: %v", tool.Name, r)
				result, err = errorResult(fmt.Errorf("internal error in %s: %v", tool.Name, r)), nil
			}
		}()

		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}

		validation, verr := s.validator.ValidateValue(args, schema)
		if verr != nil {
			return errorResult(fmt.Errorf("failed to validate arguments: %w", verr)), nil
		}
		if !validation.Valid {
			s.logger.Warnf("Tool %s rejected: %s", tool.Name, validation.Message())
			return errorResult(fmt.Errorf("invalid arguments: %s", validation.Message())), nil
		}

		text, ferr := fn(ctx, request)
		if ferr != nil {
			s.logger.Warnf("Tool %s failed: %v", tool.Name, ferr)
			return errorResult(ferr), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// logToolCall logs an MCP tool invocation at INFO level
func (s *Server) logToolCall(toolName string, params map[string]string) {
	var parts []string
	for k, v := range params {
		if v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}
	}
	if len(parts) == 0 {
		s.logger.Infof("Tool %s called", toolName)
		return
	}
	sort.Strings(parts)
	s.logger.Infof("Tool %s called: %s", toolName, strings.Join(parts, ", "))
}

// listID returns the list_id argument or the configured default
func (s *Server) listID(request mcp.CallToolRequest) string {
	if id := strings.TrimSpace(mcp.ParseString(request, "list_id", "")); id != "" {
		return id
	}
	return s.config.DefaultListID()
}

// present reports whether the assistant supplied key
func present(request mcp.CallToolRequest, key string) bool {
	_, ok := request.GetArguments()[key]
	return ok
}

// stringSlice reads an array of strings argument, skipping non-strings
func stringSlice(request mcp.CallToolRequest, key string) []string {
	raw, ok := request.GetArguments()[key].([]interface{})
	if !ok {
		if typed, ok := request.GetArguments()[key].([]string); ok {
			return typed
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func formatTask(heading string, t *taskResult) string {
	return fmt.Sprintf("%s\n\n**Title:** %s\n**ID:** %s\n**Status:** %s\n**URL:** %s", heading, t.Title, t.ID, t.Status, t.URL)
}

// Task tool handlers

func (s *Server) handleCreateTask(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	title := mcp.ParseString(request, "title", "")
	listID := s.listID(request)

	s.logToolCall(global.ToolCreateTask, map[string]string{"title": title, "list_id": listID})

	body := map[string]interface{}{"title": title}
	for _, key := range []string{"description", "status", "due_date"} {
		if v := mcp.ParseString(request, key, ""); v != "" {
			body[key] = v
		}
	}
	if present(request, "priority") {
		body["priority"] = int(mcp.ParseFloat64(request, "priority", 0))
	}
	if tags := stringSlice(request, "tags"); len(tags) > 0 {
		body["tags"] = tags
	}
	if listID != "" {
		body["list_id"] = listID
	}

	var result taskResult
	if err := s.gateway.call(ctx, http.MethodPost, global.RouteTasksCreate, body, &result); err != nil {
		return "", err
	}
	return formatTask("✅ Task created successfully!", &result), nil
}

func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	statuses := mcp.ParseString(request, "statuses", "")
	limit := int(mcp.ParseFloat64(request, "limit", global.DefaultListLimit))
	page := int(mcp.ParseFloat64(request, "page", 0))
	listID := s.listID(request)

	s.logToolCall(global.ToolListTasks, map[string]string{"statuses": statuses, "list_id": listID})

	query := url.Values{}
	if statuses != "" {
		query.Set("statuses", statuses)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if listID != "" {
		query.Set("list_id", listID)
	}

	path := global.RouteTasksList
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result struct {
		Tasks []taskResult `json:"tasks"`
	}
	if err := s.gateway.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return "", err
	}

	if len(result.Tasks) == 0 {
		return "📋 No tasks found matching the criteria.", nil
	}

	lines := make([]string, 0, len(result.Tasks))
	for _, t := range result.Tasks {
		lines = append(lines, fmt.Sprintf("- **%s** (%s) - %s", t.Title, t.Status, t.URL))
	}
	return fmt.Sprintf("📋 Found %d tasks:\n\n%s", len(result.Tasks), strings.Join(lines, "\n")), nil
}

func (s *Server) handleUpdateTask(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	id := mcp.ParseString(request, "id", "")

	s.logToolCall(global.ToolUpdateTask, map[string]string{"id": id})

	args := request.GetArguments()
	body := map[string]interface{}{"id": id}
	for _, key := range updateKeys {
		if v, ok := args[key]; ok {
			body[key] = v
		}
	}

	var result taskResult
	if err := s.gateway.call(ctx, http.MethodPost, global.RouteTasksUpdate, body, &result); err != nil {
		return "", err
	}
	return formatTask("✅ Task updated successfully!", &result), nil
}

func (s *Server) handleDeleteTask(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	id := mcp.ParseString(request, "id", "")

	s.logToolCall(global.ToolDeleteTask, map[string]string{"id": id})

	var result struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if err := s.gateway.call(ctx, http.MethodPost, global.RouteTasksDelete, map[string]string{"id": id}, &result); err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑️ Task deleted successfully!\n\n**ID:** %s\n**Message:** %s", result.ID, result.Message), nil
}

// Learning tool handlers

func (s *Server) handleCreateLearningSession(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	body := global.WeeklyRequest{
		Objectives: stringSlice(request, "objectives"),
		ListID:     s.listID(request),
	}

	s.logToolCall(global.ToolCreateLearningSession, map[string]string{
		"objectives": strconv.Itoa(len(body.Objectives)),
		"list_id":    body.ListID,
	})

	var result taskResult
	if err := s.gateway.call(ctx, http.MethodPost, global.RouteLearningWeekly, body, &result); err != nil {
		return "", err
	}
	return fmt.Sprintf("📚 Learning session created successfully!\n\n**Title:** %s\n**ID:** %s\n**URL:** %s\n\n%s",
		result.Title, result.ID, result.URL, result.Message), nil
}

func (s *Server) handleTrackLearningProgress(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	body := global.TrackRequest{
		Progress: &global.LearningProgress{
			TimeSpent:    mcp.ParseFloat64(request, "time_spent", 0),
			Skills:       stringSlice(request, "skills"),
			Achievements: stringSlice(request, "achievements"),
		},
		SessionType: mcp.ParseString(request, "session_type", ""),
		FocusArea:   mcp.ParseString(request, "focus_area", ""),
		NextSteps:   mcp.ParseString(request, "next_steps", ""),
		ListID:      s.listID(request),
	}

	s.logToolCall(global.ToolTrackLearningProgress, map[string]string{
		"time_spent": strconv.FormatFloat(body.Progress.TimeSpent, 'f', -1, 64),
		"list_id":    body.ListID,
	})

	var result taskResult
	if err := s.gateway.call(ctx, http.MethodPost, global.RouteLearningTrack, body, &result); err != nil {
		return "", err
	}
	return fmt.Sprintf("📊 Learning progress tracked successfully!\n\n**Title:** %s\n**ID:** %s\n**URL:** %s\n\n%s",
		result.Title, result.ID, result.URL, result.Message), nil
}

func formatGoals(goals []global.Goal) string {
	lines := make([]string, 0, len(goals))
	for _, g := range goals {
		lines = append(lines, fmt.Sprintf("- **%s**: %s (Progress: %s%%, Target: %s)",
			g.Title, g.Description, strconv.FormatFloat(g.Progress, 'f', -1, 64), g.TargetDate))
	}
	return strings.Join(lines, "\n")
}

func (s *Server) handleGetLearningGoals(ctx context.Context, _ mcp.CallToolRequest) (string, error) {
	s.logToolCall(global.ToolGetLearningGoals, nil)

	var result global.GoalsRequest
	if err := s.gateway.call(ctx, http.MethodGet, global.RouteLearningGoals, nil, &result); err != nil {
		return "", err
	}
	if len(result.Goals) == 0 {
		return "🎯 No learning goals are set.", nil
	}
	return "🎯 Current Learning Goals:\n\n" + formatGoals(result.Goals), nil
}

func (s *Server) handleSetLearningGoals(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	goals := request.GetArguments()["goals"]

	s.logToolCall(global.ToolSetLearningGoals, nil)

	var result struct {
		Message   string        `json:"message"`
		Goals     []global.Goal `json:"goals"`
		Persisted bool          `json:"persisted"`
	}
	body := map[string]interface{}{"goals": goals}
	if err := s.gateway.call(ctx, http.MethodPost, global.RouteLearningGoals, body, &result); err != nil {
		return "", err
	}

	text := fmt.Sprintf("🎯 %s\n\n%s", result.Message, formatGoals(result.Goals))
	if !result.Persisted {
		text += "\n\n⚠️ The gateway has no goals file configured, so these goals were not saved."
	}
	return text, nil
}

// Diagnostics

func (s *Server) handleCheckWorkerHealth(ctx context.Context, _ mcp.CallToolRequest) (string, error) {
	s.logToolCall(global.ToolCheckWorkerHealth, nil)

	var result struct {
		OK bool `json:"ok"`
	}
	if err := s.gateway.call(ctx, http.MethodGet, global.RouteHealth, nil, &result); err != nil {
		return "", err
	}
	status := "❌ Unhealthy"
	if result.OK {
		status = "✅ Healthy"
	}
	return "🏥 Worker Health Check: " + status, nil
}

func (s *Server) handleTestClickUpConnection(ctx context.Context, _ mcp.CallToolRequest) (string, error) {
	s.logToolCall(global.ToolTestClickUpConnection, nil)

	var user struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := s.gateway.call(ctx, http.MethodGet, global.RouteClickUpMe, nil, &user); err != nil {
		return "", err
	}
	return fmt.Sprintf("🔗 ClickUp Connection Test:\n\n**User:** %s\n**Email:** %s\n**Status:** ✅ Connected", user.Username, user.Email), nil
}
