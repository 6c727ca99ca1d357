/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package global

//goland:noinspection GoCommentStart
const (
	// Configuration constants
	DefaultListenAddr      = ":8787"
	DefaultAPIURL          = "https://api.clickup.com/api/v2"
	DefaultWorkerURL       = "http://localhost:8787"
	DefaultWeeklySchedule  = "0 9 * * 1"
	DefaultUpstreamTimeout = "30s"

	// Inbound authentication
	HeaderSharedSecret = "X-Webhook-Secret"
	HeaderRequestID    = "X-Request-ID"

	// Gateway routes
	RouteHealth         = "/health"
	RouteClickUpMe      = "/clickup.me"
	RouteTasksCreate    = "/tasks.create"
	RouteTasksList      = "/tasks.list"
	RouteTasksUpdate    = "/tasks.update"
	RouteTasksDelete    = "/tasks.delete"
	RouteLearningWeekly = "/learning/weekly"
	RouteLearningTrack  = "/learning/track"
	RouteLearningGoals  = "/learning/goals"

	// MCP Tool Names - Tasks
	ToolCreateTask = "create_task"
	ToolListTasks  = "list_tasks"
	ToolUpdateTask = "update_task"
	ToolDeleteTask = "delete_task"

	// MCP Tool Names - Learning
	ToolCreateLearningSession = "create_learning_session"
	ToolTrackLearningProgress = "track_learning_progress"
	ToolGetLearningGoals      = "get_learning_goals"
	ToolSetLearningGoals      = "set_learning_goals"

	// MCP Tool Names - System
	ToolCheckWorkerHealth     = "check_worker_health"
	ToolTestClickUpConnection = "test_clickup_connection"

	// Task status values offered to assistants
	TaskStatusToDo       = "to do"
	TaskStatusInProgress = "in progress"
	TaskStatusDone       = "done"

	// Task priorities (1 is most urgent)
	PriorityUrgent = 1
	PriorityHigh   = 2
	PriorityNormal = 3
	PriorityLow    = 4

	// Error kinds returned in gateway envelopes
	ErrKindUnauthorized  = "unauthorized"
	ErrKindValidation    = "validation_error"
	ErrKindConfiguration = "configuration_error"
	ErrKindClickUpAPI    = "clickup_api_error"
	ErrKindNetwork       = "network_error"
	ErrKindNotFound      = "not found"
	ErrKindInternal      = "internal_server_error"

	// Learning defaults
	DefaultSessionType = "General Learning"
	DefaultFocusArea   = "LLM & Productivity"
	DefaultNextSteps   = "- Continue exploring current learning path"
	DefaultGoalTarget  = "2024-12-31"

	// Tool adapter defaults
	DefaultListLimit = 10

	// Date format used in task names and templates
	DateLayout = "2006-01-02"

	// Log Levels
	LogLevelDebug = "DEBUG"
	LogLevelInfo  = "INFO"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"
	LogLevelFatal = "FATAL"
)

// WeeklyTags are applied to every weekly learning session task
var WeeklyTags = []string{"learning", "weekly", "llm", "productivity"}

// ProgressTags are applied to every learning progress log task
var ProgressTags = []string{"learning", "progress", "tracking"}

// DefaultObjectives is used when a weekly session is requested without objectives
var DefaultObjectives = []string{
	"🔍 Explore new LLM capabilities and use cases",
	"💻 Practice prompt engineering and optimization",
	"🚀 Build or improve a productivity tool/script",
	"📚 Research emerging AI/ML trends and applications",
	"🔄 Review and optimize existing workflows",
}

// ValidLogLevel reports whether level is one of the supported log levels
func ValidLogLevel(level string) bool {
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelFatal:
		return true
	}
	return false
}
