/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/PivotLLM/ClickBridge/config"
	"github.com/PivotLLM/ClickBridge/global"
	"github.com/PivotLLM/ClickBridge/logging"
	"github.com/PivotLLM/ClickBridge/templates"
)

// gatewayTimeoutMargin is added to the upstream timeout so the gateway can
// report an upstream timeout before the adapter gives up
const gatewayTimeoutMargin = 5 * time.Second

// Server wraps the MCP server with the gateway client
type Server struct {
	config    *config.Config
	logger    *logging.Logger
	gateway   *gatewayClient
	validator *templates.Validator
	mcpServer *server.MCPServer
	tools     []server.ServerTool
}

// New creates a new server instance
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	timeout := cfg.UpstreamTimeout()
	if timeout > 0 {
		timeout += gatewayTimeoutMargin
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		global.ProgramName,
		global.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	srv := &Server{
		config:    cfg,
		logger:    logger,
		gateway:   newGatewayClient(cfg.WorkerURL(), cfg.ClientSecret(), timeout),
		validator: templates.New(logger),
		mcpServer: mcpServer,
	}

	if cfg.ClientSecret() == "" {
		logger.Warn("CLICKUP_SHARED_SECRET is not set; the gateway will reject every call")
	}

	// Register tools
	if err := srv.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return srv, nil
}

// Tools returns the tool catalog in registration order
func (s *Server) Tools() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		tools = append(tools, t.Tool)
	}
	return tools
}

// readOnlyTool creates a tool with read-only annotations
// ReadOnly: true, Destructive: false, OpenWorld: true
func (s *Server) readOnlyTool(name string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(true),
		DestructiveHint: mcp.ToBoolPtr(false),
		OpenWorldHint:   mcp.ToBoolPtr(true),
	}))
	return mcp.NewTool(name, opts...)
}

// defaultTool creates a tool with default annotations (non-destructive)
// ReadOnly: false, Destructive: false, OpenWorld: true
func (s *Server) defaultTool(name string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(false),
		DestructiveHint: mcp.ToBoolPtr(false),
		OpenWorldHint:   mcp.ToBoolPtr(true),
	}))
	return mcp.NewTool(name, opts...)
}

// destructiveTool creates a tool with destructive annotations
// ReadOnly: false, Destructive: true, OpenWorld: true
func (s *Server) destructiveTool(name string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(false),
		DestructiveHint: mcp.ToBoolPtr(true),
		OpenWorldHint:   mcp.ToBoolPtr(true),
	}))
	return mcp.NewTool(name, opts...)
}

// numberEnum restricts a number property to the given values
func numberEnum(values ...float64) mcp.PropertyOption {
	return func(schema map[string]interface{}) {
		schema["enum"] = values
	}
}

func stringItems() mcp.PropertyOption {
	return mcp.Items(map[string]interface{}{"type": "string"})
}

func listIDOption() mcp.ToolOption {
	return mcp.WithString("list_id",
		mcp.Description("ClickUp list ID (optional, uses default if not provided)"),
	)
}

// addTool wraps handler with validation and panic recovery and adds it to the catalog
func (s *Server) addTool(tool mcp.Tool, handler toolHandler) {
	s.tools = append(s.tools, server.ServerTool{Tool: tool, Handler: s.wrap(tool, handler)})
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	statuses := []string{global.TaskStatusToDo, global.TaskStatusInProgress, global.TaskStatusDone}
	priorities := numberEnum(global.PriorityUrgent, global.PriorityHigh, global.PriorityNormal, global.PriorityLow)

	// Task tools
	s.addTool(
		s.defaultTool(global.ToolCreateTask,
			mcp.WithDescription("Create a new task in ClickUp"),
			mcp.WithString("title",
				mcp.Description("Task title"),
				mcp.Required(),
			),
			mcp.WithString("description",
				mcp.Description("Task description (supports markdown)"),
			),
			mcp.WithString("status",
				mcp.Description("Task status"),
				mcp.Enum(statuses...),
			),
			mcp.WithNumber("priority",
				mcp.Description("Task priority (1=urgent, 2=high, 3=normal, 4=low)"),
				priorities,
			),
			mcp.WithArray("tags",
				mcp.Description("Tags for the task"),
				stringItems(),
			),
			mcp.WithString("due_date",
				mcp.Description("Due date in YYYY-MM-DD format or Unix milliseconds"),
			),
			listIDOption(),
		), s.handleCreateTask)

	s.addTool(
		s.readOnlyTool(global.ToolListTasks,
			mcp.WithDescription("List tasks from ClickUp"),
			mcp.WithString("statuses",
				mcp.Description("Comma-separated list of statuses to filter by"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of tasks to return"),
				mcp.DefaultNumber(global.DefaultListLimit),
				mcp.Min(0),
			),
			mcp.WithNumber("page",
				mcp.Description("Page number for pagination"),
				mcp.DefaultNumber(0),
				mcp.Min(0),
			),
			listIDOption(),
		), s.handleListTasks)

	s.addTool(
		s.defaultTool(global.ToolUpdateTask,
			mcp.WithDescription("Update an existing ClickUp task. Only the fields provided are changed."),
			mcp.WithString("id",
				mcp.Description("Task ID to update"),
				mcp.Required(),
			),
			mcp.WithString("title",
				mcp.Description("New task title"),
			),
			mcp.WithString("description",
				mcp.Description("New task description"),
			),
			mcp.WithString("status",
				mcp.Description("New task status"),
				mcp.Enum(statuses...),
			),
			mcp.WithNumber("priority",
				mcp.Description("New task priority"),
				priorities,
			),
			mcp.WithArray("tags",
				mcp.Description("New tags for the task"),
				stringItems(),
			),
			mcp.WithString("due_date",
				mcp.Description("New due date in YYYY-MM-DD format or Unix milliseconds"),
			),
		), s.handleUpdateTask)

	s.addTool(
		s.destructiveTool(global.ToolDeleteTask,
			mcp.WithDescription("Delete a ClickUp task"),
			mcp.WithString("id",
				mcp.Description("Task ID to delete"),
				mcp.Required(),
			),
		), s.handleDeleteTask)

	// Learning tools
	s.addTool(
		s.defaultTool(global.ToolCreateLearningSession,
			mcp.WithDescription("Create a structured weekly learning session task"),
			mcp.WithArray("objectives",
				mcp.Description("Learning objectives for the session"),
				stringItems(),
			),
			listIDOption(),
		), s.handleCreateLearningSession)

	s.addTool(
		s.defaultTool(global.ToolTrackLearningProgress,
			mcp.WithDescription("Track learning progress and create a progress log"),
			mcp.WithNumber("time_spent",
				mcp.Description("Time spent learning in minutes"),
				mcp.Required(),
				mcp.Min(0),
			),
			mcp.WithArray("skills",
				mcp.Description("Skills practiced during the session"),
				stringItems(),
			),
			mcp.WithArray("achievements",
				mcp.Description("Achievements or milestones reached"),
				stringItems(),
			),
			mcp.WithString("session_type",
				mcp.Description("Type of learning session"),
				mcp.DefaultString(global.DefaultSessionType),
			),
			mcp.WithString("focus_area",
				mcp.Description("Main focus area for the session"),
				mcp.DefaultString(global.DefaultFocusArea),
			),
			mcp.WithString("next_steps",
				mcp.Description("Next steps or follow-up actions"),
			),
			listIDOption(),
		), s.handleTrackLearningProgress)

	s.addTool(
		s.readOnlyTool(global.ToolGetLearningGoals,
			mcp.WithDescription("Get current learning goals and objectives"),
		), s.handleGetLearningGoals)

	s.addTool(
		s.defaultTool(global.ToolSetLearningGoals,
			mcp.WithDescription("Replace the current learning goals"),
			mcp.WithArray("goals",
				mcp.Description("The complete list of learning goals"),
				mcp.Required(),
				mcp.Items(map[string]interface{}{
					"type":     "object",
					"required": []string{"id", "title"},
					"properties": map[string]interface{}{
						"id":          map[string]interface{}{"type": "string", "minLength": 1},
						"title":       map[string]interface{}{"type": "string", "minLength": 1},
						"description": map[string]interface{}{"type": "string"},
						"progress":    map[string]interface{}{"type": "number", "minimum": 0},
						"targetDate":  map[string]interface{}{"type": "string", "description": "Target date in YYYY-MM-DD format"},
					},
				}),
			),
		), s.handleSetLearningGoals)

	// Diagnostics
	s.addTool(
		s.readOnlyTool(global.ToolCheckWorkerHealth,
			mcp.WithDescription("Check if the ClickBridge gateway is healthy and accessible"),
		), s.handleCheckWorkerHealth)

	s.addTool(
		s.readOnlyTool(global.ToolTestClickUpConnection,
			mcp.WithDescription("Test the connection to ClickUp and verify authentication"),
		), s.handleTestClickUpConnection)

	s.mcpServer.AddTools(s.tools...)
	return nil
}

// Run starts the MCP server with graceful shutdown
func (s *Server) Run() error {
	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		// ServeStdio returns when stdin is closed (EOF) or on error
		errChan <- server.ServeStdio(s.mcpServer)
	}()

	s.logger.Infof("MCP server started (gateway %s)", s.config.WorkerURL())

	// Wait for shutdown signal, stdin close, or error
	select {
	case <-sigChan:
		s.logger.Info("Shutdown signal received")
		if err := s.logger.Sync(); err != nil {
			s.logger.Warnf("Failed to flush logs on shutdown: %v", err)
		}
		return nil

	case err := <-errChan:
		if err != nil {
			s.logger.Errorf("Server error: %v", err)
			return fmt.Errorf("server error: %w", err)
		}
		// nil error means stdin was closed (EOF) - normal exit
		s.logger.Info("Connection closed")
		return nil
	}
}
