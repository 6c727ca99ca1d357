/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package gateway is the authenticated HTTP relay in front of the ClickUp API
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PivotLLM/ClickBridge/clickup"
	"github.com/PivotLLM/ClickBridge/config"
	"github.com/PivotLLM/ClickBridge/global"
	"github.com/PivotLLM/ClickBridge/goals"
	"github.com/PivotLLM/ClickBridge/logging"
	"github.com/PivotLLM/ClickBridge/templates"
)

// Gateway routes authenticated requests to the ClickUp client
type Gateway struct {
	config    *config.Config
	logger    *logging.Logger
	client    *clickup.Client
	goals     goals.Store
	validator *templates.Validator
	now       func() time.Time
}

// Option is a functional option for configuring the Gateway
type Option func(*Gateway)

// WithClient replaces the upstream client built from config
func WithClient(client *clickup.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// WithGoalsStore sets the goals store
func WithGoalsStore(store goals.Store) Option {
	return func(g *Gateway) {
		g.goals = store
	}
}

// WithClock overrides the time source used for task dates
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// New creates a Gateway. Without options it talks to the configured API URL
// and serves the static goal set.
func New(cfg *config.Config, logger *logging.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		config:    cfg,
		logger:    logger,
		goals:     goals.StaticStore{},
		validator: templates.New(logger),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.client == nil {
		g.client = clickup.New(cfg.APIURL(), cfg.APIToken(),
			clickup.WithTimeout(cfg.UpstreamTimeout()),
			clickup.WithLogger(logger))
	}

	return g
}

// handlerFunc is a route handler that reports failures by returning them
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (g *Gateway) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(w, r, err)
		}
	}
}

// Handler returns the root HTTP handler
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(g.requestID, g.logRequests, g.recoverPanics, g.authenticate)

	r.NotFound(g.notFound)
	r.MethodNotAllowed(g.notFound)

	r.Get(global.RouteHealth, g.handleHealth)
	r.Get(global.RouteClickUpMe, g.handle(g.handleMe))
	r.Post(global.RouteTasksCreate, g.handle(g.handleCreateTask))
	r.Get(global.RouteTasksList, g.handle(g.handleListTasks))
	r.Post(global.RouteTasksUpdate, g.handle(g.handleUpdateTask))
	r.Post(global.RouteTasksDelete, g.handle(g.handleDeleteTask))
	r.Post(global.RouteLearningWeekly, g.handle(g.handleWeekly))
	r.Post(global.RouteLearningTrack, g.handle(g.handleTrack))
	r.Get(global.RouteLearningGoals, g.handle(g.handleGetGoals))
	r.Post(global.RouteLearningGoals, g.handle(g.handleSetGoals))

	return r
}

func (g *Gateway) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, &Error{
		Status:  http.StatusNotFound,
		Kind:    global.ErrKindNotFound,
		Message: fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path),
	})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// resolveListID picks the request list id, else the configured default
func (g *Gateway) resolveListID(requested string) (string, error) {
	if id := strings.TrimSpace(requested); id != "" {
		return id, nil
	}
	if id := g.config.DefaultListID(); id != "" {
		return id, nil
	}
	return "", validationError("list_id is required (no CLICKUP_DEFAULT_LIST_ID configured)")
}

// CreateWeeklySession creates a weekly learning task in listID, or the
// default list when listID is empty
func (g *Gateway) CreateWeeklySession(ctx context.Context, listID string, objectives []string) (*clickup.Task, error) {
	listID, err := g.resolveListID(listID)
	if err != nil {
		return nil, err
	}

	req, err := templates.WeeklySession(objectives, g.now())
	if err != nil {
		return nil, err
	}

	return g.client.CreateTask(ctx, listID, req)
}
