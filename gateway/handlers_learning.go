/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/PivotLLM/ClickBridge/global"
	"github.com/PivotLLM/ClickBridge/templates"
)

func (g *Gateway) handleWeekly(w http.ResponseWriter, r *http.Request) error {
	var body global.WeeklyRequest
	if err := decodeBody(w, r, &body, true); err != nil {
		return err
	}

	task, err := g.CreateWeeklySession(r.Context(), body.ListID, body.Objectives)
	if err != nil {
		return err
	}

	loggerFrom(r.Context()).Infof("created weekly learning session %s", task.ID)
	writeJSON(w, http.StatusOK, summarize(task, "Weekly learning task created successfully!"))
	return nil
}

func (g *Gateway) handleTrack(w http.ResponseWriter, r *http.Request) error {
	var body global.TrackRequest
	if err := decodeBody(w, r, &body, false); err != nil {
		return err
	}

	listID, err := g.resolveListID(body.ListID)
	if err != nil {
		return err
	}

	req, err := templates.ProgressLog(&body, g.now())
	if err != nil {
		return err
	}

	task, err := g.client.CreateTask(r.Context(), listID, req)
	if err != nil {
		return err
	}

	loggerFrom(r.Context()).Infof("logged learning progress %s", task.ID)
	writeJSON(w, http.StatusOK, summarize(task, "Learning progress tracked successfully!"))
	return nil
}

func (g *Gateway) handleGetGoals(w http.ResponseWriter, r *http.Request) error {
	current, err := g.goals.List(r.Context())
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, global.GoalsRequest{Goals: current})
	return nil
}

func (g *Gateway) handleSetGoals(w http.ResponseWriter, r *http.Request) error {
	data, err := readBody(w, r, false)
	if err != nil {
		return err
	}

	result, err := g.validator.ValidateJSON(data, templates.GoalsSchema)
	if err != nil {
		return validationError("%v", err)
	}
	if !result.Valid {
		return validationError("invalid goals: %s", result.Message())
	}

	var body global.GoalsRequest
	if err := json.Unmarshal(data, &body); err != nil {
		return validationError("invalid JSON body: %v", err)
	}

	if err := g.goals.Replace(r.Context(), body.Goals); err != nil {
		return err
	}

	message := "Learning goals updated successfully!"
	if !g.goals.Persistent() {
		message = "Learning goals accepted but not stored (no goals file configured)"
	}

	loggerFrom(r.Context()).Infof("replaced %d learning goals (persisted=%t)", len(body.Goals), g.goals.Persistent())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   message,
		"goals":     body.Goals,
		"persisted": g.goals.Persistent(),
	})
	return nil
}
