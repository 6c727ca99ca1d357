/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package templates

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/PivotLLM/ClickBridge/global"
)

var fixedNow = time.Date(2025, 3, 4, 23, 30, 0, 0, time.FixedZone("X", -5*3600))

func TestWeeklySession(t *testing.T) {
	req, err := WeeklySession([]string{"Learn Go", "Ship it"}, fixedNow)
	if err != nil {
		t.Fatalf("WeeklySession() error = %v", err)
	}

	// 23:30 at UTC-5 is already the next day in UTC
	if req.Name != "Weekly LLM Learning Session 2025-03-05" {
		t.Errorf("Name = %q", req.Name)
	}
	if req.Status != global.TaskStatusToDo {
		t.Errorf("Status = %q", req.Status)
	}
	if req.Priority == nil || *req.Priority != 2 {
		t.Errorf("Priority = %v, want 2", req.Priority)
	}
	if !reflect.DeepEqual(req.Tags, []string{"learning", "weekly", "llm", "productivity"}) {
		t.Errorf("Tags = %v", req.Tags)
	}
	if !strings.Contains(req.Description, "## Weekly Learning Session 2025-03-05") {
		t.Errorf("missing heading in %q", req.Description)
	}
	if !strings.Contains(req.Description, "- Learn Go\n- Ship it\n") {
		t.Errorf("objectives not rendered as bullets: %q", req.Description)
	}
}

func TestWeeklySessionDefaultObjectives(t *testing.T) {
	req, err := WeeklySession(nil, fixedNow)
	if err != nil {
		t.Fatalf("WeeklySession() error = %v", err)
	}
	for _, obj := range global.DefaultObjectives {
		if !strings.Contains(req.Description, "- "+obj) {
			t.Errorf("default objective %q missing", obj)
		}
	}

	// Tags must not alias the package-level slice
	req.Tags[0] = "changed"
	if global.WeeklyTags[0] != "learning" {
		t.Error("WeeklySession() tags alias global.WeeklyTags")
	}
}

func TestProgressLog(t *testing.T) {
	req, err := ProgressLog(&global.TrackRequest{
		Progress: &global.LearningProgress{
			TimeSpent:    45,
			Skills:       []string{"prompting"},
			Achievements: []string{"built a tool"},
		},
		FocusArea: "Agents",
	}, fixedNow)
	if err != nil {
		t.Fatalf("ProgressLog() error = %v", err)
	}

	if req.Name != "Learning Progress - 2025-03-05" {
		t.Errorf("Name = %q", req.Name)
	}
	if req.Status != global.TaskStatusInProgress {
		t.Errorf("Status = %q", req.Status)
	}
	if req.Priority == nil || *req.Priority != 1 {
		t.Errorf("Priority = %v, want 1", req.Priority)
	}
	if !reflect.DeepEqual(req.Tags, []string{"learning", "progress", "tracking"}) {
		t.Errorf("Tags = %v", req.Tags)
	}

	for _, want := range []string{
		"### ⏱️ Time Spent: 45 minutes",
		"- prompting",
		"- built a tool",
		"- Session Type: General Learning",
		"- Focus Area: Agents",
		global.DefaultNextSteps,
	} {
		if !strings.Contains(req.Description, want) {
			t.Errorf("description missing %q:\n%s", want, req.Description)
		}
	}
}

func TestProgressLogNilRequest(t *testing.T) {
	req, err := ProgressLog(nil, fixedNow)
	if err != nil {
		t.Fatalf("ProgressLog() error = %v", err)
	}
	if !strings.Contains(req.Description, "Time Spent: 0 minutes") {
		t.Errorf("unexpected description: %q", req.Description)
	}
}
