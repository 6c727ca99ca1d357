/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package templates

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/PivotLLM/ClickBridge/clickup"
	"github.com/PivotLLM/ClickBridge/global"
)

const weeklyTemplate = `## Weekly Learning Session {{.Date}}

### 🎯 Learning Objectives:
{{bullets .Objectives}}

### 🗓️ Session Structure:
1. **Review** (15 min): What did you learn last week?
2. **Explore** (30 min): Try something new with LLMs
3. **Build** (30 min): Create or improve a tool
4. **Plan** (15 min): What to focus on next week

### 📝 Session Notes:
- What did you learn today?
- What challenges did you encounter?
- What will you apply next week?

### 🔗 Resources:
- Add relevant links, articles, or tools here

### ✅ Action Items:
- [ ] Complete at least one learning objective
- [ ] Document key insights
- [ ] Plan next week's focus area

---
*Generated by {{.Program}}*`

const progressTemplate = `## Learning Progress Log {{.Date}}

### ⏱️ Time Spent: {{minutes .TimeSpent}} minutes

### 🎯 Skills Practiced:
{{bullets .Skills}}

### 🏆 Achievements:
{{bullets .Achievements}}

### 📊 Progress Summary:
- Date: {{.Date}}
- Session Type: {{.SessionType}}
- Focus Area: {{.FocusArea}}

### 🔄 Next Steps:
{{.NextSteps}}

---
*Tracked via {{.Program}}*`

var (
	weeklyTmpl   = template.Must(template.New("weekly").Funcs(templateFuncs()).Parse(weeklyTemplate))
	progressTmpl = template.Must(template.New("progress").Funcs(templateFuncs()).Parse(progressTemplate))
)

// templateFuncs returns custom template functions
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"bullets": func(items []string) string {
			lines := make([]string, 0, len(items))
			for _, item := range items {
				lines = append(lines, "- "+item)
			}
			return strings.Join(lines, "\n")
		},
		"minutes": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
	}
}

type weeklyData struct {
	Date       string
	Objectives []string
	Program    string
}

type progressData struct {
	Date         string
	TimeSpent    float64
	Skills       []string
	Achievements []string
	SessionType  string
	FocusArea    string
	NextSteps    string
	Program      string
}

// WeeklySession builds the create payload for a weekly learning session.
// An empty objectives list falls back to the default objectives.
// Both the learning route and the cron trigger go through here.
func WeeklySession(objectives []string, now time.Time) (*clickup.CreateTaskRequest, error) {
	if len(objectives) == 0 {
		objectives = global.DefaultObjectives
	}
	date := now.UTC().Format(global.DateLayout)

	var buf bytes.Buffer
	if err := weeklyTmpl.Execute(&buf, weeklyData{Date: date, Objectives: objectives, Program: global.ProgramName}); err != nil {
		return nil, fmt.Errorf("failed to render weekly session: %w", err)
	}

	priority := global.PriorityHigh
	return &clickup.CreateTaskRequest{
		Name:        fmt.Sprintf("Weekly LLM Learning Session %s", date),
		Description: buf.String(),
		Status:      global.TaskStatusToDo,
		Priority:    &priority,
		Tags:        append([]string(nil), global.WeeklyTags...),
	}, nil
}

// ProgressLog builds the create payload for a learning progress log
func ProgressLog(req *global.TrackRequest, now time.Time) (*clickup.CreateTaskRequest, error) {
	date := now.UTC().Format(global.DateLayout)
	data := progressData{
		Date:        date,
		SessionType: global.DefaultSessionType,
		FocusArea:   global.DefaultFocusArea,
		NextSteps:   global.DefaultNextSteps,
		Program:     global.ProgramName,
	}
	if req != nil {
		if req.Progress != nil {
			data.TimeSpent = req.Progress.TimeSpent
			data.Skills = req.Progress.Skills
			data.Achievements = req.Progress.Achievements
		}
		if req.SessionType != "" {
			data.SessionType = req.SessionType
		}
		if req.FocusArea != "" {
			data.FocusArea = req.FocusArea
		}
		if req.NextSteps != "" {
			data.NextSteps = req.NextSteps
		}
	}

	var buf bytes.Buffer
	if err := progressTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render progress log: %w", err)
	}

	priority := global.PriorityUrgent
	return &clickup.CreateTaskRequest{
		Name:        fmt.Sprintf("Learning Progress - %s", date),
		Description: buf.String(),
		Status:      global.TaskStatusInProgress,
		Priority:    &priority,
		Tags:        append([]string(nil), global.ProgressTags...),
	}, nil
}
