/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package global

// Goal represents a learning goal
type Goal struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Progress    float64 `json:"progress"`
	TargetDate  string  `json:"targetDate,omitempty"` // YYYY-MM-DD
}

// DefaultGoals returns the built-in learning goals.
// A fresh slice is returned on every call.
func DefaultGoals() []Goal {
	return []Goal{
		{
			ID:          "llm-mastery",
			Title:       "LLM Mastery",
			Description: "Become proficient in prompt engineering and LLM integration",
			Progress:    0,
			TargetDate:  DefaultGoalTarget,
		},
		{
			ID:          "productivity-automation",
			Title:       "Productivity Automation",
			Description: "Build automated workflows and tools to boost productivity",
			Progress:    0,
			TargetDate:  DefaultGoalTarget,
		},
		{
			ID:          "emerging-tech",
			Title:       "Emerging Tech Tracking",
			Description: "Stay updated with latest AI/ML developments and applications",
			Progress:    0,
			TargetDate:  DefaultGoalTarget,
		},
	}
}

// LearningProgress is the progress section of a track request
type LearningProgress struct {
	TimeSpent    float64  `json:"timeSpent"` // minutes
	Skills       []string `json:"skills,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// TrackRequest is the body accepted by the learning track route
type TrackRequest struct {
	Progress    *LearningProgress `json:"progress,omitempty"`
	SessionType string            `json:"sessionType,omitempty"`
	FocusArea   string            `json:"focusArea,omitempty"`
	NextSteps   string            `json:"nextSteps,omitempty"`
	ListID      string            `json:"list_id,omitempty"`
}

// WeeklyRequest is the body accepted by the learning weekly route
type WeeklyRequest struct {
	Objectives []string `json:"objectives,omitempty"`
	ListID     string   `json:"list_id,omitempty"`
}

// GoalsRequest is the body accepted by the set goals route
type GoalsRequest struct {
	Goals []Goal `json:"goals"`
}
