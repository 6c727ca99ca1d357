/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package scheduler fires the weekly learning session job
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/PivotLLM/ClickBridge/clickup"
	"github.com/PivotLLM/ClickBridge/config"
	"github.com/PivotLLM/ClickBridge/logging"
)

// runTimeout bounds a single weekly job
const runTimeout = 2 * time.Minute

// WeeklyCreator creates a weekly learning session task
type WeeklyCreator interface {
	CreateWeeklySession(ctx context.Context, listID string, objectives []string) (*clickup.Task, error)
}

// Scheduler runs the weekly trigger on a cron schedule in UTC
type Scheduler struct {
	config   *config.Config
	logger   *logging.Logger
	creator  WeeklyCreator
	cron     *cron.Cron
	schedule cron.Schedule
}

// New creates a Scheduler for the configured weekly schedule
func New(cfg *config.Config, creator WeeklyCreator, logger *logging.Logger) (*Scheduler, error) {
	schedule, err := config.CronParser.Parse(cfg.WeeklySchedule())
	if err != nil {
		return nil, fmt.Errorf("invalid weekly schedule %q: %w", cfg.WeeklySchedule(), err)
	}

	s := &Scheduler{
		config:   cfg,
		logger:   logger,
		creator:  creator,
		schedule: schedule,
	}

	adapter := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithParser(config.CronParser),
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter)),
	)
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.RunOnce(context.Background())
	}))

	return s, nil
}

// Start begins firing the job in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Infof("weekly trigger scheduled with %q (next run %s)",
		s.config.WeeklySchedule(), s.Next(time.Now()).Format(time.RFC3339))
}

// Stop halts the schedule and waits for a running job, up to ctx
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("weekly trigger still running at shutdown")
	}
}

// Next returns the first fire time after t
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.UTC())
}

// RunOnce performs one weekly job. Missing configuration skips the run.
// Errors and panics are logged and never returned.
func (s *Scheduler) RunOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("weekly trigger panicked: %v", r)
		}
	}()

	listID := s.config.DefaultListID()
	if listID == "" || s.config.APIToken() == "" {
		s.logger.Info("weekly trigger skipped: CLICKUP_DEFAULT_LIST_ID and CLICKUP_API_TOKEN must both be set")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	task, err := s.creator.CreateWeeklySession(ctx, listID, nil)
	if err != nil {
		s.logger.Errorf("weekly trigger failed: %v", err)
		return
	}
	s.logger.Infof("weekly trigger created task %s (%s)", task.ID, task.URL)
}

// cronLogger adapts logging.Logger to cron.Logger
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugf("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorf("cron: %s: %v %v", msg, err, keysAndValues)
}
