/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package goals stores learning goals
package goals

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/PivotLLM/ClickBridge/global"
	"github.com/PivotLLM/ClickBridge/logging"
)

const lockRetryDelay = 50 * time.Millisecond

// Store reads and replaces the current learning goals
type Store interface {
	List(ctx context.Context) ([]global.Goal, error)
	Replace(ctx context.Context, goals []global.Goal) error
	// Persistent reports whether Replace actually stores anything
	Persistent() bool
}

// StaticStore always serves the built-in goals and stores nothing
type StaticStore struct{}

// List returns the built-in goals
func (StaticStore) List(context.Context) ([]global.Goal, error) {
	return global.DefaultGoals(), nil
}

// Replace is a no-op; callers check Persistent to report that honestly
func (StaticStore) Replace(context.Context, []global.Goal) error {
	return nil
}

// Persistent is always false
func (StaticStore) Persistent() bool {
	return false
}

// FileStore keeps goals in a JSON file guarded by an advisory lock file,
// so several gateway processes can share one goals file
type FileStore struct {
	path   string
	logger *logging.Logger
}

type goalsFile struct {
	Goals []global.Goal `json:"goals"`
}

// NewFileStore creates a file-backed store. The file is created on first Replace.
func NewFileStore(path string, logger *logging.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Path returns the goals file path
func (s *FileStore) Path() string {
	return s.path
}

// List returns the stored goals, or the built-in goals when nothing is stored yet
func (s *FileStore) List(ctx context.Context) ([]global.Goal, error) {
	var goals []global.Goal
	err := s.withLock(ctx, func() error {
		var err error
		goals, err = s.load()
		return err
	})
	return goals, err
}

// Replace overwrites the stored goals
func (s *FileStore) Replace(ctx context.Context, goals []global.Goal) error {
	if goals == nil {
		goals = []global.Goal{}
	}
	return s.withLock(ctx, func() error {
		data, err := json.MarshalIndent(goalsFile{Goals: goals}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal goals: %w", err)
		}
		if err := global.AtomicWrite(s.path, data); err != nil {
			return fmt.Errorf("failed to save goals: %w", err)
		}
		s.logger.Infof("Stored %d learning goals in %s", len(goals), s.path)
		return nil
	})
}

// Persistent is always true
func (s *FileStore) Persistent() bool {
	return true
}

func (s *FileStore) load() ([]global.Goal, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return global.DefaultGoals(), nil
		}
		return nil, fmt.Errorf("failed to read goals: %w", err)
	}

	var gf goalsFile
	if err := json.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("failed to parse goals file %s: %w", s.path, err)
	}
	if gf.Goals == nil {
		gf.Goals = []global.Goal{}
	}
	return gf.Goals, nil
}

// withLock executes fn while holding the lock file next to the goals file
func (s *FileStore) withLock(ctx context.Context, fn func() error) error {
	if err := global.EnsureParentDir(s.path); err != nil {
		return fmt.Errorf("failed to create goals directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock on %s", s.path)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}
