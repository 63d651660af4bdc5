// Package notify announces finished runs to other systems.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event describes one successful pipeline run.
type Event struct {
	RunID       uuid.UUID `json:"run_id"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Strategy    string    `json:"strategy"`
	Model       string    `json:"model"`
	Truncated   bool      `json:"truncated"`
	PromptChars int       `json:"prompt_chars"`
	Cached      bool      `json:"cached"`
	CompletedAt time.Time `json:"completed_at"`
}

// Notifier publishes run events. Failures never affect the run result.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NoOp discards events.
type NoOp struct{}

func (NoOp) Publish(context.Context, Event) error { return nil }

func (NoOp) Close() error { return nil }
