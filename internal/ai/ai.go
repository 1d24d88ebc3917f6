// Package ai defines the contract to the external text-completion service
// used for natural language task parsing, and its HTTP implementation.
package ai

import (
	"context"
	"time"

	"taskplanner/internal/domain"
)

// ParsedTask is a task proposal extracted from natural language.
type ParsedTask struct {
	Title             string              `json:"title"`
	Description       string              `json:"description,omitempty"`
	Priority          domain.TaskPriority `json:"priority"`
	DueDate           *time.Time          `json:"due_date,omitempty"`
	EstimatedDuration *int                `json:"estimated_duration,omitempty"` // minutes
}

// ParseResult is the outcome of parsing one natural language command.
type ParseResult struct {
	Tasks      []ParsedTask `json:"tasks"`
	Message    string       `json:"message"`
	Confidence float64      `json:"confidence"`
}

// Parser extracts task proposals from free-form text.
type Parser interface {
	ParseCommand(ctx context.Context, command string) (*ParseResult, error)
	SuggestTasks(ctx context.Context, contextText string) ([]ParsedTask, error)
}
