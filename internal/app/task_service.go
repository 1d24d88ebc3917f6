package app

import (
	"context"
	"errors"
	"fmt"

	"taskplanner/internal/domain"
)

// TaskService encapsulates task use cases.
type TaskService struct {
	repo domain.TaskRepository
}

// NewTaskService creates a TaskService backed by the given repository.
func NewTaskService(repo domain.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// List returns a page of the user's tasks plus the unpaged total.
func (s *TaskService) List(ctx context.Context, userID int64, f domain.TaskFilter, offset, limit int) ([]domain.Task, int, error) {
	if f.Status != nil && !domain.ValidStatus(*f.Status) {
		return nil, 0, fmt.Errorf("unknown status %q", *f.Status)
	}
	if f.Priority != nil && !domain.ValidPriority(*f.Priority) {
		return nil, 0, fmt.Errorf("unknown priority %q", *f.Priority)
	}
	return s.repo.ListTasks(ctx, userID, f, offset, limit)
}

// Get returns one task owned by the user.
func (s *TaskService) Get(ctx context.Context, userID, id int64) (*domain.Task, error) {
	task, err := s.repo.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// Create validates and stores a new task.
func (s *TaskService) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	if t.Title == "" {
		return nil, errors.New("title is required")
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(t.Priority) {
		return nil, fmt.Errorf("unknown priority %q", t.Priority)
	}
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	if !domain.ValidStatus(t.Status) {
		return nil, fmt.Errorf("unknown status %q", t.Status)
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update applies a partial update to one task owned by the user.
func (s *TaskService) Update(ctx context.Context, userID, id int64, u domain.TaskUpdate) (*domain.Task, error) {
	if err := validateTaskUpdate(u); err != nil {
		return nil, err
	}
	task, err := s.repo.UpdateTask(ctx, userID, id, u)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// Delete removes one task owned by the user.
func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	deleted, err := s.repo.DeleteTask(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// BulkUpdate applies a batch of partial updates atomically. Every entry is
// validated before any mutation is applied; one bad entry fails the whole
// batch with nothing written.
func (s *TaskService) BulkUpdate(ctx context.Context, userID int64, entries []domain.TaskBulkEntry) ([]domain.Task, error) {
	if len(entries) == 0 {
		return nil, errors.New("empty batch")
	}
	for i, e := range entries {
		if e.ID <= 0 {
			return nil, fmt.Errorf("entry %d: invalid task id", i)
		}
		if err := validateTaskUpdate(e.Updates); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	tasks, err := s.repo.BulkUpdateTasks(ctx, userID, entries)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tasks, nil
}

func validateTaskUpdate(u domain.TaskUpdate) error {
	if u.Title != nil && *u.Title == "" {
		return errors.New("title must not be empty")
	}
	if u.Priority != nil && !domain.ValidPriority(*u.Priority) {
		return fmt.Errorf("unknown priority %q", *u.Priority)
	}
	if u.Status != nil && !domain.ValidStatus(*u.Status) {
		return fmt.Errorf("unknown status %q", *u.Status)
	}
	return nil
}
