package app

import (
	"context"
	"errors"
	"testing"

	"taskplanner/internal/adapter/memory"
	"taskplanner/internal/domain"
)

type mockTaskRepo struct {
	createTaskFn      func(ctx context.Context, t *domain.Task) error
	getTaskFn         func(ctx context.Context, userID, id int64) (*domain.Task, error)
	listTasksFn       func(ctx context.Context, userID int64, f domain.TaskFilter, offset, limit int) ([]domain.Task, int, error)
	updateTaskFn      func(ctx context.Context, userID, id int64, u domain.TaskUpdate) (*domain.Task, error)
	deleteTaskFn      func(ctx context.Context, userID, id int64) (bool, error)
	bulkUpdateTasksFn func(ctx context.Context, userID int64, entries []domain.TaskBulkEntry) ([]domain.Task, error)
}

func (m *mockTaskRepo) CreateTask(ctx context.Context, t *domain.Task) error {
	if m.createTaskFn != nil {
		return m.createTaskFn(ctx, t)
	}
	t.ID = 1
	return nil
}

func (m *mockTaskRepo) GetTask(ctx context.Context, userID, id int64) (*domain.Task, error) {
	if m.getTaskFn != nil {
		return m.getTaskFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockTaskRepo) ListTasks(ctx context.Context, userID int64, f domain.TaskFilter, offset, limit int) ([]domain.Task, int, error) {
	if m.listTasksFn != nil {
		return m.listTasksFn(ctx, userID, f, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockTaskRepo) UpdateTask(ctx context.Context, userID, id int64, u domain.TaskUpdate) (*domain.Task, error) {
	if m.updateTaskFn != nil {
		return m.updateTaskFn(ctx, userID, id, u)
	}
	return nil, nil
}

func (m *mockTaskRepo) DeleteTask(ctx context.Context, userID, id int64) (bool, error) {
	if m.deleteTaskFn != nil {
		return m.deleteTaskFn(ctx, userID, id)
	}
	return false, nil
}

func (m *mockTaskRepo) BulkUpdateTasks(ctx context.Context, userID int64, entries []domain.TaskBulkEntry) ([]domain.Task, error) {
	if m.bulkUpdateTasksFn != nil {
		return m.bulkUpdateTasksFn(ctx, userID, entries)
	}
	return nil, nil
}

func TestTaskService_Create_Defaults(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(&mockTaskRepo{})

	task, err := svc.Create(ctx, &domain.Task{UserID: 1, Title: "write report"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if task.Priority != domain.PriorityMedium {
		t.Errorf("expected default priority medium, got %s", task.Priority)
	}
	if task.Status != domain.StatusPending {
		t.Errorf("expected default status pending, got %s", task.Status)
	}
}

func TestTaskService_Create_RejectsBadPriority(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(&mockTaskRepo{})

	_, err := svc.Create(ctx, &domain.Task{UserID: 1, Title: "x", Priority: "urgent"})
	if err == nil {
		t.Error("expected an error for unknown priority")
	}
}

func TestTaskService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(&mockTaskRepo{})

	_, err := svc.Get(ctx, 1, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskService_List_RejectsBadFilter(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(&mockTaskRepo{})

	bad := domain.TaskStatus("paused")
	_, _, err := svc.List(ctx, 1, domain.TaskFilter{Status: &bad}, 0, 10)
	if err == nil {
		t.Error("expected an error for unknown status filter")
	}
}

func TestTaskService_BulkUpdate_RejectsBadEntryUpfront(t *testing.T) {
	ctx := context.Background()
	called := false
	repo := &mockTaskRepo{
		bulkUpdateTasksFn: func(ctx context.Context, userID int64, entries []domain.TaskBulkEntry) ([]domain.Task, error) {
			called = true
			return nil, nil
		},
	}
	svc := NewTaskService(repo)

	bad := domain.TaskPriority("urgent")
	_, err := svc.BulkUpdate(ctx, 1, []domain.TaskBulkEntry{
		{ID: 1, Updates: domain.TaskUpdate{Priority: &bad}},
	})
	if err == nil {
		t.Error("expected validation error")
	}
	if called {
		t.Error("expected no repository call when validation fails")
	}
}

func TestTaskService_BulkUpdate_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := NewTaskService(db)

	t1, _ := svc.Create(ctx, &domain.Task{UserID: 1, Title: "first"})
	t2, _ := svc.Create(ctx, &domain.Task{UserID: 1, Title: "second"})

	done := domain.StatusCompleted
	_, err := svc.BulkUpdate(ctx, 1, []domain.TaskBulkEntry{
		{ID: t1.ID, Updates: domain.TaskUpdate{Status: &done}},
		{ID: 9999, Updates: domain.TaskUpdate{Status: &done}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The first entry must not have been applied.
	got, err := svc.Get(ctx, 1, t1.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusPending {
		t.Errorf("expected task %d untouched, got status %s", t1.ID, got.Status)
	}

	tasks, err := svc.BulkUpdate(ctx, 1, []domain.TaskBulkEntry{
		{ID: t1.ID, Updates: domain.TaskUpdate{Status: &done}},
		{ID: t2.ID, Updates: domain.TaskUpdate{Status: &done}},
	})
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	for _, task := range tasks {
		if task.Status != domain.StatusCompleted {
			t.Errorf("expected task %d completed, got %s", task.ID, task.Status)
		}
	}
}

func TestTaskService_BulkUpdate_OwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := NewTaskService(db)

	mine, _ := svc.Create(ctx, &domain.Task{UserID: 1, Title: "mine"})
	theirs, _ := svc.Create(ctx, &domain.Task{UserID: 2, Title: "theirs"})

	done := domain.StatusCompleted
	_, err := svc.BulkUpdate(ctx, 1, []domain.TaskBulkEntry{
		{ID: mine.ID, Updates: domain.TaskUpdate{Status: &done}},
		{ID: theirs.ID, Updates: domain.TaskUpdate{Status: &done}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's task, got %v", err)
	}
}
