package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskplanner/internal/adapter/memory"
	"taskplanner/internal/domain"
)

func TestPomodoroService_StartAndEnd(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := NewPomodoroService(db)

	session, err := svc.Start(ctx, 1, nil, 25, domain.PomodoroWork)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.EndTime != nil || session.Completed {
		t.Error("expected a running session")
	}

	ended, err := svc.End(ctx, 1, session.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.EndTime == nil || !ended.Completed {
		t.Error("expected an ended session")
	}

	if _, err := svc.End(ctx, 1, session.ID); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("expected ErrSessionEnded on double end, got %v", err)
	}
}

func TestPomodoroService_Start_DefaultsToWork(t *testing.T) {
	ctx := context.Background()
	svc := NewPomodoroService(memory.New())

	session, err := svc.Start(ctx, 1, nil, 25, "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.Type != domain.PomodoroWork {
		t.Errorf("expected work session, got %s", session.Type)
	}

	if _, err := svc.Start(ctx, 1, nil, 0, domain.PomodoroWork); err == nil {
		t.Error("expected an error for non-positive duration")
	}
}

func TestPomodoroService_End_OwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	svc := NewPomodoroService(memory.New())

	session, _ := svc.Start(ctx, 1, nil, 25, domain.PomodoroWork)
	if _, err := svc.End(ctx, 2, session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's session, got %v", err)
	}
}

func TestPomodoroService_Stats(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := NewPomodoroService(db)

	w1, _ := svc.Start(ctx, 1, nil, 25, domain.PomodoroWork)
	if _, err := svc.End(ctx, 1, w1.ID); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := svc.Start(ctx, 1, nil, 25, domain.PomodoroWork); err != nil {
		t.Fatalf("start: %v", err)
	}
	b1, _ := svc.Start(ctx, 1, nil, 5, domain.PomodoroBreak)
	if _, err := svc.End(ctx, 1, b1.ID); err != nil {
		t.Fatalf("end: %v", err)
	}
	// Another user's sessions must not bleed into the stats.
	if _, err := svc.Start(ctx, 2, nil, 50, domain.PomodoroWork); err != nil {
		t.Fatalf("start: %v", err)
	}

	stats, err := svc.Stats(ctx, 1, "week")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalSessions != 3 {
		t.Errorf("expected 3 sessions, got %d", stats.TotalSessions)
	}
	if stats.CompletedSessions != 2 || stats.IncompleteSessions != 1 {
		t.Errorf("expected 2 completed and 1 incomplete, got %d and %d",
			stats.CompletedSessions, stats.IncompleteSessions)
	}
	if stats.TotalWorkTime != 50 {
		t.Errorf("expected 50 minutes of work, got %d", stats.TotalWorkTime)
	}
	if stats.TotalBreakTime != 5 {
		t.Errorf("expected 5 minutes of break, got %d", stats.TotalBreakTime)
	}
	want := float64(55) / 3
	if stats.AverageSessionLength < want-0.01 || stats.AverageSessionLength > want+0.01 {
		t.Errorf("expected average near %.2f, got %.2f", want, stats.AverageSessionLength)
	}
}

func TestPomodoroService_ListSessions_DayFilter(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := NewPomodoroService(db)

	if _, err := svc.Start(ctx, 1, nil, 25, domain.PomodoroWork); err != nil {
		t.Fatalf("start: %v", err)
	}

	today := time.Now().UTC()
	sessions, err := svc.ListSessions(ctx, 1, &today, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("expected 1 session today, got %d", len(sessions))
	}

	yesterday := today.AddDate(0, 0, -1)
	sessions, err = svc.ListSessions(ctx, 1, &yesterday, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no sessions yesterday, got %d", len(sessions))
	}
}
