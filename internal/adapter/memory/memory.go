// Package memory implements in-memory repositories for development and
// testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskplanner/internal/domain"
)

// DB implements every domain repository in memory, guarded by one mutex.
type DB struct {
	mu            sync.Mutex
	users         []*domain.User
	sessions      map[string]*domain.Session
	tasks         map[int64]*domain.Task
	pomodoros     map[int64]*domain.PomodoroSession
	events        map[int64]*domain.CalendarEvent
	notifications map[int64]*domain.Notification

	userID         int64
	taskID         int64
	pomodoroID     int64
	eventID        int64
	notificationID int64
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		sessions:      make(map[string]*domain.Session),
		tasks:         make(map[int64]*domain.Task),
		pomodoros:     make(map[int64]*domain.PomodoroSession),
		events:        make(map[int64]*domain.CalendarEvent),
		notifications: make(map[int64]*domain.Notification),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)
var _ domain.TaskRepository = (*DB)(nil)
var _ domain.PomodoroRepository = (*DB)(nil)
var _ domain.CalendarRepository = (*DB)(nil)
var _ domain.NotificationRepository = (*DB)(nil)

// --- UserRepository ---

// GetByEmail retrieves a user by email, or nil when absent.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID, or nil when absent.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, email, name, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return nil, domain.ErrDuplicateEmail
		}
	}

	db.userID++
	u := &domain.User{
		ID:           db.userID,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a session repository sharing the DB's state.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create stores a new session keyed by token.
func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cp := *s
	r.db.sessions[s.Token] = &cp
	return nil
}

// GetByToken retrieves a session row regardless of validity, or nil when the
// token is unknown. Rows are never deleted; revoked and expired sessions
// stay for listing and audit.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[token]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// TouchLastUsed bumps last_used_at.
func (r *SessionRepo) TouchLastUsed(ctx context.Context, token string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		s.LastUsedAt = at
	}
	return nil
}

// Revoke flips active=false on a currently-active session.
func (r *SessionRepo) Revoke(ctx context.Context, token string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[token]
	if !ok || !s.Active {
		return false, nil
	}
	s.Active = false
	return true, nil
}

// RevokeAllForUser flips every active session of the user.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for _, s := range r.db.sessions {
		if s.UserID == userID && s.Active {
			s.Active = false
			n++
		}
	}
	return n, nil
}

// MarkExpired flips active=false on sessions already past their expiry.
func (r *SessionRepo) MarkExpired(ctx context.Context, at time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for _, s := range r.db.sessions {
		if s.Active && !s.ExpiresAt.After(at) {
			s.Active = false
			n++
		}
	}
	return n, nil
}

// ListActiveByUser returns the user's active sessions, newest first.
func (r *SessionRepo) ListActiveByUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Session
	for _, s := range r.db.sessions {
		if s.UserID == userID && s.Active {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// --- TaskRepository ---

// CreateTask stores a new task.
func (db *DB) CreateTask(ctx context.Context, t *domain.Task) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.taskID++
	t.ID = db.taskID
	t.CreatedAt = time.Now().UTC()
	cp := *t
	db.tasks[t.ID] = &cp
	return nil
}

// GetTask retrieves one task owned by the user, or nil when absent.
func (db *DB) GetTask(ctx context.Context, userID, id int64) (*domain.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tasks[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

// ListTasks returns a page of the user's tasks plus the unpaged total.
func (db *DB) ListTasks(ctx context.Context, userID int64, f domain.TaskFilter, offset, limit int) ([]domain.Task, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var all []domain.Task
	for _, t := range db.tasks {
		if t.UserID != userID {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

// UpdateTask applies a partial update, or returns nil when the task is
// absent.
func (db *DB) UpdateTask(ctx context.Context, userID, id int64, u domain.TaskUpdate) (*domain.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.applyTaskUpdate(userID, id, u), nil
}

func (db *DB) applyTaskUpdate(userID, id int64, u domain.TaskUpdate) *domain.Task {
	t, ok := db.tasks[id]
	if !ok || t.UserID != userID {
		return nil
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.DueDate != nil {
		t.DueDate = u.DueDate
	}
	if u.EstimatedDuration != nil {
		t.EstimatedDuration = u.EstimatedDuration
	}
	if u.ActualDuration != nil {
		t.ActualDuration = u.ActualDuration
	}
	if u.Tags != nil {
		t.Tags = *u.Tags
	}
	now := time.Now().UTC()
	t.UpdatedAt = &now
	cp := *t
	return &cp
}

// DeleteTask removes one task owned by the user.
func (db *DB) DeleteTask(ctx context.Context, userID, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tasks[id]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(db.tasks, id)
	return true, nil
}

// BulkUpdateTasks validates every entry before applying any of them.
func (db *DB) BulkUpdateTasks(ctx context.Context, userID int64, entries []domain.TaskBulkEntry) ([]domain.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, e := range entries {
		t, ok := db.tasks[e.ID]
		if !ok || t.UserID != userID {
			return nil, domain.ErrTaskNotFound
		}
	}

	out := make([]domain.Task, 0, len(entries))
	for _, e := range entries {
		out = append(out, *db.applyTaskUpdate(userID, e.ID, e.Updates))
	}
	return out, nil
}

// --- PomodoroRepository ---

// CreatePomodoro stores a new pomodoro session.
func (db *DB) CreatePomodoro(ctx context.Context, p *domain.PomodoroSession) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.pomodoroID++
	p.ID = db.pomodoroID
	p.CreatedAt = time.Now().UTC()
	cp := *p
	db.pomodoros[p.ID] = &cp
	return nil
}

// GetPomodoro retrieves one session owned by the user, or nil when absent.
func (db *DB) GetPomodoro(ctx context.Context, userID, id int64) (*domain.PomodoroSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.pomodoros[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// EndPomodoro stamps end_time and marks the session completed.
func (db *DB) EndPomodoro(ctx context.Context, userID, id int64, endedAt time.Time) (*domain.PomodoroSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.pomodoros[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	p.EndTime = &endedAt
	p.Completed = true
	cp := *p
	return &cp, nil
}

// ListPomodoros returns a page of the user's sessions, optionally limited to
// one calendar day.
func (db *DB) ListPomodoros(ctx context.Context, userID int64, day *time.Time, offset, limit int) ([]domain.PomodoroSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var all []domain.PomodoroSession
	for _, p := range db.pomodoros {
		if p.UserID != userID {
			continue
		}
		if day != nil {
			start := day.UTC().Truncate(24 * time.Hour)
			if p.StartTime.Before(start) || !p.StartTime.Before(start.Add(24*time.Hour)) {
				continue
			}
		}
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].StartTime.After(all[j].StartTime)
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ListPomodorosSince returns every session starting at or after since.
func (db *DB) ListPomodorosSince(ctx context.Context, userID int64, since time.Time) ([]domain.PomodoroSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.PomodoroSession
	for _, p := range db.pomodoros {
		if p.UserID == userID && !p.StartTime.Before(since) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

// --- CalendarRepository ---

// CreateEvent stores a new calendar event.
func (db *DB) CreateEvent(ctx context.Context, e *domain.CalendarEvent) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.eventID++
	e.ID = db.eventID
	e.CreatedAt = time.Now().UTC()
	cp := *e
	db.events[e.ID] = &cp
	return nil
}

// ListEventsInRange returns the user's events fully contained in
// [start, end].
func (db *DB) ListEventsInRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.CalendarEvent, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.CalendarEvent
	for _, e := range db.events {
		if e.UserID == userID && !e.StartAt.Before(start) && !e.EndAt.After(end) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out, nil
}

// UpdateEvent applies a partial update, or returns nil when the event is
// absent.
func (db *DB) UpdateEvent(ctx context.Context, userID, id int64, u domain.CalendarEventUpdate) (*domain.CalendarEvent, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.events[id]
	if !ok || e.UserID != userID {
		return nil, nil
	}
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = u.Description
	}
	if u.StartAt != nil {
		e.StartAt = *u.StartAt
	}
	if u.EndAt != nil {
		e.EndAt = *u.EndAt
	}
	if u.AllDay != nil {
		e.AllDay = *u.AllDay
	}
	if u.TaskID != nil {
		e.TaskID = u.TaskID
	}
	now := time.Now().UTC()
	e.UpdatedAt = &now
	cp := *e
	return &cp, nil
}

// DeleteEvent removes one event owned by the user.
func (db *DB) DeleteEvent(ctx context.Context, userID, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.events[id]
	if !ok || e.UserID != userID {
		return false, nil
	}
	delete(db.events, id)
	return true, nil
}

// --- NotificationRepository ---

// CreateNotification stores a new notification.
func (db *DB) CreateNotification(ctx context.Context, n *domain.Notification) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.notificationID++
	n.ID = db.notificationID
	n.CreatedAt = time.Now().UTC()
	cp := *n
	db.notifications[n.ID] = &cp
	return nil
}

// ListNotifications returns a page of the user's notifications plus the
// unpaged total.
func (db *DB) ListNotifications(ctx context.Context, userID int64, read *bool, offset, limit int) ([]domain.Notification, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var all []domain.Notification
	for _, n := range db.notifications {
		if n.UserID != userID {
			continue
		}
		if read != nil && n.Read != *read {
			continue
		}
		all = append(all, *n)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

// MarkRead flags one notification as read, or returns nil when absent.
func (db *DB) MarkRead(ctx context.Context, userID, id int64) (*domain.Notification, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n, ok := db.notifications[id]
	if !ok || n.UserID != userID {
		return nil, nil
	}
	n.Read = true
	cp := *n
	return &cp, nil
}

// MarkAllRead flags every unread notification of the user.
func (db *DB) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int64
	for _, x := range db.notifications {
		if x.UserID == userID && !x.Read {
			x.Read = true
			n++
		}
	}
	return n, nil
}

// DeleteNotification removes one notification owned by the user.
func (db *DB) DeleteNotification(ctx context.Context, userID, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n, ok := db.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(db.notifications, id)
	return true, nil
}
