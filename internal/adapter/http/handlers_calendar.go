package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"taskplanner/internal/app"
	"taskplanner/internal/domain"
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "start must be RFC 3339")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "end must be RFC 3339")
		return
	}

	events, err := s.calendar.EventsInRange(r.Context(), userFrom(r.Context()).ID, start, end)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, events, "")
}

type eventPayload struct {
	Title       string    `json:"title" validate:"required"`
	Description *string   `json:"description"`
	StartAt     time.Time `json:"start" validate:"required"`
	EndAt       time.Time `json:"end" validate:"required"`
	AllDay      bool      `json:"all_day"`
	TaskID      *int64    `json:"task_id"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var payload eventPayload
	if err := s.decode(r, &payload); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	event := &domain.CalendarEvent{
		UserID:      userFrom(r.Context()).ID,
		TaskID:      payload.TaskID,
		Title:       payload.Title,
		Description: payload.Description,
		StartAt:     payload.StartAt,
		EndAt:       payload.EndAt,
		AllDay:      payload.AllDay,
	}
	created, err := s.calendar.CreateEvent(r.Context(), event)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusCreated, created, "event created")
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var update domain.CalendarEventUpdate
	if err := parseJSON(r, &update); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	event, err := s.calendar.UpdateEvent(r.Context(), userFrom(r.Context()).ID, id, update)
	if errors.Is(err, app.ErrNotFound) {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, event, "event updated")
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.calendar.DeleteEvent(r.Context(), userFrom(r.Context()).ID, id)
	if errors.Is(err, app.ErrNotFound) {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("delete event")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, nil, "event deleted")
}

// handleCalendarSync acknowledges a sync request. External calendar
// providers are not wired up, so the count is always zero.
func (s *Server) handleCalendarSync(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"synced_events": 0}, "sync complete")
}
