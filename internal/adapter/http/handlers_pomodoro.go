package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"taskplanner/internal/app"
	"taskplanner/internal/domain"
)

type startPomodoroPayload struct {
	TaskID   *int64              `json:"task_id"`
	Duration int                 `json:"duration" validate:"required,gt=0"` // minutes
	Type     domain.PomodoroType `json:"type"`
}

func (s *Server) handleStartPomodoro(w http.ResponseWriter, r *http.Request) {
	var payload startPomodoroPayload
	if err := s.decode(r, &payload); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	session, err := s.pomodoro.Start(r.Context(), userFrom(r.Context()).ID, payload.TaskID, payload.Duration, payload.Type)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusCreated, session, "session started")
}

func (s *Server) handleEndPomodoro(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := s.pomodoro.End(r.Context(), userFrom(r.Context()).ID, id)
	switch {
	case errors.Is(err, app.ErrNotFound):
		respondError(w, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, app.ErrSessionEnded):
		respondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.logger.Error().Err(err).Msg("end pomodoro")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, session, "session ended")
}

func (s *Server) handleListPomodoros(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)

	var day *time.Time
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = &parsed
	}

	sessions, err := s.pomodoro.ListSessions(r.Context(), userFrom(r.Context()).ID, day, skip, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list pomodoros")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, sessions, "")
}

func (s *Server) handlePomodoroStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.pomodoro.Stats(r.Context(), userFrom(r.Context()).ID, r.URL.Query().Get("period"))
	if err != nil {
		s.logger.Error().Err(err).Msg("pomodoro stats")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, stats, "")
}
