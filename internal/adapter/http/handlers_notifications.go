package adapthttp

import (
	"errors"
	"net/http"
	"strconv"

	"taskplanner/internal/app"
	"taskplanner/internal/domain"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)

	var read *bool
	if v := r.URL.Query().Get("read"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "read must be a boolean")
			return
		}
		read = &parsed
	}

	notifications, total, err := s.notifications.List(r.Context(), userFrom(r.Context()).ID, read, skip, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list notifications")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, newPaginated(notifications, total, skip, limit), "")
}

type notificationPayload struct {
	Title   string                  `json:"title" validate:"required"`
	Message string                  `json:"message" validate:"required"`
	Type    domain.NotificationType `json:"type"`
	TaskID  *int64                  `json:"task_id"`
}

func (s *Server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var payload notificationPayload
	if err := s.decode(r, &payload); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	n := &domain.Notification{
		UserID:  userFrom(r.Context()).ID,
		TaskID:  payload.TaskID,
		Title:   payload.Title,
		Message: payload.Message,
		Type:    payload.Type,
	}
	created, err := s.notifications.Create(r.Context(), n)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusCreated, created, "notification created")
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := s.notifications.MarkRead(r.Context(), userFrom(r.Context()).ID, id)
	if errors.Is(err, app.ErrNotFound) {
		respondError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("mark read")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, n, "notification marked read")
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.notifications.MarkAllRead(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("mark all read")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, map[string]any{"marked_read": n}, "all notifications marked read")
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.notifications.Delete(r.Context(), userFrom(r.Context()).ID, id)
	if errors.Is(err, app.ErrNotFound) {
		respondError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("delete notification")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, nil, "notification deleted")
}
