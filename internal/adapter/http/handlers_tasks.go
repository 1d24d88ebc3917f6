package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"taskplanner/internal/app"
	"taskplanner/internal/domain"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	skip, limit := pageParams(r)

	var filter domain.TaskFilter
	if v := r.URL.Query().Get("status"); v != "" {
		status := domain.TaskStatus(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("priority"); v != "" {
		priority := domain.TaskPriority(v)
		filter.Priority = &priority
	}

	tasks, total, err := s.tasks.List(r.Context(), user.ID, filter, skip, limit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, newPaginated(tasks, total, skip, limit), "")
}

type taskPayload struct {
	Title             string              `json:"title" validate:"required"`
	Description       *string             `json:"description"`
	Priority          domain.TaskPriority `json:"priority"`
	Status            domain.TaskStatus   `json:"status"`
	DueDate           *time.Time          `json:"due_date"`
	EstimatedDuration *int                `json:"estimated_duration"`
	Tags              []string            `json:"tags"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var payload taskPayload
	if err := s.decode(r, &payload); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	task := &domain.Task{
		UserID:            userFrom(r.Context()).ID,
		Title:             payload.Title,
		Description:       payload.Description,
		Priority:          payload.Priority,
		Status:            payload.Status,
		DueDate:           payload.DueDate,
		EstimatedDuration: payload.EstimatedDuration,
		Tags:              payload.Tags,
	}
	created, err := s.tasks.Create(r.Context(), task)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusCreated, created, "task created")
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.tasks.Get(r.Context(), userFrom(r.Context()).ID, id)
	if errors.Is(err, app.ErrNotFound) {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("get task")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, task, "")
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var update domain.TaskUpdate
	if err := parseJSON(r, &update); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	task, err := s.tasks.Update(r.Context(), userFrom(r.Context()).ID, id, update)
	if errors.Is(err, app.ErrNotFound) {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, task, "task updated")
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.tasks.Delete(r.Context(), userFrom(r.Context()).ID, id)
	if errors.Is(err, app.ErrNotFound) {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("delete task")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, nil, "task deleted")
}

type bulkUpdatePayload struct {
	Tasks []domain.TaskBulkEntry `json:"tasks" validate:"required,min=1,dive"`
}

func (s *Server) handleBulkUpdateTasks(w http.ResponseWriter, r *http.Request) {
	var payload bulkUpdatePayload
	if err := s.decode(r, &payload); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tasks, err := s.tasks.BulkUpdate(r.Context(), userFrom(r.Context()).ID, payload.Tasks)
	if errors.Is(err, app.ErrNotFound) {
		respondError(w, http.StatusNotFound, "one or more tasks not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, tasks, "tasks updated")
}
