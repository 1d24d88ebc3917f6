package adapthttp

import (
	"net/http"

	"taskplanner/internal/domain"
)

type aiParsePayload struct {
	Command string `json:"command" validate:"required"`
}

// handleAIParse turns a natural language command into task proposals and
// stores them as tasks flagged ai_generated.
func (s *Server) handleAIParse(w http.ResponseWriter, r *http.Request) {
	var payload aiParsePayload
	if err := s.decode(r, &payload); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := s.parser.ParseCommand(r.Context(), payload.Command)
	if err != nil {
		s.logger.Error().Err(err).Msg("ai parse")
		respondError(w, http.StatusBadGateway, "task parsing is unavailable")
		return
	}

	user := userFrom(r.Context())
	created := make([]domain.Task, 0, len(result.Tasks))
	for _, pt := range result.Tasks {
		task := &domain.Task{
			UserID:            user.ID,
			Title:             pt.Title,
			Priority:          pt.Priority,
			DueDate:           pt.DueDate,
			EstimatedDuration: pt.EstimatedDuration,
			AIGenerated:       true,
		}
		if pt.Description != "" {
			desc := pt.Description
			task.Description = &desc
		}
		stored, err := s.tasks.Create(r.Context(), task)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		created = append(created, *stored)
	}

	respond(w, http.StatusOK, map[string]any{
		"tasks":      created,
		"confidence": result.Confidence,
	}, result.Message)
}

type aiSuggestPayload struct {
	Context string `json:"context" validate:"required"`
}

// handleAISuggest returns task proposals without storing anything.
func (s *Server) handleAISuggest(w http.ResponseWriter, r *http.Request) {
	var payload aiSuggestPayload
	if err := s.decode(r, &payload); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	suggestions, err := s.parser.SuggestTasks(r.Context(), payload.Context)
	if err != nil {
		s.logger.Error().Err(err).Msg("ai suggest")
		respondError(w, http.StatusBadGateway, "task suggestion is unavailable")
		return
	}
	respond(w, http.StatusOK, map[string]any{"suggestions": suggestions}, "")
}
