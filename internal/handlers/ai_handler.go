package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/models"
	"github.com/agentiqhub/backend/libs/handlers"
)

// AIService is the interface that wraps the content generation bridge.
type AIService interface {
	// Method Generate runs one generation action and returns the model output,
	// parsed into structured content where the action calls for it.
	Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error)
}

// AIHandler handles AI content generation HTTP requests
type AIHandler struct {
	handlers.BaseHandler
	aiService AIService
	validate  *validator.Validate
}

// NewAIHandler creates a new AI handler
func NewAIHandler(aiService AIService, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		aiService:   aiService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers all AI handler routes.
// Note: the router must already carry the admin middleware.
func (h *AIHandler) RegisterRoutes(r chi.Router) {
	r.Post("/ai/generate", h.Generate)
}

// Generate handles POST /admin/ai/generate
// @Summary Generate course content
// @Description Run one AI generation action (course outline, lessons, quiz, improvements, chat)
// @Tags admin-ai
// @Accept json
// @Produce json
// @Param request body models.GenerateRequest true "Action and payload"
// @Success 200 {object} models.GenerateResponse "Generated content"
// @Failure 400 {object} map[string]string "Invalid request or unknown action"
// @Failure 500 {object} map[string]string "Generation backend unavailable"
// @Router /admin/ai/generate [post]
func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "action is required")
		return
	}

	resp, err := h.aiService.Generate(r.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "unknown action") {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("generation failed", zap.String("action", string(req.Action)), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
