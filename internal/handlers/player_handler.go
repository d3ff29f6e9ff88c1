package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/models"
	"github.com/agentiqhub/backend/internal/player"
	"github.com/agentiqhub/backend/libs/auth/middleware"
	"github.com/agentiqhub/backend/libs/handlers"
)

// PlayerService is the interface that wraps methods for driving a learner's course session.
type PlayerService interface {
	// Method StartSession opens (or reopens) a session for one course, seeded from persisted progress.
	//
	// "userID" parameter is the ID of the user.
	// "slug" parameter identifies the course.
	// "isInternal" parameter marks internal staff accounts.
	//
	// Returns the session view and an error if any.
	StartSession(ctx context.Context, userID, slug string, isInternal bool) (player.SessionView, error)
	// Method EndSession drops the learner's live session, if any.
	EndSession(userID, slug string)
	// Method GetView returns a snapshot of the session.
	GetView(userID, slug string) (player.SessionView, error)
	// Method EnterModule opens a module at its first lesson. Locked modules are refused.
	EnterModule(userID, slug string, moduleID int) (player.SessionView, error)
	// Method SelectLesson jumps to a lesson inside the current module.
	SelectLesson(userID, slug string, lessonIndex int) (player.SessionView, error)
	// Method CompleteLesson marks a lesson done and advances to the next lesson or the quiz.
	CompleteLesson(userID, slug, lessonID string) (player.SessionView, error)
	// Method SelectQuizAnswer records an answer on the open quiz attempt.
	SelectQuizAnswer(userID, slug string, questionIndex, optionIndex int) (player.SessionView, error)
	// Method SubmitQuiz grades the open attempt and returns the result with the post-submission view.
	SubmitQuiz(userID, slug string) (*player.QuizResult, player.SessionView, error)
	// Method RetryQuiz resets the open attempt.
	RetryQuiz(userID, slug string) (player.SessionView, error)
	// Method ExitToDashboard leaves the current lesson or quiz.
	ExitToDashboard(userID, slug string) (player.SessionView, error)
	// Method IssueCertificate hands back the certificate for a completed course,
	// issuing it if needed. An incomplete course is refused.
	IssueCertificate(ctx context.Context, userID, slug string, isInternal bool) (*models.Certificate, error)
}

// PlayerHandler handles course player HTTP requests
type PlayerHandler struct {
	handlers.BaseHandler
	playerService PlayerService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService PlayerService, logger *zap.Logger) *PlayerHandler {
	return &PlayerHandler{
		BaseHandler:   handlers.BaseHandler{Logger: logger},
		playerService: playerService,
	}
}

// RegisterRoutes registers all player handler routes.
// Note: the router must already carry the auth middleware.
func (h *PlayerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/player/courses/{slug}", func(r chi.Router) {
		r.Post("/session", h.StartSession)
		r.Delete("/session", h.EndSession)
		r.Get("/", h.GetView)
		r.Post("/modules/{moduleId}/enter", h.EnterModule)
		r.Post("/lessons/select", h.SelectLesson)
		r.Post("/lessons/{lessonId}/complete", h.CompleteLesson)
		r.Post("/quiz/answer", h.SelectQuizAnswer)
		r.Post("/quiz/submit", h.SubmitQuiz)
		r.Post("/quiz/retry", h.RetryQuiz)
		r.Post("/exit", h.ExitToDashboard)
		r.Post("/certificate", h.IssueCertificate)
	})
}

// SelectLessonRequest picks a lesson inside the current module
type SelectLessonRequest struct {
	Index int `json:"index"`
}

// QuizAnswerRequest records one quiz answer
type QuizAnswerRequest struct {
	Question int `json:"question"`
	Option   int `json:"option"`
}

// StartSession handles POST /player/courses/{slug}/session
// @Summary Start a course session
// @Description Open (or reopen) a session for the course, seeded from persisted progress
// @Tags player
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} player.SessionView "Session view"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /player/courses/{slug}/session [post]
func (h *PlayerHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	slug := chi.URLParam(r, "slug")

	view, err := h.playerService.StartSession(r.Context(), claims.UserID, slug, claims.IsInternal)
	if err != nil {
		h.Logger.Error("failed to start session", zap.String("slug", slug), zap.Error(err))
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			errStatus = http.StatusNotFound
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// EndSession handles DELETE /player/courses/{slug}/session
// @Summary End a course session
// @Description Drop the learner's live session for the course
// @Tags player
// @Produce json
// @Param slug path string true "Course slug"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /player/courses/{slug}/session [delete]
func (h *PlayerHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.playerService.EndSession(userID, chi.URLParam(r, "slug"))
	w.WriteHeader(http.StatusNoContent)
}

// GetView handles GET /player/courses/{slug}
// @Summary Get session view
// @Description Get a snapshot of the learner's session
// @Tags player
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} player.SessionView "Session view"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 409 {object} map[string]string "No active session"
// @Router /player/courses/{slug} [get]
func (h *PlayerHandler) GetView(w http.ResponseWriter, r *http.Request) {
	h.respondSessionOp(w, r, func(userID, slug string) (player.SessionView, error) {
		return h.playerService.GetView(userID, slug)
	})
}

// EnterModule handles POST /player/courses/{slug}/modules/{moduleId}/enter
// @Summary Enter a module
// @Description Open a module at its first lesson; locked modules are refused
// @Tags player
// @Produce json
// @Param slug path string true "Course slug"
// @Param moduleId path int true "Module ID"
// @Success 200 {object} player.SessionView "Session view"
// @Failure 400 {object} map[string]string "Invalid module ID or empty module"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Module locked"
// @Failure 404 {object} map[string]string "Module not found"
// @Failure 409 {object} map[string]string "No active session"
// @Router /player/courses/{slug}/modules/{moduleId}/enter [post]
func (h *PlayerHandler) EnterModule(w http.ResponseWriter, r *http.Request) {
	moduleID, err := strconv.Atoi(chi.URLParam(r, "moduleId"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid module ID")
		return
	}

	h.respondSessionOp(w, r, func(userID, slug string) (player.SessionView, error) {
		return h.playerService.EnterModule(userID, slug, moduleID)
	})
}

// SelectLesson handles POST /player/courses/{slug}/lessons/select
// @Summary Select a lesson
// @Description Jump to a lesson inside the current module
// @Tags player
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param request body SelectLessonRequest true "Lesson index"
// @Success 200 {object} player.SessionView "Session view"
// @Failure 400 {object} map[string]string "Invalid request or lesson index"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 409 {object} map[string]string "No active session"
// @Router /player/courses/{slug}/lessons/select [post]
func (h *PlayerHandler) SelectLesson(w http.ResponseWriter, r *http.Request) {
	var req SelectLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.respondSessionOp(w, r, func(userID, slug string) (player.SessionView, error) {
		return h.playerService.SelectLesson(userID, slug, req.Index)
	})
}

// CompleteLesson handles POST /player/courses/{slug}/lessons/{lessonId}/complete
// @Summary Complete a lesson
// @Description Mark a lesson done and advance to the next lesson or the module quiz
// @Tags player
// @Produce json
// @Param slug path string true "Course slug"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} player.SessionView "Session view"
// @Failure 400 {object} map[string]string "Lesson not in current module"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 409 {object} map[string]string "No active session"
// @Router /player/courses/{slug}/lessons/{lessonId}/complete [post]
func (h *PlayerHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "lessonId")

	h.respondSessionOp(w, r, func(userID, slug string) (player.SessionView, error) {
		return h.playerService.CompleteLesson(userID, slug, lessonID)
	})
}

// SelectQuizAnswer handles POST /player/courses/{slug}/quiz/answer
// @Summary Answer a quiz question
// @Description Record (or overwrite) an answer on the open quiz attempt
// @Tags player
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param request body QuizAnswerRequest true "Question and option indexes"
// @Success 200 {object} player.SessionView "Session view"
// @Failure 400 {object} map[string]string "Invalid request or index"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 409 {object} map[string]string "No active session"
// @Router /player/courses/{slug}/quiz/answer [post]
func (h *PlayerHandler) SelectQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req QuizAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.respondSessionOp(w, r, func(userID, slug string) (player.SessionView, error) {
		return h.playerService.SelectQuizAnswer(userID, slug, req.Question, req.Option)
	})
}

// SubmitQuiz handles POST /player/courses/{slug}/quiz/submit
// @Summary Submit the quiz
// @Description Grade the open attempt; on a pass the module is completed. Returns the result with per-question review and the post-submission view.
// @Tags player
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} map[string]any "Quiz result and session view"
// @Failure 400 {object} map[string]string "Not all questions answered"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 409 {object} map[string]string "No active session"
// @Router /player/courses/{slug}/quiz/submit [post]
func (h *PlayerHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	slug := chi.URLParam(r, "slug")

	result, view, err := h.playerService.SubmitQuiz(userID, slug)
	if err != nil {
		h.RespondError(w, playerErrStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"result": result,
		"view":   view,
	})
}

// RetryQuiz handles POST /player/courses/{slug}/quiz/retry
// @Summary Retry the quiz
// @Description Reset the open attempt to a fresh one
// @Tags player
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} player.SessionView "Session view"
// @Failure 400 {object} map[string]string "Not on the quiz screen"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 409 {object} map[string]string "No active session"
// @Router /player/courses/{slug}/quiz/retry [post]
func (h *PlayerHandler) RetryQuiz(w http.ResponseWriter, r *http.Request) {
	h.respondSessionOp(w, r, func(userID, slug string) (player.SessionView, error) {
		return h.playerService.RetryQuiz(userID, slug)
	})
}

// ExitToDashboard handles POST /player/courses/{slug}/exit
// @Summary Exit to the dashboard
// @Description Leave the current lesson or quiz without completion side effects
// @Tags player
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} player.SessionView "Session view"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 409 {object} map[string]string "No active session"
// @Router /player/courses/{slug}/exit [post]
func (h *PlayerHandler) ExitToDashboard(w http.ResponseWriter, r *http.Request) {
	h.respondSessionOp(w, r, func(userID, slug string) (player.SessionView, error) {
		return h.playerService.ExitToDashboard(userID, slug)
	})
}

// IssueCertificate handles POST /player/courses/{slug}/certificate
// @Summary Issue a certificate
// @Description Get the certificate for a completed course, issuing it if needed
// @Tags player
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} models.Certificate "Certificate"
// @Failure 400 {object} map[string]string "Course not complete"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Course not found"
// @Router /player/courses/{slug}/certificate [post]
func (h *PlayerHandler) IssueCertificate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	slug := chi.URLParam(r, "slug")

	cert, err := h.playerService.IssueCertificate(r.Context(), claims.UserID, slug, claims.IsInternal)
	if err != nil {
		errStatus := http.StatusBadRequest
		if strings.Contains(err.Error(), "not found") {
			errStatus = http.StatusNotFound
		} else if !strings.Contains(err.Error(), "not complete") {
			h.Logger.Error("failed to issue certificate", zap.String("slug", slug), zap.Error(err))
			errStatus = http.StatusInternalServerError
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, cert)
}

// respondSessionOp runs one session operation for the authenticated user and
// writes the resulting view or a mapped error
func (h *PlayerHandler) respondSessionOp(w http.ResponseWriter, r *http.Request, op func(userID, slug string) (player.SessionView, error)) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	view, err := op(userID, chi.URLParam(r, "slug"))
	if err != nil {
		h.RespondError(w, playerErrStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// playerErrStatus maps player state machine errors to HTTP statuses
func playerErrStatus(err error) int {
	switch {
	case errors.Is(err, player.ErrModuleLocked):
		return http.StatusForbidden
	case errors.Is(err, player.ErrModuleNotFound):
		return http.StatusNotFound
	case strings.Contains(err.Error(), "no active session"):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
