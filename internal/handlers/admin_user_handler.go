package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/models"
	"github.com/agentiqhub/backend/libs/handlers"
)

// AdminUserService is the interface that wraps methods for managing users and their course access.
type AdminUserService interface {
	// Method ListUsers returns all user profiles.
	ListUsers(ctx context.Context) ([]models.ProfileListItem, error)
	// Method UpdateTier changes a user's subscription tier.
	UpdateTier(ctx context.Context, userID string, tier models.Tier) error
	// Method GrantAccess gives a user manual access to a course.
	GrantAccess(ctx context.Context, req *models.GrantAccessRequest) error
	// Method RevokeAccess removes a user's access record for a course.
	RevokeAccess(ctx context.Context, userID string, courseID int) error
	// Method ListUserAccess returns a user's course access records.
	ListUserAccess(ctx context.Context, userID string) ([]models.UserCourseAccess, error)
}

// AdminUserHandler handles admin user management HTTP requests
type AdminUserHandler struct {
	handlers.BaseHandler
	userService AdminUserService
	validate    *validator.Validate
}

// NewAdminUserHandler creates a new admin user handler
func NewAdminUserHandler(userService AdminUserService, logger *zap.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		userService: userService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers all admin user routes.
// Note: the router must already carry the admin middleware.
func (h *AdminUserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Patch("/{id}/tier", h.UpdateTier)
		r.Get("/{id}/access", h.ListUserAccess)
		r.Delete("/{id}/access/{courseId}", h.RevokeAccess)
	})
	r.Post("/access", h.GrantAccess)
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Description Get every user profile
// @Tags admin-users
// @Produce json
// @Success 200 {array} models.ProfileListItem "List of users"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users [get]
func (h *AdminUserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		h.Logger.Error("failed to list users", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// UpdateTier handles PATCH /admin/users/{id}/tier
// @Summary Update a user's tier
// @Description Change a user's subscription tier
// @Tags admin-users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.UpdateTierRequest true "New tier"
// @Success 200 {object} map[string]string "Tier updated"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/users/{id}/tier [patch]
func (h *AdminUserHandler) UpdateTier(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req models.UpdateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "tier must be free or premium")
		return
	}

	if err := h.userService.UpdateTier(r.Context(), userID, req.Tier); err != nil {
		h.respondServiceError(w, err, "failed to update tier")
		return
	}

	h.Logger.Info("user tier updated", zap.String("user_id", userID), zap.String("tier", string(req.Tier)))
	h.RespondMessage(w, http.StatusOK, "tier updated")
}

// ListUserAccess handles GET /admin/users/{id}/access
// @Summary List a user's course access
// @Description Get a user's course access records
// @Tags admin-users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} models.UserCourseAccess "Access records"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users/{id}/access [get]
func (h *AdminUserHandler) ListUserAccess(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	access, err := h.userService.ListUserAccess(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list user access", zap.String("user_id", userID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list user access")
		return
	}

	h.RespondJSON(w, http.StatusOK, access)
}

// GrantAccess handles POST /admin/access
// @Summary Grant course access
// @Description Give a user manual access to a course
// @Tags admin-users
// @Accept json
// @Produce json
// @Param request body models.GrantAccessRequest true "User and course"
// @Success 200 {object} map[string]string "Access granted"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "User or course not found"
// @Router /admin/access [post]
func (h *AdminUserHandler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	var req models.GrantAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "userId and courseId are required")
		return
	}

	if err := h.userService.GrantAccess(r.Context(), &req); err != nil {
		h.respondServiceError(w, err, "failed to grant access")
		return
	}

	h.Logger.Info("access granted", zap.String("user_id", req.UserID), zap.Int("course_id", req.CourseID))
	h.RespondMessage(w, http.StatusOK, "access granted")
}

// RevokeAccess handles DELETE /admin/users/{id}/access/{courseId}
// @Summary Revoke course access
// @Description Remove a user's access record for a course
// @Tags admin-users
// @Produce json
// @Param id path string true "User ID"
// @Param courseId path int true "Course ID"
// @Success 200 {object} map[string]string "Access revoked"
// @Failure 400 {object} map[string]string "Invalid course ID"
// @Failure 404 {object} map[string]string "Access record not found"
// @Router /admin/users/{id}/access/{courseId} [delete]
func (h *AdminUserHandler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	courseID, err := strconv.Atoi(chi.URLParam(r, "courseId"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid course ID")
		return
	}

	if err := h.userService.RevokeAccess(r.Context(), userID, courseID); err != nil {
		h.respondServiceError(w, err, "failed to revoke access")
		return
	}

	h.Logger.Info("access revoked", zap.String("user_id", userID), zap.Int("course_id", courseID))
	h.RespondMessage(w, http.StatusOK, "access revoked")
}

// respondServiceError maps a user service error to an HTTP response
func (h *AdminUserHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	if strings.Contains(err.Error(), "not found") {
		h.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.Logger.Error(logMsg, zap.Error(err))
	h.RespondError(w, http.StatusBadRequest, err.Error())
}
