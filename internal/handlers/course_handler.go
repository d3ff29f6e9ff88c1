package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/models"
	"github.com/agentiqhub/backend/libs/auth/middleware"
	"github.com/agentiqhub/backend/libs/handlers"
)

// CatalogService is the interface that wraps methods for the learner-facing catalog.
type CatalogService interface {
	// Method ListCourses retrieves the catalog visible to one user.
	//
	// "userID" parameter is the ID of the user.
	// "isInternal" parameter marks internal staff accounts; internal courses are listed only for them.
	//
	// Returns the course list and an error if any.
	ListCourses(ctx context.Context, userID string, isInternal bool) ([]models.CourseListItem, error)
	// Method GetCourseDetail retrieves a course with sections and per-module lock state.
	//
	// "slug" parameter identifies the course.
	// "userID" parameter is the ID of the user.
	// "isInternal" parameter marks internal staff accounts.
	//
	// Returns the detail response and an error if any.
	GetCourseDetail(ctx context.Context, slug, userID string, isInternal bool) (*models.CourseDetailResponse, error)
	// Method EnrollFree records a free-course enrollment; paid courses are refused.
	//
	// "userID" parameter is the ID of the user.
	// "slug" parameter identifies the course.
	// "isInternal" parameter marks internal staff accounts; internal courses enroll only for them.
	//
	// Returns an error if any.
	EnrollFree(ctx context.Context, userID, slug string, isInternal bool) error
	// Method ListCertificates retrieves a user's certificates.
	//
	// "userID" parameter is the ID of the user.
	//
	// Returns the certificates and an error if any.
	ListCertificates(ctx context.Context, userID string) ([]models.Certificate, error)
	// Method GetCertificate retrieves a user's certificate for one course.
	//
	// "userID" parameter is the ID of the user.
	// "courseID" parameter is the ID of the course.
	//
	// If no certificate exists the error will be returned together with a nil certificate.
	GetCertificate(ctx context.Context, userID string, courseID int) (*models.Certificate, error)
}

// CourseHandler handles learner-facing catalog HTTP requests
type CourseHandler struct {
	handlers.BaseHandler
	catalogService CatalogService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(catalogService CatalogService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:    handlers.BaseHandler{Logger: logger},
		catalogService: catalogService,
	}
}

// RegisterRoutes registers all course handler routes.
// Note: the router must already carry the auth middleware.
func (h *CourseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.ListCourses)
		r.Get("/{slug}", h.GetCourseDetail)
		r.Post("/{slug}/enroll", h.Enroll)
	})
	r.Route("/certificates", func(r chi.Router) {
		r.Get("/", h.ListCertificates)
		r.Get("/{courseId}", h.GetCertificate)
	})
}

// ListCourses handles GET /courses
// @Summary List courses
// @Description Get active courses visible to the user with module/lesson counts and enrollment status
// @Tags courses
// @Produce json
// @Success 200 {array} models.CourseListItem "List of courses"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses [get]
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	courses, err := h.catalogService.ListCourses(r.Context(), claims.UserID, claims.IsInternal)
	if err != nil {
		h.Logger.Error("failed to list courses", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// GetCourseDetail handles GET /courses/{slug}
// @Summary Get course detail
// @Description Get a course with its section layout and per-module lock and completion state
// @Tags courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} models.CourseDetailResponse "Course detail"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug} [get]
func (h *CourseHandler) GetCourseDetail(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	slug := chi.URLParam(r, "slug")

	detail, err := h.catalogService.GetCourseDetail(r.Context(), slug, claims.UserID, claims.IsInternal)
	if err != nil {
		h.Logger.Error("failed to get course detail", zap.String("slug", slug), zap.Error(err))
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			errStatus = http.StatusNotFound
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, detail)
}

// Enroll handles POST /courses/{slug}/enroll
// @Summary Enroll in a free course
// @Description Record a free-course enrollment; paid courses go through checkout
// @Tags courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} map[string]string "Enrolled"
// @Failure 400 {object} map[string]string "Course requires purchase"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Course not found"
// @Router /courses/{slug}/enroll [post]
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	slug := chi.URLParam(r, "slug")

	if err := h.catalogService.EnrollFree(r.Context(), claims.UserID, slug, claims.IsInternal); err != nil {
		h.Logger.Error("failed to enroll", zap.String("slug", slug), zap.Error(err))
		errStatus := http.StatusBadRequest
		if strings.Contains(err.Error(), "not found") {
			errStatus = http.StatusNotFound
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondMessage(w, http.StatusOK, "enrolled successfully")
}

// ListCertificates handles GET /certificates
// @Summary List certificates
// @Description Get the authenticated user's certificates, newest first
// @Tags certificates
// @Produce json
// @Success 200 {array} models.Certificate "List of certificates"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /certificates [get]
func (h *CourseHandler) ListCertificates(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	certs, err := h.catalogService.ListCertificates(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list certificates", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, certs)
}

// GetCertificate handles GET /certificates/{courseId}
// @Summary Get a certificate
// @Description Get the authenticated user's certificate for one course
// @Tags certificates
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.Certificate "Certificate"
// @Failure 400 {object} map[string]string "Invalid course ID"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Certificate not found"
// @Router /certificates/{courseId} [get]
func (h *CourseHandler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	courseID, err := strconv.Atoi(chi.URLParam(r, "courseId"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid course ID")
		return
	}

	cert, err := h.catalogService.GetCertificate(r.Context(), userID, courseID)
	if err != nil {
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			errStatus = http.StatusNotFound
		} else {
			h.Logger.Error("failed to get certificate", zap.Error(err))
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, cert)
}
