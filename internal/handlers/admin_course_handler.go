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

// AdminContentService is the interface that wraps methods for managing course content.
type AdminContentService interface {
	// Method ListCourses returns all courses, including internal and inactive ones.
	ListCourses(ctx context.Context) ([]models.CourseListItem, error)
	// Method GetCourse returns one course by ID.
	GetCourse(ctx context.Context, id int) (*models.Course, error)
	// Method CreateCourse creates a new course. Duplicate slugs are refused.
	CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	// Method UpdateCourse applies a partial update to a course.
	UpdateCourse(ctx context.Context, id int, req *models.UpdateCourseRequest) error
	// Method DeleteCourse removes a course and its content.
	DeleteCourse(ctx context.Context, id int) error

	// Method ListModules returns a course's modules in sort order.
	ListModules(ctx context.Context, courseID int) ([]models.CourseModule, error)
	// Method GetModule returns one module with its lessons and quiz questions.
	GetModule(ctx context.Context, id int) (*models.CourseModule, error)
	// Method CreateModule creates a module at the end of its course's ordering.
	CreateModule(ctx context.Context, req *models.CreateModuleRequest) (*models.CourseModule, error)
	// Method UpdateModule applies a partial update to a module.
	UpdateModule(ctx context.Context, id int, req *models.UpdateModuleRequest) error
	// Method DeleteModule removes a module with its lessons and quiz.
	DeleteModule(ctx context.Context, id int) error
	// Method ReorderModules rewrites the sort order of a course's modules.
	// The ID list must name every module of the course exactly once.
	ReorderModules(ctx context.Context, courseID int, moduleIDs []int) error

	// Method GetLesson returns one lesson by ID.
	GetLesson(ctx context.Context, id string) (*models.Lesson, error)
	// Method CreateLesson creates a lesson inside a module.
	CreateLesson(ctx context.Context, req *models.CreateLessonRequest) (*models.Lesson, error)
	// Method UpdateLesson applies a partial update to a lesson.
	UpdateLesson(ctx context.Context, id string, req *models.UpdateLessonRequest) error
	// Method DeleteLesson removes a lesson.
	DeleteLesson(ctx context.Context, id string) error

	// Method CreateQuizQuestion appends a question to a module's quiz.
	CreateQuizQuestion(ctx context.Context, req *models.CreateQuizQuestionRequest) (*models.QuizQuestion, error)
	// Method UpdateQuizQuestion applies a partial update to a quiz question.
	UpdateQuizQuestion(ctx context.Context, id int, req *models.UpdateQuizQuestionRequest) error
	// Method DeleteQuizQuestion removes a quiz question.
	DeleteQuizQuestion(ctx context.Context, id int) error
}

// AdminCourseHandler handles admin content management HTTP requests
type AdminCourseHandler struct {
	handlers.BaseHandler
	contentService AdminContentService
	validate       *validator.Validate
}

// NewAdminCourseHandler creates a new admin course handler
func NewAdminCourseHandler(contentService AdminContentService, logger *zap.Logger) *AdminCourseHandler {
	return &AdminCourseHandler{
		BaseHandler:    handlers.BaseHandler{Logger: logger},
		contentService: contentService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers all admin content routes.
// Note: the router must already carry the admin middleware.
func (h *AdminCourseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.ListCourses)
		r.Post("/", h.CreateCourse)
		r.Get("/{id}", h.GetCourse)
		r.Patch("/{id}", h.UpdateCourse)
		r.Delete("/{id}", h.DeleteCourse)
		r.Get("/{id}/modules", h.ListModules)
		r.Put("/{id}/modules/reorder", h.ReorderModules)
	})
	r.Route("/modules", func(r chi.Router) {
		r.Post("/", h.CreateModule)
		r.Get("/{id}", h.GetModule)
		r.Patch("/{id}", h.UpdateModule)
		r.Delete("/{id}", h.DeleteModule)
	})
	r.Route("/lessons", func(r chi.Router) {
		r.Post("/", h.CreateLesson)
		r.Get("/{id}", h.GetLesson)
		r.Patch("/{id}", h.UpdateLesson)
		r.Delete("/{id}", h.DeleteLesson)
	})
	r.Route("/quizzes", func(r chi.Router) {
		r.Post("/", h.CreateQuizQuestion)
		r.Patch("/{id}", h.UpdateQuizQuestion)
		r.Delete("/{id}", h.DeleteQuizQuestion)
	})
}

// ListCourses handles GET /admin/courses
// @Summary List all courses
// @Description Get every course, including internal and inactive ones
// @Tags admin-content
// @Produce json
// @Success 200 {array} models.CourseListItem "List of courses"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/courses [get]
func (h *AdminCourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.contentService.ListCourses(r.Context())
	if err != nil {
		h.Logger.Error("failed to list courses", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /admin/courses/{id}
// @Summary Get a course
// @Description Get one course by ID
// @Tags admin-content
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course "Course"
// @Failure 400 {object} map[string]string "Invalid course ID"
// @Failure 404 {object} map[string]string "Course not found"
// @Router /admin/courses/{id} [get]
func (h *AdminCourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid course ID")
		return
	}

	course, err := h.contentService.GetCourse(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to get course")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// CreateCourse handles POST /admin/courses
// @Summary Create a course
// @Description Create a new course with a unique slug
// @Tags admin-content
// @Accept json
// @Produce json
// @Param request body models.CreateCourseRequest true "Course data"
// @Success 201 {object} models.Course "Created course"
// @Failure 400 {object} map[string]string "Invalid request or duplicate slug"
// @Router /admin/courses [post]
func (h *AdminCourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "slug, title and description are required")
		return
	}

	course, err := h.contentService.CreateCourse(r.Context(), &req)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Logger.Info("course created", zap.Int("course_id", course.ID), zap.String("slug", course.Slug))
	h.RespondJSON(w, http.StatusCreated, course)
}

// UpdateCourse handles PATCH /admin/courses/{id}
// @Summary Update a course
// @Description Apply a partial update to a course
// @Tags admin-content
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body models.UpdateCourseRequest true "Fields to update"
// @Success 200 {object} map[string]string "Course updated"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Course not found"
// @Router /admin/courses/{id} [patch]
func (h *AdminCourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid course ID")
		return
	}

	var req models.UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.contentService.UpdateCourse(r.Context(), id, &req); err != nil {
		h.respondServiceError(w, err, "failed to update course")
		return
	}

	h.RespondMessage(w, http.StatusOK, "course updated")
}

// DeleteCourse handles DELETE /admin/courses/{id}
// @Summary Delete a course
// @Description Remove a course together with its modules, lessons and quizzes
// @Tags admin-content
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]string "Course deleted"
// @Failure 400 {object} map[string]string "Invalid course ID"
// @Failure 404 {object} map[string]string "Course not found"
// @Router /admin/courses/{id} [delete]
func (h *AdminCourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid course ID")
		return
	}

	if err := h.contentService.DeleteCourse(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to delete course")
		return
	}

	h.Logger.Info("course deleted", zap.Int("course_id", id))
	h.RespondMessage(w, http.StatusOK, "course deleted")
}

// ListModules handles GET /admin/courses/{id}/modules
// @Summary List a course's modules
// @Description Get a course's modules in sort order
// @Tags admin-content
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {array} models.CourseModule "List of modules"
// @Failure 400 {object} map[string]string "Invalid course ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/courses/{id}/modules [get]
func (h *AdminCourseHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid course ID")
		return
	}

	modules, err := h.contentService.ListModules(r.Context(), courseID)
	if err != nil {
		h.Logger.Error("failed to list modules", zap.Int("course_id", courseID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list modules")
		return
	}

	h.RespondJSON(w, http.StatusOK, modules)
}

// ReorderModules handles PUT /admin/courses/{id}/modules/reorder
// @Summary Reorder a course's modules
// @Description Rewrite the sort order of a course's modules; the list must name every module exactly once
// @Tags admin-content
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body models.ReorderModulesRequest true "Target module ordering"
// @Success 200 {object} map[string]string "Modules reordered"
// @Failure 400 {object} map[string]string "Invalid ordering"
// @Router /admin/courses/{id}/modules/reorder [put]
func (h *AdminCourseHandler) ReorderModules(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid course ID")
		return
	}

	var req models.ReorderModulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "moduleIds must not be empty")
		return
	}

	if err := h.contentService.ReorderModules(r.Context(), courseID, req.ModuleIDs); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondMessage(w, http.StatusOK, "modules reordered")
}

// GetModule handles GET /admin/modules/{id}
// @Summary Get a module
// @Description Get one module with its lessons and quiz questions
// @Tags admin-content
// @Produce json
// @Param id path int true "Module ID"
// @Success 200 {object} models.CourseModule "Module"
// @Failure 400 {object} map[string]string "Invalid module ID"
// @Failure 404 {object} map[string]string "Module not found"
// @Router /admin/modules/{id} [get]
func (h *AdminCourseHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid module ID")
		return
	}

	module, err := h.contentService.GetModule(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to get module")
		return
	}

	h.RespondJSON(w, http.StatusOK, module)
}

// CreateModule handles POST /admin/modules
// @Summary Create a module
// @Description Create a module at the end of its course's ordering
// @Tags admin-content
// @Accept json
// @Produce json
// @Param request body models.CreateModuleRequest true "Module data"
// @Success 201 {object} models.CourseModule "Created module"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /admin/modules [post]
func (h *AdminCourseHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var req models.CreateModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "courseId, title and section are required")
		return
	}

	module, err := h.contentService.CreateModule(r.Context(), &req)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Logger.Info("module created", zap.Int("module_id", module.ID), zap.Int("course_id", module.CourseID))
	h.RespondJSON(w, http.StatusCreated, module)
}

// UpdateModule handles PATCH /admin/modules/{id}
// @Summary Update a module
// @Description Apply a partial update to a module
// @Tags admin-content
// @Accept json
// @Produce json
// @Param id path int true "Module ID"
// @Param request body models.UpdateModuleRequest true "Fields to update"
// @Success 200 {object} map[string]string "Module updated"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Module not found"
// @Router /admin/modules/{id} [patch]
func (h *AdminCourseHandler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid module ID")
		return
	}

	var req models.UpdateModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.contentService.UpdateModule(r.Context(), id, &req); err != nil {
		h.respondServiceError(w, err, "failed to update module")
		return
	}

	h.RespondMessage(w, http.StatusOK, "module updated")
}

// DeleteModule handles DELETE /admin/modules/{id}
// @Summary Delete a module
// @Description Remove a module together with its lessons and quiz
// @Tags admin-content
// @Produce json
// @Param id path int true "Module ID"
// @Success 200 {object} map[string]string "Module deleted"
// @Failure 400 {object} map[string]string "Invalid module ID"
// @Failure 404 {object} map[string]string "Module not found"
// @Router /admin/modules/{id} [delete]
func (h *AdminCourseHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid module ID")
		return
	}

	if err := h.contentService.DeleteModule(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to delete module")
		return
	}

	h.Logger.Info("module deleted", zap.Int("module_id", id))
	h.RespondMessage(w, http.StatusOK, "module deleted")
}

// GetLesson handles GET /admin/lessons/{id}
// @Summary Get a lesson
// @Description Get one lesson by ID
// @Tags admin-content
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} models.Lesson "Lesson"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Router /admin/lessons/{id} [get]
func (h *AdminCourseHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.contentService.GetLesson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, err, "failed to get lesson")
		return
	}

	h.RespondJSON(w, http.StatusOK, lesson)
}

// CreateLesson handles POST /admin/lessons
// @Summary Create a lesson
// @Description Create a lesson inside a module
// @Tags admin-content
// @Accept json
// @Produce json
// @Param request body models.CreateLessonRequest true "Lesson data"
// @Success 201 {object} models.Lesson "Created lesson"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /admin/lessons [post]
func (h *AdminCourseHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "id, moduleId, title and content are required")
		return
	}

	lesson, err := h.contentService.CreateLesson(r.Context(), &req)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Logger.Info("lesson created", zap.String("lesson_id", lesson.ID), zap.Int("module_id", lesson.ModuleID))
	h.RespondJSON(w, http.StatusCreated, lesson)
}

// UpdateLesson handles PATCH /admin/lessons/{id}
// @Summary Update a lesson
// @Description Apply a partial update to a lesson
// @Tags admin-content
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param request body models.UpdateLessonRequest true "Fields to update"
// @Success 200 {object} map[string]string "Lesson updated"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Router /admin/lessons/{id} [patch]
func (h *AdminCourseHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.contentService.UpdateLesson(r.Context(), chi.URLParam(r, "id"), &req); err != nil {
		h.respondServiceError(w, err, "failed to update lesson")
		return
	}

	h.RespondMessage(w, http.StatusOK, "lesson updated")
}

// DeleteLesson handles DELETE /admin/lessons/{id}
// @Summary Delete a lesson
// @Description Remove a lesson
// @Tags admin-content
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} map[string]string "Lesson deleted"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Router /admin/lessons/{id} [delete]
func (h *AdminCourseHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.contentService.DeleteLesson(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to delete lesson")
		return
	}

	h.Logger.Info("lesson deleted", zap.String("lesson_id", id))
	h.RespondMessage(w, http.StatusOK, "lesson deleted")
}

// CreateQuizQuestion handles POST /admin/quizzes
// @Summary Create a quiz question
// @Description Append a question to a module's quiz; the correct index must point into the options
// @Tags admin-content
// @Accept json
// @Produce json
// @Param request body models.CreateQuizQuestionRequest true "Question data"
// @Success 201 {object} models.QuizQuestion "Created question"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /admin/quizzes [post]
func (h *AdminCourseHandler) CreateQuizQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuizQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "moduleId, question and 2 to 6 options are required")
		return
	}

	question, err := h.contentService.CreateQuizQuestion(r.Context(), &req)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Logger.Info("quiz question created", zap.Int("question_id", question.ID), zap.Int("module_id", question.ModuleID))
	h.RespondJSON(w, http.StatusCreated, question)
}

// UpdateQuizQuestion handles PATCH /admin/quizzes/{id}
// @Summary Update a quiz question
// @Description Apply a partial update to a quiz question; options and the correct index are cross-checked
// @Tags admin-content
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body models.UpdateQuizQuestionRequest true "Fields to update"
// @Success 200 {object} map[string]string "Question updated"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Question not found"
// @Router /admin/quizzes/{id} [patch]
func (h *AdminCourseHandler) UpdateQuizQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid question ID")
		return
	}

	var req models.UpdateQuizQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.contentService.UpdateQuizQuestion(r.Context(), id, &req); err != nil {
		h.respondServiceError(w, err, "failed to update quiz question")
		return
	}

	h.RespondMessage(w, http.StatusOK, "question updated")
}

// DeleteQuizQuestion handles DELETE /admin/quizzes/{id}
// @Summary Delete a quiz question
// @Description Remove a quiz question
// @Tags admin-content
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} map[string]string "Question deleted"
// @Failure 400 {object} map[string]string "Invalid question ID"
// @Failure 404 {object} map[string]string "Question not found"
// @Router /admin/quizzes/{id} [delete]
func (h *AdminCourseHandler) DeleteQuizQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid question ID")
		return
	}

	if err := h.contentService.DeleteQuizQuestion(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to delete quiz question")
		return
	}

	h.Logger.Info("quiz question deleted", zap.Int("question_id", id))
	h.RespondMessage(w, http.StatusOK, "question deleted")
}

// respondServiceError maps a content service error to an HTTP response
func (h *AdminCourseHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	if strings.Contains(err.Error(), "not found") {
		h.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.Logger.Error(logMsg, zap.Error(err))
	h.RespondError(w, http.StatusBadRequest, err.Error())
}
