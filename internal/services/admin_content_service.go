package services

import (
	"context"
	"fmt"

	"github.com/agentiqhub/backend/internal/models"
)

// CourseStore defines the write side of course data access
type CourseStore interface {
	CourseRepository
	// Create creates a new course
	Create(ctx context.Context, course *models.Course) error
	// Update updates a course (partial update)
	Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error
	// Delete deletes a course by ID
	Delete(ctx context.Context, id int) error
	// ExistsBySlug checks if a course with the given slug exists
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// ModuleStore defines the write side of module data access
type ModuleStore interface {
	ModuleRepository
	// GetByID retrieves a module by its ID
	GetByID(ctx context.Context, id int) (*models.CourseModule, error)
	// Create creates a new module
	Create(ctx context.Context, module *models.CourseModule) error
	// Update updates a module (partial update)
	Update(ctx context.Context, id int, req *models.UpdateModuleRequest) error
	// UpdateSortOrders writes new sort orders for the given modules in one transaction
	UpdateSortOrders(ctx context.Context, courseID int, orders map[int]int) error
	// Delete deletes a module by ID
	Delete(ctx context.Context, id int) error
}

// LessonStore defines the write side of lesson data access
type LessonStore interface {
	// GetByModule retrieves a module's lessons ordered by sort order
	GetByModule(ctx context.Context, moduleID int) ([]models.Lesson, error)
	// GetByID retrieves a lesson by its ID
	GetByID(ctx context.Context, id string) (*models.Lesson, error)
	// Create creates a new lesson
	Create(ctx context.Context, lesson *models.Lesson) error
	// Update updates a lesson (partial update)
	Update(ctx context.Context, id string, req *models.UpdateLessonRequest) error
	// Delete deletes a lesson by ID
	Delete(ctx context.Context, id string) error
}

// QuizStore defines the write side of quiz question data access
type QuizStore interface {
	// GetByModule retrieves a module's quiz questions ordered by sort order
	GetByModule(ctx context.Context, moduleID int) ([]models.QuizQuestion, error)
	// Create creates a new quiz question
	Create(ctx context.Context, question *models.QuizQuestion) error
	// Update updates a quiz question (partial update)
	Update(ctx context.Context, id int, req *models.UpdateQuizQuestionRequest) error
	// Delete deletes a quiz question by ID
	Delete(ctx context.Context, id int) error
	// GetByID retrieves a quiz question by its ID
	GetByID(ctx context.Context, id int) (*models.QuizQuestion, error)
}

type adminContentService struct {
	courseRepo CourseStore
	moduleRepo ModuleStore
	lessonRepo LessonStore
	quizRepo   QuizStore
}

// NewAdminContentService creates the admin course content service
func NewAdminContentService(
	courseRepo CourseStore,
	moduleRepo ModuleStore,
	lessonRepo LessonStore,
	quizRepo QuizStore,
) *adminContentService {
	return &adminContentService{
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
		lessonRepo: lessonRepo,
		quizRepo:   quizRepo,
	}
}

// ListCourses retrieves every course including internal and unpublished ones
func (s *adminContentService) ListCourses(ctx context.Context) ([]models.CourseListItem, error) {
	return s.courseRepo.GetAll(ctx, true, true)
}

// GetCourse retrieves one course by ID
func (s *adminContentService) GetCourse(ctx context.Context, id int) (*models.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// CreateCourse creates a course after checking slug uniqueness
func (s *adminContentService) CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	exists, err := s.courseRepo.ExistsBySlug(ctx, req.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("a course with this slug already exists")
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.CourseVisibilityPublic
	}

	course := &models.Course{
		Slug:             req.Slug,
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		ImageURL:         req.ImageURL,
		Visibility:       visibility,
		Price:            req.Price,
		StripePriceID:    req.StripePriceID,
		IsActive:         true,
		SortOrder:        req.SortOrder,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	return course, nil
}

// UpdateCourse applies a partial update to a course
func (s *adminContentService) UpdateCourse(ctx context.Context, id int, req *models.UpdateCourseRequest) error {
	return s.courseRepo.Update(ctx, id, req)
}

// DeleteCourse deletes a course and, through cascading keys, its modules,
// lessons, and quizzes
func (s *adminContentService) DeleteCourse(ctx context.Context, id int) error {
	return s.courseRepo.Delete(ctx, id)
}

// ListModules retrieves a course's modules as bare rows
func (s *adminContentService) ListModules(ctx context.Context, courseID int) ([]models.CourseModule, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return s.moduleRepo.GetByCourse(ctx, courseID)
}

// GetModule retrieves a module with its lessons and quiz questions attached
func (s *adminContentService) GetModule(ctx context.Context, id int) (*models.CourseModule, error) {
	module, err := s.moduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	lessons, err := s.lessonRepo.GetByModule(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}
	module.Lessons = lessons

	quiz, err := s.quizRepo.GetByModule(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}
	module.Quiz = quiz

	return module, nil
}

// CreateModule creates a module at the end of its course's ordering unless a
// sort order is given
func (s *adminContentService) CreateModule(ctx context.Context, req *models.CreateModuleRequest) (*models.CourseModule, error) {
	if _, err := s.courseRepo.GetByID(ctx, req.CourseID); err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	tier := req.Tier
	if tier == "" {
		tier = models.TierPremium
	}

	sortOrder := req.SortOrder
	if sortOrder == 0 {
		existing, err := s.moduleRepo.GetByCourse(ctx, req.CourseID)
		if err != nil {
			return nil, fmt.Errorf("failed to get modules: %w", err)
		}
		for _, mod := range existing {
			if mod.SortOrder >= sortOrder {
				sortOrder = mod.SortOrder + 1
			}
		}
	}

	module := &models.CourseModule{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Section:     req.Section,
		Description: req.Description,
		Tier:        tier,
		SortOrder:   sortOrder,
	}
	if err := s.moduleRepo.Create(ctx, module); err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	return module, nil
}

// UpdateModule applies a partial update to a module
func (s *adminContentService) UpdateModule(ctx context.Context, id int, req *models.UpdateModuleRequest) error {
	return s.moduleRepo.Update(ctx, id, req)
}

// DeleteModule deletes a module with its lessons and quiz
func (s *adminContentService) DeleteModule(ctx context.Context, id int) error {
	return s.moduleRepo.Delete(ctx, id)
}

// ReorderModules rewrites a course's module ordering to match the given ID
// list. The list must contain exactly the course's module IDs; only modules
// whose position actually changed are written.
func (s *adminContentService) ReorderModules(ctx context.Context, courseID int, moduleIDs []int) error {
	current, err := s.moduleRepo.GetByCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to get modules: %w", err)
	}
	if len(moduleIDs) != len(current) {
		return fmt.Errorf("reorder list must contain all %d modules of the course", len(current))
	}

	currentOrder := make(map[int]int, len(current))
	for _, mod := range current {
		currentOrder[mod.ID] = mod.SortOrder
	}

	changed := make(map[int]int)
	seen := make(map[int]bool, len(moduleIDs))
	for position, id := range moduleIDs {
		order, ok := currentOrder[id]
		if !ok {
			return fmt.Errorf("module %d does not belong to this course", id)
		}
		if seen[id] {
			return fmt.Errorf("module %d appears twice in the reorder list", id)
		}
		seen[id] = true
		if order != position {
			changed[id] = position
		}
	}

	return s.moduleRepo.UpdateSortOrders(ctx, courseID, changed)
}

// GetLesson retrieves one lesson
func (s *adminContentService) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	return s.lessonRepo.GetByID(ctx, id)
}

// CreateLesson creates a lesson inside a module
func (s *adminContentService) CreateLesson(ctx context.Context, req *models.CreateLessonRequest) (*models.Lesson, error) {
	if _, err := s.moduleRepo.GetByID(ctx, req.ModuleID); err != nil {
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	lesson := &models.Lesson{
		ID:          req.ID,
		ModuleID:    req.ModuleID,
		Title:       req.Title,
		Content:     req.Content,
		VideoURL:    req.VideoURL,
		HandoutURL:  req.HandoutURL,
		HandoutName: req.HandoutName,
		SortOrder:   req.SortOrder,
	}
	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	return lesson, nil
}

// UpdateLesson applies a partial update to a lesson
func (s *adminContentService) UpdateLesson(ctx context.Context, id string, req *models.UpdateLessonRequest) error {
	return s.lessonRepo.Update(ctx, id, req)
}

// DeleteLesson deletes a lesson
func (s *adminContentService) DeleteLesson(ctx context.Context, id string) error {
	return s.lessonRepo.Delete(ctx, id)
}

// CreateQuizQuestion creates a quiz question after validating that the
// correct index points at an existing option
func (s *adminContentService) CreateQuizQuestion(ctx context.Context, req *models.CreateQuizQuestionRequest) (*models.QuizQuestion, error) {
	if _, err := s.moduleRepo.GetByID(ctx, req.ModuleID); err != nil {
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	if req.Correct >= len(req.Options) {
		return nil, fmt.Errorf("correct index %d is out of range for %d options", req.Correct, len(req.Options))
	}

	question := &models.QuizQuestion{
		ModuleID:  req.ModuleID,
		Question:  req.Question,
		Options:   req.Options,
		Correct:   req.Correct,
		SortOrder: req.SortOrder,
	}
	if err := s.quizRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create quiz question: %w", err)
	}

	return question, nil
}

// UpdateQuizQuestion applies a partial update to a quiz question, keeping the
// correct index inside the option list it will end up with
func (s *adminContentService) UpdateQuizQuestion(ctx context.Context, id int, req *models.UpdateQuizQuestionRequest) error {
	options := req.Options
	correct := req.Correct
	if options == nil || correct == nil {
		existing, err := s.quizRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get quiz question: %w", err)
		}
		if options == nil {
			options = existing.Options
		}
		if correct == nil {
			correct = &existing.Correct
		}
	}
	if *correct >= len(options) {
		return fmt.Errorf("correct index %d is out of range for %d options", *correct, len(options))
	}

	return s.quizRepo.Update(ctx, id, req)
}

// DeleteQuizQuestion deletes a quiz question
func (s *adminContentService) DeleteQuizQuestion(ctx context.Context, id int) error {
	return s.quizRepo.Delete(ctx, id)
}
