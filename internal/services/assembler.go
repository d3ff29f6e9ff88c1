package services

import (
	"context"
	"fmt"

	"github.com/agentiqhub/backend/internal/models"
)

// ModuleRepository defines methods for module data access
type ModuleRepository interface {
	// GetByCourse retrieves a course's modules as bare rows ordered by sort order
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a list of modules and an error if any.
	GetByCourse(ctx context.Context, courseID int) ([]models.CourseModule, error)
}

// LessonRepository defines methods for lesson data access
type LessonRepository interface {
	// GetByCourse retrieves every lesson of a course ordered by module and sort order
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a list of lessons and an error if any.
	GetByCourse(ctx context.Context, courseID int) ([]models.Lesson, error)
}

// QuizRepository defines methods for quiz question data access
type QuizRepository interface {
	// GetByCourse retrieves every quiz question of a course ordered by module and sort order
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a list of quiz questions and an error if any.
	GetByCourse(ctx context.Context, courseID int) ([]models.QuizQuestion, error)
}

type courseAssembler struct {
	moduleRepo ModuleRepository
	lessonRepo LessonRepository
	quizRepo   QuizRepository
}

// NewCourseAssembler creates an assembler that builds fully populated module
// trees out of the flat module, lesson, and quiz tables
func NewCourseAssembler(
	moduleRepo ModuleRepository,
	lessonRepo LessonRepository,
	quizRepo QuizRepository,
) *courseAssembler {
	return &courseAssembler{
		moduleRepo: moduleRepo,
		lessonRepo: lessonRepo,
		quizRepo:   quizRepo,
	}
}

// AssembleCourse loads a course's modules with their lessons and quiz
// questions attached, everything in stored sort order. Modules that have no
// lessons or no questions come back with empty slices rather than being
// dropped.
func (a *courseAssembler) AssembleCourse(ctx context.Context, courseID int) ([]models.CourseModule, error) {
	modules, err := a.moduleRepo.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get modules: %w", err)
	}
	if len(modules) == 0 {
		return nil, nil
	}

	lessons, err := a.lessonRepo.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}

	questions, err := a.quizRepo.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}

	byModule := make(map[int]*models.CourseModule, len(modules))
	for i := range modules {
		byModule[modules[i].ID] = &modules[i]
	}

	for _, lesson := range lessons {
		if mod, ok := byModule[lesson.ModuleID]; ok {
			mod.Lessons = append(mod.Lessons, lesson)
		}
	}
	for _, question := range questions {
		if mod, ok := byModule[question.ModuleID]; ok {
			mod.Quiz = append(mod.Quiz, question)
		}
	}

	return modules, nil
}

// BuildSections groups modules into named sections preserving the order in
// which sections first appear. A section's tier is free if any module in it
// is free, so preview content stays visible on locked sections.
func BuildSections(modules []models.CourseModule) []models.Section {
	var sections []models.Section
	index := make(map[string]int)

	for _, mod := range modules {
		i, ok := index[mod.Section]
		if !ok {
			i = len(sections)
			index[mod.Section] = i
			sections = append(sections, models.Section{
				Name: mod.Section,
				Tier: models.TierPremium,
			})
		}
		sections[i].Modules = append(sections[i].Modules, mod.ID)
		if mod.Tier == models.TierFree {
			sections[i].Tier = models.TierFree
		}
	}

	return sections
}
