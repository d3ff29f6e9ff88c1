package models

// Tier classifies content access at the module level
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// CourseModule represents a course unit with its ordered lessons and quiz.
// Lessons and Quiz are populated by the course assembler; repository reads
// return bare rows.
type CourseModule struct {
	ID          int            `json:"id"`
	CourseID    int            `json:"courseId,omitempty"`
	Title       string         `json:"title"`
	Section     string         `json:"section"`
	Description string         `json:"description"`
	Tier        Tier           `json:"tier"`
	SortOrder   int            `json:"sortOrder,omitempty"`
	Lessons     []Lesson       `json:"lessons,omitempty"`
	Quiz        []QuizQuestion `json:"quiz,omitempty"`
}

// Section groups modules under a named part of a course
type Section struct {
	Name    string `json:"name"`
	Tier    Tier   `json:"tier"`
	Modules []int  `json:"modules"`
}

// CreateModuleRequest represents a request to create a module
type CreateModuleRequest struct {
	CourseID    int    `json:"courseId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Section     string `json:"section" validate:"required"`
	Description string `json:"description"`
	Tier        Tier   `json:"tier" validate:"omitempty,oneof=free premium"`
	SortOrder   int    `json:"sortOrder"`
}

// UpdateModuleRequest represents a request to update a module (partial update)
type UpdateModuleRequest struct {
	Title       string `json:"title,omitempty"`
	Section     string `json:"section,omitempty"`
	Description string `json:"description,omitempty"`
	Tier        Tier   `json:"tier,omitempty" validate:"omitempty,oneof=free premium"`
	SortOrder   *int   `json:"sortOrder,omitempty"`
}

// ReorderModulesRequest carries the full target ordering of a course's modules
type ReorderModulesRequest struct {
	ModuleIDs []int `json:"moduleIds" validate:"required,min=1"`
}
