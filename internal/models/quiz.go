package models

// QuizQuestion represents a multiple-choice question in a module quiz.
// Correct is the index into Options; 0 <= Correct < len(Options).
type QuizQuestion struct {
	ID        int      `json:"id,omitempty"`
	ModuleID  int      `json:"moduleId,omitempty"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	Correct   int      `json:"correct"`
	SortOrder int      `json:"sortOrder,omitempty"`
}

// CreateQuizQuestionRequest represents a request to create a quiz question
type CreateQuizQuestionRequest struct {
	ModuleID  int      `json:"moduleId" validate:"required"`
	Question  string   `json:"question" validate:"required"`
	Options   []string `json:"options" validate:"required,min=2,max=6,dive,required"`
	Correct   int      `json:"correct" validate:"gte=0"`
	SortOrder int      `json:"sortOrder"`
}

// UpdateQuizQuestionRequest represents a request to update a quiz question (partial update)
type UpdateQuizQuestionRequest struct {
	Question  string   `json:"question,omitempty"`
	Options   []string `json:"options,omitempty" validate:"omitempty,min=2,max=6,dive,required"`
	Correct   *int     `json:"correct,omitempty" validate:"omitempty,gte=0"`
	SortOrder *int     `json:"sortOrder,omitempty"`
}
