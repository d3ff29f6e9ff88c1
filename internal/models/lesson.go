package models

// Lesson represents a single content page within a module.
// Content is a sequence of paragraphs separated by blank lines and may
// contain **bold** spans.
type Lesson struct {
	ID          string `json:"id"`
	ModuleID    int    `json:"moduleId,omitempty"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	VideoURL    string `json:"videoUrl,omitempty"`
	HandoutURL  string `json:"handoutUrl,omitempty"`
	HandoutName string `json:"handoutName,omitempty"`
	SortOrder   int    `json:"sortOrder,omitempty"`
}

// CreateLessonRequest represents a request to create a lesson
type CreateLessonRequest struct {
	ID          string `json:"id" validate:"required"`
	ModuleID    int    `json:"moduleId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Content     string `json:"content" validate:"required"`
	VideoURL    string `json:"videoUrl"`
	HandoutURL  string `json:"handoutUrl"`
	HandoutName string `json:"handoutName"`
	SortOrder   int    `json:"sortOrder"`
}

// UpdateLessonRequest represents a request to update a lesson (partial update)
type UpdateLessonRequest struct {
	Title       string `json:"title,omitempty"`
	Content     string `json:"content,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	HandoutURL  string `json:"handoutUrl,omitempty"`
	HandoutName string `json:"handoutName,omitempty"`
	SortOrder   *int   `json:"sortOrder,omitempty"`
}
