package models

import "encoding/json"

// GenerateAction selects an AI content generation prompt
type GenerateAction string

const (
	ActionGenerateModule       GenerateAction = "generate_module"
	ActionGenerateLesson       GenerateAction = "generate_lesson"
	ActionGenerateQuiz         GenerateAction = "generate_quiz"
	ActionGenerateVideoScript  GenerateAction = "generate_video_script"
	ActionImproveContent       GenerateAction = "improve_content"
	ActionGenerateFromDocument GenerateAction = "generate_from_document"
	ActionChat                 GenerateAction = "chat"
)

// ChatMessage is one turn of an admin planning conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateContext carries per-action inputs for AI content generation.
// Which fields matter depends on the action.
type GenerateContext struct {
	Topic           string        `json:"topic,omitempty"`
	Section         string        `json:"section,omitempty"`
	Tier            Tier          `json:"tier,omitempty"`
	ModuleName      string        `json:"moduleName,omitempty"`
	LessonTitle     string        `json:"lessonTitle,omitempty"`
	LessonContent   string        `json:"lessonContent,omitempty"`
	Title           string        `json:"title,omitempty"`
	Content         string        `json:"content,omitempty"`
	Instructions    string        `json:"instructions,omitempty"`
	DocumentContent string        `json:"documentContent,omitempty"`
	Count           int           `json:"count,omitempty"`
	Message         string        `json:"message,omitempty"`
	History         []ChatMessage `json:"history,omitempty"`
}

// GenerateRequest asks the AI bridge to draft content
type GenerateRequest struct {
	Action  GenerateAction  `json:"action" validate:"required"`
	Context GenerateContext `json:"context"`
}

// GenerateResponse carries the raw model text and, when the response embedded
// valid JSON, the extracted structured result. Parsed being absent is a normal
// outcome; callers fall back to showing Text.
type GenerateResponse struct {
	Text   string          `json:"text"`
	Parsed json.RawMessage `json:"parsed,omitempty"`
	Action GenerateAction  `json:"action"`
}

// ParsedDocument is the result of extracting text from an uploaded file
type ParsedDocument struct {
	Text      string `json:"text"`
	FileName  string `json:"fileName"`
	CharCount int    `json:"charCount"`
}
