package models

import "time"

// LessonProgress records that a user finished a lesson.
// Unique per (user, lesson).
type LessonProgress struct {
	UserID   string `json:"userId"`
	LessonID string `json:"lessonId"`
}

// ModuleCompletion records a passed module quiz.
// Unique per (user, module); QuizScore is the score of the passing attempt.
type ModuleCompletion struct {
	UserID    string `json:"userId"`
	ModuleID  int    `json:"moduleId"`
	QuizScore int    `json:"quizScore"`
}

// Certificate is issued when a user completes every accessible module of a course
type Certificate struct {
	ID       int       `json:"id"`
	UserID   string    `json:"userId"`
	CourseID int       `json:"courseId"`
	Score    int       `json:"score"`
	IssuedAt time.Time `json:"issuedAt"`
}
