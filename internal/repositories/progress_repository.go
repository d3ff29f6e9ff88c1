package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agentiqhub/backend/internal/models"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a repository over lesson progress and module
// completions
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{
		db: db,
	}
}

// CompletedLessonIDs retrieves the lesson IDs a user has finished within one course
func (r *progressRepository) CompletedLessonIDs(ctx context.Context, userID string, courseID int) ([]string, error) {
	query := `
		SELECT lp.lesson_id
		FROM lesson_progress lp
		INNER JOIN course_lessons l ON l.id = lp.lesson_id
		INNER JOIN course_modules m ON m.id = l.module_id
		WHERE lp.user_id = ? AND m.course_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson progress: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan lesson id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}

// CompletedModuleIDs retrieves the module IDs a user has completed within one course
func (r *progressRepository) CompletedModuleIDs(ctx context.Context, userID string, courseID int) ([]int, error) {
	query := `
		SELECT mc.module_id
		FROM module_completions mc
		INNER JOIN course_modules m ON m.id = mc.module_id
		WHERE mc.user_id = ? AND m.course_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query module completions: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan module id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}

// MarkLessonComplete records a finished lesson. Replays are absorbed by the
// primary key, so the call is idempotent.
func (r *progressRepository) MarkLessonComplete(ctx context.Context, userID, lessonID string) error {
	query := "INSERT IGNORE INTO lesson_progress (user_id, lesson_id) VALUES (?, ?)"

	_, err := r.db.ExecContext(ctx, query, userID, lessonID)
	if err != nil {
		return fmt.Errorf("failed to mark lesson complete: %w", err)
	}

	return nil
}

// MarkModuleComplete records a passed module quiz. A replay keeps the first
// recorded score.
func (r *progressRepository) MarkModuleComplete(ctx context.Context, userID string, moduleID, quizScore int) error {
	query := "INSERT IGNORE INTO module_completions (user_id, module_id, quiz_score) VALUES (?, ?, ?)"

	_, err := r.db.ExecContext(ctx, query, userID, moduleID, quizScore)
	if err != nil {
		return fmt.Errorf("failed to mark module complete: %w", err)
	}

	return nil
}

// ModuleCompletions retrieves a user's module completions with scores within one course
func (r *progressRepository) ModuleCompletions(ctx context.Context, userID string, courseID int) ([]models.ModuleCompletion, error) {
	query := `
		SELECT mc.user_id, mc.module_id, mc.quiz_score
		FROM module_completions mc
		INNER JOIN course_modules m ON m.id = mc.module_id
		WHERE mc.user_id = ? AND m.course_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query module completions: %w", err)
	}
	defer rows.Close()

	var completions []models.ModuleCompletion
	for rows.Next() {
		var completion models.ModuleCompletion
		if err := rows.Scan(&completion.UserID, &completion.ModuleID, &completion.QuizScore); err != nil {
			return nil, fmt.Errorf("failed to scan module completion: %w", err)
		}
		completions = append(completions, completion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return completions, nil
}

// AverageQuizScore returns the mean passing score across a user's completed
// modules of one course, or false when the user has completed none.
func (r *progressRepository) AverageQuizScore(ctx context.Context, userID string, courseID int) (int, bool, error) {
	query := `
		SELECT COALESCE(ROUND(AVG(mc.quiz_score)), 0), COUNT(*)
		FROM module_completions mc
		INNER JOIN course_modules m ON m.id = mc.module_id
		WHERE mc.user_id = ? AND m.course_id = ?
	`

	var avg, count int
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&avg, &count)
	if err != nil {
		return 0, false, fmt.Errorf("failed to query average quiz score: %w", err)
	}
	if count == 0 {
		return 0, false, nil
	}

	return avg, true, nil
}
