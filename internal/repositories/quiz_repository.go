package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentiqhub/backend/internal/models"
)

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new quiz repository.
// Question options are stored as a JSON array column.
func NewQuizRepository(db *sql.DB) *quizRepository {
	return &quizRepository{
		db: db,
	}
}

// GetByCourse retrieves every quiz question of a course ordered by module and sort order
func (r *quizRepository) GetByCourse(ctx context.Context, courseID int) ([]models.QuizQuestion, error) {
	query := `
		SELECT q.id, q.module_id, q.question, q.options, q.correct, q.sort_order
		FROM course_quizzes q
		INNER JOIN course_modules m ON m.id = q.module_id
		WHERE m.course_id = ?
		ORDER BY q.module_id, q.sort_order, q.id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz questions: %w", err)
	}
	defer rows.Close()

	return scanQuizQuestions(rows)
}

// GetByModule retrieves a module's quiz questions ordered by sort order
func (r *quizRepository) GetByModule(ctx context.Context, moduleID int) ([]models.QuizQuestion, error) {
	query := `
		SELECT id, module_id, question, options, correct, sort_order
		FROM course_quizzes
		WHERE module_id = ?
		ORDER BY sort_order, id
	`

	rows, err := r.db.QueryContext(ctx, query, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz questions: %w", err)
	}
	defer rows.Close()

	return scanQuizQuestions(rows)
}

func scanQuizQuestions(rows *sql.Rows) ([]models.QuizQuestion, error) {
	var questions []models.QuizQuestion
	for rows.Next() {
		var question models.QuizQuestion
		var options []byte
		err := rows.Scan(
			&question.ID,
			&question.ModuleID,
			&question.Question,
			&options,
			&question.Correct,
			&question.SortOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}
		if err := json.Unmarshal(options, &question.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options for question %d: %w", question.ID, err)
		}
		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questions, nil
}

// GetByID retrieves a quiz question by its ID
func (r *quizRepository) GetByID(ctx context.Context, id int) (*models.QuizQuestion, error) {
	query := `
		SELECT id, module_id, question, options, correct, sort_order
		FROM course_quizzes
		WHERE id = ?
		LIMIT 1
	`

	var question models.QuizQuestion
	var options []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&question.ID,
		&question.ModuleID,
		&question.Question,
		&options,
		&question.Correct,
		&question.SortOrder,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quiz question not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz question by id: %w", err)
	}

	if err := json.Unmarshal(options, &question.Options); err != nil {
		return nil, fmt.Errorf("failed to decode options for question %d: %w", question.ID, err)
	}

	return &question, nil
}

// Create creates a new quiz question
func (r *quizRepository) Create(ctx context.Context, question *models.QuizQuestion) error {
	options, err := json.Marshal(question.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	query := `
		INSERT INTO course_quizzes (module_id, question, options, correct, sort_order)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		question.ModuleID,
		question.Question,
		options,
		question.Correct,
		question.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz question: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	question.ID = int(id)
	return nil
}

// Update updates a quiz question (partial update). A non-nil Options always
// rewrites the whole option list together with the correct index.
func (r *quizRepository) Update(ctx context.Context, id int, req *models.UpdateQuizQuestionRequest) error {
	var setParts []string
	var args []any

	if req.Question != "" {
		setParts = append(setParts, "question = ?")
		args = append(args, req.Question)
	}
	if req.Options != nil {
		options, err := json.Marshal(req.Options)
		if err != nil {
			return fmt.Errorf("failed to encode options: %w", err)
		}
		setParts = append(setParts, "options = ?")
		args = append(args, options)
	}
	if req.Correct != nil {
		setParts = append(setParts, "correct = ?")
		args = append(args, *req.Correct)
	}
	if req.SortOrder != nil {
		setParts = append(setParts, "sort_order = ?")
		args = append(args, *req.SortOrder)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("no fields to update")
	}

	query := fmt.Sprintf(`
		UPDATE course_quizzes
		SET %s
		WHERE id = ?
	`, strings.Join(setParts, ", "))

	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update quiz question: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("quiz question not found")
	}

	return nil
}

// Delete deletes a quiz question by ID
func (r *quizRepository) Delete(ctx context.Context, id int) error {
	query := "DELETE FROM course_quizzes WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz question: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("quiz question not found")
	}

	return nil
}
