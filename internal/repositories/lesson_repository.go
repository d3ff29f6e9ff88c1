package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/agentiqhub/backend/internal/models"
)

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

// GetByCourse retrieves every lesson of a course ordered by module and sort order
func (r *lessonRepository) GetByCourse(ctx context.Context, courseID int) ([]models.Lesson, error) {
	query := `
		SELECT l.id, l.module_id, l.title, l.content, l.video_url, l.handout_url, l.handout_name, l.sort_order
		FROM course_lessons l
		INNER JOIN course_modules m ON m.id = l.module_id
		WHERE m.course_id = ?
		ORDER BY l.module_id, l.sort_order, l.id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	return scanLessons(rows)
}

// GetByModule retrieves a module's lessons ordered by sort order
func (r *lessonRepository) GetByModule(ctx context.Context, moduleID int) ([]models.Lesson, error) {
	query := `
		SELECT id, module_id, title, content, video_url, handout_url, handout_name, sort_order
		FROM course_lessons
		WHERE module_id = ?
		ORDER BY sort_order, id
	`

	rows, err := r.db.QueryContext(ctx, query, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	return scanLessons(rows)
}

func scanLessons(rows *sql.Rows) ([]models.Lesson, error) {
	var lessons []models.Lesson
	for rows.Next() {
		var lesson models.Lesson
		err := rows.Scan(
			&lesson.ID,
			&lesson.ModuleID,
			&lesson.Title,
			&lesson.Content,
			&lesson.VideoURL,
			&lesson.HandoutURL,
			&lesson.HandoutName,
			&lesson.SortOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}

// GetByID retrieves a lesson by its ID
func (r *lessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := `
		SELECT id, module_id, title, content, video_url, handout_url, handout_name, sort_order
		FROM course_lessons
		WHERE id = ?
		LIMIT 1
	`

	var lesson models.Lesson
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.ModuleID,
		&lesson.Title,
		&lesson.Content,
		&lesson.VideoURL,
		&lesson.HandoutURL,
		&lesson.HandoutName,
		&lesson.SortOrder,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lesson not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by id: %w", err)
	}

	return &lesson, nil
}

// Create creates a new lesson. Lesson IDs are caller-supplied slugs, unique
// across the whole platform.
func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	query := `
		INSERT INTO course_lessons (id, module_id, title, content, video_url, handout_url, handout_name, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		lesson.ID,
		lesson.ModuleID,
		lesson.Title,
		lesson.Content,
		lesson.VideoURL,
		lesson.HandoutURL,
		lesson.HandoutName,
		lesson.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	return nil
}

// Update updates a lesson (partial update)
func (r *lessonRepository) Update(ctx context.Context, id string, req *models.UpdateLessonRequest) error {
	var setParts []string
	var args []any

	if req.Title != "" {
		setParts = append(setParts, "title = ?")
		args = append(args, req.Title)
	}
	if req.Content != "" {
		setParts = append(setParts, "content = ?")
		args = append(args, req.Content)
	}
	if req.VideoURL != "" {
		setParts = append(setParts, "video_url = ?")
		args = append(args, req.VideoURL)
	}
	if req.HandoutURL != "" {
		setParts = append(setParts, "handout_url = ?")
		args = append(args, req.HandoutURL)
	}
	if req.HandoutName != "" {
		setParts = append(setParts, "handout_name = ?")
		args = append(args, req.HandoutName)
	}
	if req.SortOrder != nil {
		setParts = append(setParts, "sort_order = ?")
		args = append(args, *req.SortOrder)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("no fields to update")
	}

	query := fmt.Sprintf(`
		UPDATE course_lessons
		SET %s
		WHERE id = ?
	`, strings.Join(setParts, ", "))

	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("lesson not found")
	}

	return nil
}

// Delete deletes a lesson by ID
func (r *lessonRepository) Delete(ctx context.Context, id string) error {
	query := "DELETE FROM course_lessons WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("lesson not found")
	}

	return nil
}
