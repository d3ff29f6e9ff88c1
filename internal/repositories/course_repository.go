package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/agentiqhub/backend/internal/models"
)

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{
		db: db,
	}
}

// GetAll retrieves catalog courses with module and lesson counts.
// "includeInternal" controls whether internal-visibility courses are listed,
// "includeInactive" whether unpublished courses are listed (admin view).
func (r *courseRepository) GetAll(ctx context.Context, includeInternal, includeInactive bool) ([]models.CourseListItem, error) {
	var whereClauses []string
	if !includeInternal {
		whereClauses = append(whereClauses, "c.visibility = 'public'")
	}
	if !includeInactive {
		whereClauses = append(whereClauses, "c.is_active = TRUE")
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT
			c.id,
			c.slug,
			c.title,
			c.short_description,
			c.image_url,
			c.visibility,
			c.price,
			COUNT(DISTINCT m.id) as module_count,
			COUNT(DISTINCT l.id) as lesson_count
		FROM courses c
		LEFT JOIN course_modules m ON m.course_id = c.id
		LEFT JOIN course_lessons l ON l.module_id = m.id
		%s
		GROUP BY c.id, c.slug, c.title, c.short_description, c.image_url, c.visibility, c.price
		ORDER BY c.sort_order, c.id
	`, whereClause)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []models.CourseListItem
	for rows.Next() {
		var course models.CourseListItem
		err := rows.Scan(
			&course.ID,
			&course.Slug,
			&course.Title,
			&course.ShortDescription,
			&course.ImageURL,
			&course.Visibility,
			&course.Price,
			&course.ModuleCount,
			&course.LessonCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}

// GetByID retrieves a course by its ID
func (r *courseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	query := `
		SELECT id, slug, title, description, short_description, image_url,
			visibility, price, stripe_price_id, is_active, sort_order, created_at, updated_at
		FROM courses
		WHERE id = ?
		LIMIT 1
	`

	var course models.Course
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Slug,
		&course.Title,
		&course.Description,
		&course.ShortDescription,
		&course.ImageURL,
		&course.Visibility,
		&course.Price,
		&course.StripePriceID,
		&course.IsActive,
		&course.SortOrder,
		&course.CreatedAt,
		&course.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return &course, nil
}

// GetBySlug retrieves a course by its slug
func (r *courseRepository) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	query := `
		SELECT id, slug, title, description, short_description, image_url,
			visibility, price, stripe_price_id, is_active, sort_order, created_at, updated_at
		FROM courses
		WHERE slug = ?
		LIMIT 1
	`

	var course models.Course
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&course.ID,
		&course.Slug,
		&course.Title,
		&course.Description,
		&course.ShortDescription,
		&course.ImageURL,
		&course.Visibility,
		&course.Price,
		&course.StripePriceID,
		&course.IsActive,
		&course.SortOrder,
		&course.CreatedAt,
		&course.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by slug: %w", err)
	}

	return &course, nil
}

// Create creates a new course
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (slug, title, description, short_description, image_url,
			visibility, price, stripe_price_id, is_active, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		course.Slug,
		course.Title,
		course.Description,
		course.ShortDescription,
		course.ImageURL,
		course.Visibility,
		course.Price,
		course.StripePriceID,
		course.IsActive,
		course.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	course.ID = int(id)
	return nil
}

// Update updates a course (partial update)
func (r *courseRepository) Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error {
	var setParts []string
	var args []any

	if req.Slug != "" {
		setParts = append(setParts, "slug = ?")
		args = append(args, req.Slug)
	}
	if req.Title != "" {
		setParts = append(setParts, "title = ?")
		args = append(args, req.Title)
	}
	if req.Description != "" {
		setParts = append(setParts, "description = ?")
		args = append(args, req.Description)
	}
	if req.ShortDescription != "" {
		setParts = append(setParts, "short_description = ?")
		args = append(args, req.ShortDescription)
	}
	if req.ImageURL != "" {
		setParts = append(setParts, "image_url = ?")
		args = append(args, req.ImageURL)
	}
	if req.Visibility != "" {
		setParts = append(setParts, "visibility = ?")
		args = append(args, req.Visibility)
	}
	if req.Price != nil {
		setParts = append(setParts, "price = ?")
		args = append(args, *req.Price)
	}
	if req.StripePriceID != "" {
		setParts = append(setParts, "stripe_price_id = ?")
		args = append(args, req.StripePriceID)
	}
	if req.IsActive != nil {
		setParts = append(setParts, "is_active = ?")
		args = append(args, *req.IsActive)
	}
	if req.SortOrder != nil {
		setParts = append(setParts, "sort_order = ?")
		args = append(args, *req.SortOrder)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("no fields to update")
	}

	query := fmt.Sprintf(`
		UPDATE courses
		SET %s
		WHERE id = ?
	`, strings.Join(setParts, ", "))

	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("course not found")
	}

	return nil
}

// Delete deletes a course by ID
func (r *courseRepository) Delete(ctx context.Context, id int) error {
	query := "DELETE FROM courses WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("course not found")
	}

	return nil
}

// ExistsBySlug checks if a course with the given slug exists
func (r *courseRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM courses WHERE slug = ?)"
	var exists bool
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check course existence: %w", err)
	}
	return exists, nil
}
