package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/agentiqhub/backend/internal/models"
)

type moduleRepository struct {
	db *sql.DB
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db *sql.DB) *moduleRepository {
	return &moduleRepository{
		db: db,
	}
}

// GetByCourse retrieves a course's modules as bare rows ordered by sort order.
// Lessons and quiz questions are attached by the course assembler.
func (r *moduleRepository) GetByCourse(ctx context.Context, courseID int) ([]models.CourseModule, error) {
	query := `
		SELECT id, course_id, title, section, description, tier, sort_order
		FROM course_modules
		WHERE course_id = ?
		ORDER BY sort_order, id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var modules []models.CourseModule
	for rows.Next() {
		var module models.CourseModule
		err := rows.Scan(
			&module.ID,
			&module.CourseID,
			&module.Title,
			&module.Section,
			&module.Description,
			&module.Tier,
			&module.SortOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, module)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return modules, nil
}

// GetByID retrieves a module by its ID
func (r *moduleRepository) GetByID(ctx context.Context, id int) (*models.CourseModule, error) {
	query := `
		SELECT id, course_id, title, section, description, tier, sort_order
		FROM course_modules
		WHERE id = ?
		LIMIT 1
	`

	var module models.CourseModule
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&module.ID,
		&module.CourseID,
		&module.Title,
		&module.Section,
		&module.Description,
		&module.Tier,
		&module.SortOrder,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("module not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get module by id: %w", err)
	}

	return &module, nil
}

// Create creates a new module
func (r *moduleRepository) Create(ctx context.Context, module *models.CourseModule) error {
	query := `
		INSERT INTO course_modules (course_id, title, section, description, tier, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		module.CourseID,
		module.Title,
		module.Section,
		module.Description,
		module.Tier,
		module.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	module.ID = int(id)
	return nil
}

// Update updates a module (partial update)
func (r *moduleRepository) Update(ctx context.Context, id int, req *models.UpdateModuleRequest) error {
	var setParts []string
	var args []any

	if req.Title != "" {
		setParts = append(setParts, "title = ?")
		args = append(args, req.Title)
	}
	if req.Section != "" {
		setParts = append(setParts, "section = ?")
		args = append(args, req.Section)
	}
	if req.Description != "" {
		setParts = append(setParts, "description = ?")
		args = append(args, req.Description)
	}
	if req.Tier != "" {
		setParts = append(setParts, "tier = ?")
		args = append(args, req.Tier)
	}
	if req.SortOrder != nil {
		setParts = append(setParts, "sort_order = ?")
		args = append(args, *req.SortOrder)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("no fields to update")
	}

	query := fmt.Sprintf(`
		UPDATE course_modules
		SET %s
		WHERE id = ?
	`, strings.Join(setParts, ", "))

	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("module not found")
	}

	return nil
}

// UpdateSortOrders writes new sort orders for the given modules in one
// transaction. "orders" maps module ID to its target position; callers pass
// only the modules whose position actually changed.
func (r *moduleRepository) UpdateSortOrders(ctx context.Context, courseID int, orders map[int]int) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "UPDATE course_modules SET sort_order = ? WHERE id = ? AND course_id = ?"
	for id, order := range orders {
		if _, err := tx.ExecContext(ctx, query, order, id, courseID); err != nil {
			return fmt.Errorf("failed to update module %d sort order: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete deletes a module by ID
func (r *moduleRepository) Delete(ctx context.Context, id int) error {
	query := "DELETE FROM course_modules WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("module not found")
	}

	return nil
}
