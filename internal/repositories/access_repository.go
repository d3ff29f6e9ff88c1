package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agentiqhub/backend/internal/models"
)

type accessRepository struct {
	db *sql.DB
}

// NewAccessRepository creates a repository over per-user course access grants
func NewAccessRepository(db *sql.DB) *accessRepository {
	return &accessRepository{
		db: db,
	}
}

// Get retrieves a user's access record for one course. Absence of a record is
// not an error; it returns (nil, nil).
func (r *accessRepository) Get(ctx context.Context, userID string, courseID int) (*models.UserCourseAccess, error) {
	query := `
		SELECT id, user_id, course_id, access_type, stripe_session_id, created_at
		FROM user_courses
		WHERE user_id = ? AND course_id = ?
		LIMIT 1
	`

	var access models.UserCourseAccess
	var sessionID sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(
		&access.ID,
		&access.UserID,
		&access.CourseID,
		&access.AccessType,
		&sessionID,
		&access.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course access: %w", err)
	}

	access.StripeSessionID = sessionID.String
	return &access, nil
}

// ListByUser retrieves all of a user's access records
func (r *accessRepository) ListByUser(ctx context.Context, userID string) ([]models.UserCourseAccess, error) {
	query := `
		SELECT id, user_id, course_id, access_type, stripe_session_id, created_at
		FROM user_courses
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course access: %w", err)
	}
	defer rows.Close()

	var accesses []models.UserCourseAccess
	for rows.Next() {
		var access models.UserCourseAccess
		var sessionID sql.NullString
		err := rows.Scan(
			&access.ID,
			&access.UserID,
			&access.CourseID,
			&access.AccessType,
			&sessionID,
			&access.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course access: %w", err)
		}
		access.StripeSessionID = sessionID.String
		accesses = append(accesses, access)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accesses, nil
}

// Upsert stores an access grant, replacing the access type and payment
// session reference if a record already exists for the (user, course) pair.
// Webhook retries land here, so the write must be replay-safe.
func (r *accessRepository) Upsert(ctx context.Context, access *models.UserCourseAccess) error {
	query := `
		INSERT INTO user_courses (user_id, course_id, access_type, stripe_session_id)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE access_type = VALUES(access_type), stripe_session_id = VALUES(stripe_session_id)
	`

	var sessionID any
	if access.StripeSessionID != "" {
		sessionID = access.StripeSessionID
	}

	_, err := r.db.ExecContext(ctx, query,
		access.UserID,
		access.CourseID,
		access.AccessType,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert course access: %w", err)
	}

	return nil
}

// Delete revokes a user's access to a course
func (r *accessRepository) Delete(ctx context.Context, userID string, courseID int) error {
	query := "DELETE FROM user_courses WHERE user_id = ? AND course_id = ?"

	result, err := r.db.ExecContext(ctx, query, userID, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete course access: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("course access not found")
	}

	return nil
}
