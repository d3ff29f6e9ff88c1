package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agentiqhub/backend/internal/models"
)

type certificateRepository struct {
	db *sql.DB
}

// NewCertificateRepository creates a new certificate repository
func NewCertificateRepository(db *sql.DB) *certificateRepository {
	return &certificateRepository{
		db: db,
	}
}

// GetByUserAndCourse retrieves a user's certificate for one course.
// Returns (nil, nil) when none has been issued yet.
func (r *certificateRepository) GetByUserAndCourse(ctx context.Context, userID string, courseID int) (*models.Certificate, error) {
	query := `
		SELECT id, user_id, course_id, score, issued_at
		FROM certificates
		WHERE user_id = ? AND course_id = ?
		LIMIT 1
	`

	var cert models.Certificate
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(
		&cert.ID,
		&cert.UserID,
		&cert.CourseID,
		&cert.Score,
		&cert.IssuedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	return &cert, nil
}

// ListByUser retrieves a user's certificates, newest first
func (r *certificateRepository) ListByUser(ctx context.Context, userID string) ([]models.Certificate, error) {
	query := `
		SELECT id, user_id, course_id, score, issued_at
		FROM certificates
		WHERE user_id = ?
		ORDER BY issued_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query certificates: %w", err)
	}
	defer rows.Close()

	var certs []models.Certificate
	for rows.Next() {
		var cert models.Certificate
		err := rows.Scan(
			&cert.ID,
			&cert.UserID,
			&cert.CourseID,
			&cert.Score,
			&cert.IssuedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return certs, nil
}

// Create issues a certificate. The unique (user, course) key makes reissue
// attempts fail, which callers treat as already-issued.
func (r *certificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	query := `
		INSERT IGNORE INTO certificates (user_id, course_id, score)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		cert.UserID,
		cert.CourseID,
		cert.Score,
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	cert.ID = int(id)
	return nil
}
