package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agentiqhub/backend/internal/models"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB) *profileRepository {
	return &profileRepository{
		db: db,
	}
}

// GetByID retrieves a profile by its ID
func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, email, full_name, password_hash, tier, is_admin, is_internal, stripe_customer_id, created_at
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a profile by email
func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `
		SELECT id, email, full_name, password_hash, tier, is_admin, is_internal, stripe_customer_id, created_at
		FROM profiles
		WHERE email = ?
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *profileRepository) scanOne(row *sql.Row) (*models.Profile, error) {
	var profile models.Profile
	var stripeCustomerID sql.NullString
	err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.PasswordHash,
		&profile.Tier,
		&profile.IsAdmin,
		&profile.IsInternal,
		&stripeCustomerID,
		&profile.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.StripeCustomerID = stripeCustomerID.String
	return &profile, nil
}

// GetAll retrieves every profile with its completed-module count for the
// admin console, newest first
func (r *profileRepository) GetAll(ctx context.Context) ([]models.ProfileListItem, error) {
	query := `
		SELECT
			p.id,
			p.email,
			p.full_name,
			p.tier,
			p.is_admin,
			COUNT(mc.module_id) as completed_modules,
			p.created_at
		FROM profiles p
		LEFT JOIN module_completions mc ON mc.user_id = p.id
		GROUP BY p.id, p.email, p.full_name, p.tier, p.is_admin, p.created_at
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.ProfileListItem
	for rows.Next() {
		var profile models.ProfileListItem
		err := rows.Scan(
			&profile.ID,
			&profile.Email,
			&profile.FullName,
			&profile.Tier,
			&profile.IsAdmin,
			&profile.CompletedModules,
			&profile.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return profiles, nil
}

// Create creates a new profile. The caller supplies the UUID.
func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, password_hash, tier, is_admin, is_internal)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.Email,
		profile.FullName,
		profile.PasswordHash,
		profile.Tier,
		profile.IsAdmin,
		profile.IsInternal,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// UpdateTier sets a profile's tier
func (r *profileRepository) UpdateTier(ctx context.Context, id string, tier models.Tier) error {
	query := "UPDATE profiles SET tier = ? WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, tier, id)
	if err != nil {
		return fmt.Errorf("failed to update tier: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("profile not found")
	}

	return nil
}

// SetStripeCustomerID stores the payment customer reference for a profile
func (r *profileRepository) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	query := "UPDATE profiles SET stripe_customer_id = ? WHERE id = ?"

	_, err := r.db.ExecContext(ctx, query, customerID, id)
	if err != nil {
		return fmt.Errorf("failed to set stripe customer id: %w", err)
	}

	return nil
}

// ExistsByEmail checks if a profile with the given email exists
func (r *profileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM profiles WHERE email = ?)"
	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}
	return exists, nil
}
