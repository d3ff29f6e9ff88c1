package services

import (
	"context"
	"fmt"

	"github.com/agentiqhub/backend/internal/models"
)

// ProfileStore defines methods for profile administration
type ProfileStore interface {
	ProfileRepository
	// GetAll retrieves every profile with its completed-module count
	//
	// "ctx" is the context for the request.
	//
	// Returns a list of profiles and an error if any.
	GetAll(ctx context.Context) ([]models.ProfileListItem, error)
	// UpdateTier sets a profile's tier
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the profile.
	// "tier" is the target tier.
	//
	// Returns an error if any.
	UpdateTier(ctx context.Context, id string, tier models.Tier) error
	// SetStripeCustomerID stores the payment customer reference for a profile
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the profile.
	// "customerID" is the payment provider's customer reference.
	//
	// Returns an error if any.
	SetStripeCustomerID(ctx context.Context, id, customerID string) error
}

// AccessStore defines methods for administering course access grants
type AccessStore interface {
	AccessRepository
	// Upsert stores an access grant, replay-safe
	//
	// "ctx" is the context for the request.
	// "access" is the grant to store.
	//
	// Returns an error if any.
	Upsert(ctx context.Context, access *models.UserCourseAccess) error
	// Delete revokes a user's access to a course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns an error if any.
	Delete(ctx context.Context, userID string, courseID int) error
}

type adminUserService struct {
	profileRepo ProfileStore
	accessRepo  AccessStore
	courseRepo  CourseRepository
}

// NewAdminUserService creates the admin user management service
func NewAdminUserService(
	profileRepo ProfileStore,
	accessRepo AccessStore,
	courseRepo CourseRepository,
) *adminUserService {
	return &adminUserService{
		profileRepo: profileRepo,
		accessRepo:  accessRepo,
		courseRepo:  courseRepo,
	}
}

// ListUsers retrieves every user with completion counts
func (s *adminUserService) ListUsers(ctx context.Context) ([]models.ProfileListItem, error) {
	return s.profileRepo.GetAll(ctx)
}

// UpdateTier sets a user's tier
func (s *adminUserService) UpdateTier(ctx context.Context, userID string, tier models.Tier) error {
	return s.profileRepo.UpdateTier(ctx, userID, tier)
}

// GrantAccess manually grants a user full access to a course
func (s *adminUserService) GrantAccess(ctx context.Context, req *models.GrantAccessRequest) error {
	if _, err := s.profileRepo.GetByID(ctx, req.UserID); err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if _, err := s.courseRepo.GetByID(ctx, req.CourseID); err != nil {
		return fmt.Errorf("failed to get course: %w", err)
	}

	access := &models.UserCourseAccess{
		UserID:     req.UserID,
		CourseID:   req.CourseID,
		AccessType: models.AccessTypeGranted,
	}
	if err := s.accessRepo.Upsert(ctx, access); err != nil {
		return fmt.Errorf("failed to grant access: %w", err)
	}

	return nil
}

// RevokeAccess removes a user's access record for a course. It does not touch
// completion history, so a re-grant resumes where the learner left off.
func (s *adminUserService) RevokeAccess(ctx context.Context, userID string, courseID int) error {
	return s.accessRepo.Delete(ctx, userID, courseID)
}

// ListUserAccess retrieves a user's course access records
func (s *adminUserService) ListUserAccess(ctx context.Context, userID string) ([]models.UserCourseAccess, error) {
	return s.accessRepo.ListByUser(ctx, userID)
}
