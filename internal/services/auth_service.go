package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/agentiqhub/backend/internal/models"
)

// ProfileRepository defines methods for profile data access
type ProfileRepository interface {
	// GetByID retrieves a profile by its ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the profile.
	//
	// Returns the profile and an error if any.
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	// GetByEmail retrieves a profile by email
	//
	// "ctx" is the context for the request.
	// "email" is the email of the profile.
	//
	// Returns the profile and an error if any.
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	// Create creates a new profile with a caller-supplied UUID
	//
	// "ctx" is the context for the request.
	// "profile" is the profile to create.
	//
	// Returns an error if any.
	Create(ctx context.Context, profile *models.Profile) error
	// ExistsByEmail checks if a profile with the given email exists
	//
	// "ctx" is the context for the request.
	// "email" is the email to check.
	//
	// Returns a boolean and an error if any.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TokenGenerator defines methods for issuing and validating token pairs
type TokenGenerator interface {
	// GenerateTokens issues an access and refresh token pair
	//
	// "userID" is the ID of the user.
	// "isAdmin" marks administrator accounts.
	// "isInternal" marks internal staff accounts.
	//
	// Returns the access token, the refresh token, and an error if any.
	GenerateTokens(userID string, isAdmin, isInternal bool) (string, string, error)
	// ValidateRefreshToken validates a refresh token
	//
	// "token" is the refresh token to validate.
	//
	// Returns the user ID and an error if any.
	ValidateRefreshToken(token string) (string, error)
}

type authService struct {
	profileRepo ProfileRepository
	tokens      TokenGenerator
}

// NewAuthService creates a new auth service
func NewAuthService(profileRepo ProfileRepository, tokens TokenGenerator) *authService {
	return &authService{
		profileRepo: profileRepo,
		tokens:      tokens,
	}
}

// Signup creates an account and issues a token pair
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.Profile, *models.TokenResponse, error) {
	exists, err := s.profileRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, nil, fmt.Errorf("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Tier:         models.TierFree,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, nil, fmt.Errorf("failed to create profile: %w", err)
	}

	tokens, err := s.issueTokens(profile)
	if err != nil {
		return nil, nil, err
	}

	return profile, tokens, nil
}

// Login verifies credentials and issues a token pair. Wrong email and wrong
// password produce the same error so accounts cannot be enumerated.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.Profile, *models.TokenResponse, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, fmt.Errorf("invalid email or password")
	}

	tokens, err := s.issueTokens(profile)
	if err != nil {
		return nil, nil, err
	}

	return profile, tokens, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. Claims are
// re-read from the profile so admin or tier changes take effect on rotation.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	userID, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return s.issueTokens(profile)
}

// GetProfile retrieves the authenticated user's profile
func (s *authService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *authService) issueTokens(profile *models.Profile) (*models.TokenResponse, error) {
	access, refresh, err := s.tokens.GenerateTokens(profile.ID, profile.IsAdmin, profile.IsInternal)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &models.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}
