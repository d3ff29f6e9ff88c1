package models

import "time"

// Profile represents a user account
type Profile struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"fullName"`
	PasswordHash     string    `json:"-"`
	Tier             Tier      `json:"tier"`
	IsAdmin          bool      `json:"isAdmin"`
	IsInternal       bool      `json:"isInternal"`
	StripeCustomerID string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ProfileListItem represents a user row in the admin console,
// including how many modules the user has completed
type ProfileListItem struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"fullName"`
	Tier             Tier      `json:"tier"`
	IsAdmin          bool      `json:"isAdmin"`
	CompletedModules int       `json:"completedModules"`
	CreatedAt        time.Time `json:"createdAt"`
}

// SignupRequest represents a request to create an account
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenResponse carries a freshly issued token pair
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UpdateTierRequest toggles a user's tier from the admin console
type UpdateTierRequest struct {
	Tier Tier `json:"tier" validate:"required,oneof=free premium"`
}

// GrantAccessRequest manually grants a user access to a course
type GrantAccessRequest struct {
	UserID   string `json:"userId" validate:"required"`
	CourseID int    `json:"courseId" validate:"required"`
}
