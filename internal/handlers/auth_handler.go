package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/models"
	"github.com/agentiqhub/backend/libs/auth/middleware"
	"github.com/agentiqhub/backend/libs/handlers"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Signup creates an account and issues a token pair.
	//
	// "req" parameter contains email, full name and password.
	//
	// If the email is already registered, or some other error occurs, the error will be returned together with nil profile and tokens.
	Signup(ctx context.Context, req *models.SignupRequest) (*models.Profile, *models.TokenResponse, error)
	// Method Login verifies credentials and issues a token pair.
	//
	// "req" parameter contains email and password.
	//
	// If the credentials are invalid the error will be returned together with nil profile and tokens.
	Login(ctx context.Context, req *models.LoginRequest) (*models.Profile, *models.TokenResponse, error)
	// Method Refresh exchanges a valid refresh token for a fresh pair.
	//
	// "refreshToken" parameter is used to identify the user.
	//
	// If the refresh token is invalid or expired the error will be returned together with nil tokens.
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	// Method GetProfile retrieves a user's profile.
	//
	// "userID" parameter is the ID of the user.
	//
	// If the profile does not exist the error will be returned together with a nil profile.
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	handlers.BaseHandler
	authService AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers all auth handler routes.
// Signup, login and refresh are public; /auth/me requires a valid token.
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.With(authMiddleware).Get("/me", h.Me)
	})
}

// Signup handles POST /auth/signup
// @Summary Create an account
// @Description Create an account with email, full name and password. Returns the profile and sets token cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Signup request"
// @Success 201 {object} models.Profile "Created profile"
// @Failure 400 {object} map[string]string "Invalid request body or email already registered"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "email, full name and a password of at least 8 characters are required")
		return
	}

	profile, tokens, err := h.authService.Signup(r.Context(), &req)
	if err != nil {
		h.Logger.Error("failed to sign up user", zap.Error(err))
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "already registered") {
			errStatus = http.StatusBadRequest
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.setTokenCookies(w, tokens)
	h.RespondJSON(w, http.StatusCreated, profile)
}

// Login handles POST /auth/login
// @Summary Login
// @Description Authenticate with email and password. Returns the profile and sets token cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.Profile "Authenticated profile"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, tokens, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.Logger.Warn("failed login attempt", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.setTokenCookies(w, tokens)
	h.RespondJSON(w, http.StatusOK, profile)
}

// Refresh handles POST /auth/refresh
// @Summary Refresh tokens
// @Description Exchange a refresh token (body or cookie) for a fresh pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} map[string]string "Tokens refreshed"
// @Failure 400 {object} map[string]string "Refresh token required"
// @Failure 401 {object} map[string]string "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		refreshToken = req.RefreshToken
	} else {
		cookie, err := r.Cookie("refresh_token")
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "refresh token required")
			return
		}
		refreshToken = cookie.Value
	}

	tokens, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		h.Logger.Warn("failed to refresh tokens", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.setTokenCookies(w, tokens)
	h.RespondMessage(w, http.StatusOK, "tokens refreshed successfully")
}

// Me handles GET /auth/me
// @Summary Get own profile
// @Description Get the authenticated user's profile.
// @Tags auth
// @Produce json
// @Success 200 {object} models.Profile "Profile"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Profile not found"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := h.authService.GetProfile(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to get profile", zap.Error(err))
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			errStatus = http.StatusNotFound
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, profile)
}

// setTokenCookies sets access and refresh tokens as HTTP-only cookies
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, tokens *models.TokenResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    tokens.AccessToken,
		Path:     "/",
		MaxAge:   3600, // 1 hour
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    tokens.RefreshToken,
		Path:     "/",
		MaxAge:   604800, // 7 days
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
