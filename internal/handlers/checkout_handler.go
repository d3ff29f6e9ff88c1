package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/models"
	"github.com/agentiqhub/backend/libs/auth/middleware"
	"github.com/agentiqhub/backend/libs/handlers"
)

// CheckoutService is the interface that wraps payment operations.
type CheckoutService interface {
	// Method CreateCheckoutSession opens a payment session for a paid course
	// and returns the redirect URL. Free and already-owned courses are refused.
	CreateCheckoutSession(ctx context.Context, userID string, courseID int) (*models.CheckoutResponse, error)
	// Method HandleWebhook verifies and applies one payment provider event.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// CheckoutHandler handles payment HTTP requests
type CheckoutHandler struct {
	handlers.BaseHandler
	checkoutService CheckoutService
	validate        *validator.Validate
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		BaseHandler:     handlers.BaseHandler{Logger: logger},
		checkoutService: checkoutService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the checkout route.
// Note: the router must already carry the auth middleware.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/checkout", h.CreateCheckoutSession)
}

// RegisterWebhookRoutes registers the payment webhook on a public router.
// The webhook authenticates with its signature header, not a user token.
func (h *CheckoutHandler) RegisterWebhookRoutes(r chi.Router) {
	r.Post("/webhook", h.HandleWebhook)
}

// CreateCheckoutSession handles POST /checkout
// @Summary Start a course purchase
// @Description Open a payment session for a paid course and return the redirect URL
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Course to purchase"
// @Success 200 {object} models.CheckoutResponse "Payment redirect URL"
// @Failure 400 {object} map[string]string "Free course or access already held"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Payments not configured"
// @Router /checkout [post]
func (h *CheckoutHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	resp, err := h.checkoutService.CreateCheckoutSession(r.Context(), userID, req.CourseID)
	if err != nil {
		errStatus := http.StatusBadRequest
		if strings.Contains(err.Error(), "not found") {
			errStatus = http.StatusNotFound
		} else if strings.Contains(err.Error(), "not configured") {
			h.Logger.Error("checkout unavailable", zap.Error(err))
			errStatus = http.StatusInternalServerError
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.Logger.Info("checkout session created", zap.String("user_id", userID), zap.Int("course_id", req.CourseID))
	h.RespondJSON(w, http.StatusOK, resp)
}

// HandleWebhook handles POST /webhook
// @Summary Payment provider webhook
// @Description Verify the event signature and grant course access on completed checkouts
// @Tags checkout
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Event processed"
// @Failure 400 {object} map[string]string "Bad signature or payload"
// @Router /webhook [post]
func (h *CheckoutHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := h.checkoutService.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		h.Logger.Warn("webhook rejected", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondMessage(w, http.StatusOK, "event processed")
}
