package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/models"
)

type checkoutService struct {
	courseRepo  CourseRepository
	profileRepo ProfileStore
	accessRepo  AccessStore
	logger      *zap.Logger

	webhookSecret string
	siteURL       string
	configured    bool

	// indirection over the Stripe SDK call for tests
	createSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// NewCheckoutService creates the payment service. With an empty secret key
// the service stays up but refuses checkout attempts, so a deployment without
// payment credentials still serves free courses.
func NewCheckoutService(
	courseRepo CourseRepository,
	profileRepo ProfileStore,
	accessRepo AccessStore,
	secretKey, webhookSecret, siteURL string,
	logger *zap.Logger,
) *checkoutService {
	if secretKey != "" {
		stripe.Key = secretKey
	}

	return &checkoutService{
		courseRepo:    courseRepo,
		profileRepo:   profileRepo,
		accessRepo:    accessRepo,
		logger:        logger,
		webhookSecret: webhookSecret,
		siteURL:       siteURL,
		configured:    secretKey != "",
		createSession: session.New,
	}
}

// CreateCheckoutSession opens a hosted payment page for one paid course and
// returns its redirect URL. The user and course ride along as metadata so the
// completion webhook can attribute the payment.
func (s *checkoutService) CreateCheckoutSession(ctx context.Context, userID string, courseID int) (*models.CheckoutResponse, error) {
	if !s.configured {
		return nil, fmt.Errorf("payments are not configured")
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.Price == 0 {
		return nil, fmt.Errorf("this course is free and needs no checkout")
	}

	access, err := s.accessRepo.Get(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course access: %w", err)
	}
	if access != nil && (access.AccessType == models.AccessTypePurchased || access.AccessType == models.AccessTypeGranted) {
		return nil, fmt.Errorf("you already have access to this course")
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(s.siteURL + "/dashboard?upgraded=true"),
		CancelURL:          stripe.String(s.siteURL + "/dashboard?cancelled=true"),
		CustomerEmail:      stripe.String(profile.Email),
	}
	params.AddMetadata("userId", userID)
	params.AddMetadata("courseId", strconv.Itoa(courseID))

	if course.StripePriceID != "" {
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(course.StripePriceID),
			Quantity: stripe.Int64(1),
		}}
	} else {
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(int64(course.Price)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(course.Title),
				},
			},
			Quantity: stripe.Int64(1),
		}}
	}

	checkout, err := s.createSession(params)
	if err != nil {
		s.logger.Error("failed to create checkout session",
			zap.String("user_id", userID),
			zap.Int("course_id", courseID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to start checkout")
	}

	return &models.CheckoutResponse{URL: checkout.URL}, nil
}

// HandleWebhook verifies and processes a payment provider event. On a
// completed checkout the buyer gets a purchased access record for the course
// in the session metadata, their tier moves to premium, and the payment
// customer reference is stored. Replayed events converge on the same state.
func (s *checkoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.webhookSecret == "" {
		return fmt.Errorf("webhook secret is not configured")
	}

	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return fmt.Errorf("invalid webhook signature: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		return nil
	}

	var checkout stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &checkout); err != nil {
		return fmt.Errorf("failed to decode checkout session: %w", err)
	}

	userID := checkout.Metadata["userId"]
	if userID == "" {
		s.logger.Warn("checkout completed without user metadata",
			zap.String("session_id", checkout.ID))
		return nil
	}
	courseID, err := strconv.Atoi(checkout.Metadata["courseId"])
	if err != nil {
		s.logger.Warn("checkout completed without course metadata",
			zap.String("session_id", checkout.ID),
			zap.String("user_id", userID),
		)
		return nil
	}

	access := &models.UserCourseAccess{
		UserID:          userID,
		CourseID:        courseID,
		AccessType:      models.AccessTypePurchased,
		StripeSessionID: checkout.ID,
	}
	if err := s.accessRepo.Upsert(ctx, access); err != nil {
		return fmt.Errorf("failed to grant purchased access: %w", err)
	}

	if err := s.profileRepo.UpdateTier(ctx, userID, models.TierPremium); err != nil {
		s.logger.Warn("failed to move buyer to premium tier",
			zap.String("user_id", userID), zap.Error(err))
	}
	if checkout.Customer != nil && checkout.Customer.ID != "" {
		if err := s.profileRepo.SetStripeCustomerID(ctx, userID, checkout.Customer.ID); err != nil {
			s.logger.Warn("failed to store customer reference",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	s.logger.Info("purchase recorded",
		zap.String("user_id", userID),
		zap.Int("course_id", courseID),
		zap.String("session_id", checkout.ID),
	)

	return nil
}
