package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/models"
)

const testWebhookSecret = "whsec_test"

// eventPayload wraps a checkout session object in an event envelope carrying
// the API version the SDK's signature check expects.
func eventPayload(eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{
		"type": %q,
		"api_version": %q,
		"data": {"object": %s}
	}`, eventType, stripe.APIVersion, object))
}

// signPayload builds a provider signature header the way Stripe does:
// HMAC-SHA256 over "<timestamp>.<payload>" with the webhook secret.
func signPayload(payload []byte, secret string) string {
	timestamp := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func newTestCheckoutService(course *models.Course, access *models.UserCourseAccess,
	profiles *mockProfileStore, accessRepo *mockAccessRepository) *checkoutService {

	if accessRepo == nil {
		accessRepo = &mockAccessRepository{access: access}
	}
	return NewCheckoutService(
		&mockCourseRepository{course: course},
		profiles,
		accessRepo,
		"sk_test", testWebhookSecret, "https://hub.example.com",
		zap.NewNop(),
	)
}

func TestCheckoutService_CreateCheckoutSession(t *testing.T) {
	course := &models.Course{ID: 7, Title: "Agent Foundations", Price: 4900}
	profiles := &mockProfileStore{profile: &models.Profile{ID: "user-1", Email: "learner@example.com"}}
	svc := newTestCheckoutService(course, nil, profiles, nil)

	var got *stripe.CheckoutSessionParams
	svc.createSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		got = params
		return &stripe.CheckoutSession{URL: "https://checkout.stripe.com/pay/cs_test"}, nil
	}

	resp, err := svc.CreateCheckoutSession(context.Background(), "user-1", 7)

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test", resp.URL)
	require.NotNil(t, got)
	assert.Equal(t, "https://hub.example.com/dashboard?upgraded=true", *got.SuccessURL)
	assert.Equal(t, "https://hub.example.com/dashboard?cancelled=true", *got.CancelURL)
	assert.Equal(t, "learner@example.com", *got.CustomerEmail)
	assert.Equal(t, "user-1", got.Metadata["userId"])
	assert.Equal(t, "7", got.Metadata["courseId"])
	require.Len(t, got.LineItems, 1)
	// no price ID on the course: ad-hoc price data from the course row
	require.NotNil(t, got.LineItems[0].PriceData)
	assert.Equal(t, int64(4900), *got.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "Agent Foundations", *got.LineItems[0].PriceData.ProductData.Name)
}

func TestCheckoutService_CreateCheckoutSessionUsesPriceID(t *testing.T) {
	course := &models.Course{ID: 7, Title: "Agent Foundations", Price: 4900, StripePriceID: "price_123"}
	profiles := &mockProfileStore{profile: &models.Profile{ID: "user-1", Email: "learner@example.com"}}
	svc := newTestCheckoutService(course, nil, profiles, nil)

	var got *stripe.CheckoutSessionParams
	svc.createSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		got = params
		return &stripe.CheckoutSession{URL: "https://checkout.stripe.com/pay/cs_test"}, nil
	}

	_, err := svc.CreateCheckoutSession(context.Background(), "user-1", 7)

	require.NoError(t, err)
	require.Len(t, got.LineItems, 1)
	assert.Equal(t, "price_123", *got.LineItems[0].Price)
	assert.Nil(t, got.LineItems[0].PriceData)
}

func TestCheckoutService_CreateCheckoutSessionRefusals(t *testing.T) {
	tests := []struct {
		name    string
		course  *models.Course
		access  *models.UserCourseAccess
		wantErr string
	}{
		{
			name:    "free course",
			course:  &models.Course{ID: 7, Price: 0},
			wantErr: "free",
		},
		{
			name:    "already purchased",
			course:  &models.Course{ID: 7, Price: 4900},
			access:  &models.UserCourseAccess{AccessType: models.AccessTypePurchased},
			wantErr: "already have access",
		},
		{
			name:    "already granted",
			course:  &models.Course{ID: 7, Price: 4900},
			access:  &models.UserCourseAccess{AccessType: models.AccessTypeGranted},
			wantErr: "already have access",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &mockProfileStore{profile: &models.Profile{ID: "user-1"}}
			svc := newTestCheckoutService(tt.course, tt.access, profiles, nil)
			svc.createSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
				t.Fatal("checkout session should not be created")
				return nil, nil
			}

			_, err := svc.CreateCheckoutSession(context.Background(), "user-1", 7)

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckoutService_CreateCheckoutSessionNotConfigured(t *testing.T) {
	svc := NewCheckoutService(
		&mockCourseRepository{},
		&mockProfileStore{},
		&mockAccessRepository{},
		"", "", "https://hub.example.com",
		zap.NewNop(),
	)

	_, err := svc.CreateCheckoutSession(context.Background(), "user-1", 7)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestCheckoutService_HandleWebhookGrantsAccess(t *testing.T) {
	payload := eventPayload("checkout.session.completed", `{
		"id": "cs_test_123",
		"customer": {"id": "cus_456"},
		"metadata": {"userId": "user-1", "courseId": "7"}
	}`)

	profiles := &mockProfileStore{}
	accessRepo := &mockAccessRepository{}
	svc := newTestCheckoutService(nil, nil, profiles, accessRepo)

	err := svc.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))

	require.NoError(t, err)
	granted := accessRepo.lastUpserted()
	require.NotNil(t, granted)
	assert.Equal(t, "user-1", granted.UserID)
	assert.Equal(t, 7, granted.CourseID)
	assert.Equal(t, models.AccessTypePurchased, granted.AccessType)
	assert.Equal(t, "cs_test_123", granted.StripeSessionID)
	assert.Equal(t, models.TierPremium, profiles.updatedTier)
	assert.Equal(t, "cus_456", profiles.customerID)
}

func TestCheckoutService_HandleWebhookRejectsBadSignature(t *testing.T) {
	payload := eventPayload("checkout.session.completed", `{}`)
	accessRepo := &mockAccessRepository{}
	svc := newTestCheckoutService(nil, nil, &mockProfileStore{}, accessRepo)

	err := svc.HandleWebhook(context.Background(), payload, signPayload(payload, "whsec_other"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid webhook signature")
	assert.Nil(t, accessRepo.lastUpserted())
}

func TestCheckoutService_HandleWebhookIgnoresOtherEvents(t *testing.T) {
	payload := eventPayload("invoice.paid", `{}`)
	accessRepo := &mockAccessRepository{}
	svc := newTestCheckoutService(nil, nil, &mockProfileStore{}, accessRepo)

	err := svc.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))

	assert.NoError(t, err)
	assert.Nil(t, accessRepo.lastUpserted())
}

func TestCheckoutService_HandleWebhookMissingMetadata(t *testing.T) {
	payload := eventPayload("checkout.session.completed", `{"id": "cs_test_123", "metadata": {}}`)
	accessRepo := &mockAccessRepository{}
	svc := newTestCheckoutService(nil, nil, &mockProfileStore{}, accessRepo)

	err := svc.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))

	// acknowledged so the provider stops retrying, but nothing is granted
	assert.NoError(t, err)
	assert.Nil(t, accessRepo.lastUpserted())
}
