package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photoselect/internal/apperror"
	"photoselect/internal/config"
	"photoselect/internal/ids"
	"photoselect/internal/models"
	"photoselect/internal/repository"
	"photoselect/internal/security"
)

// webhookEvent mirrors the fields we consume from the billing
// provider's payload; everything else is ignored.
type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                 string `json:"id"`
			Customer           string `json:"customer"`
			Status             string `json:"status"`
			CurrentPeriodStart int64  `json:"current_period_start"`
			CurrentPeriodEnd   int64  `json:"current_period_end"`
			Metadata           struct {
				WorkspaceID string `json:"workspace_id"`
				Plan        string `json:"plan"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

type BillingService struct {
	subscriptions *repository.SubscriptionRepository
	dedup         *redis.Client
	cfg           *config.AppConfig
	log           zerolog.Logger
}

func NewBillingService(
	subscriptions *repository.SubscriptionRepository,
	dedup *redis.Client,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *BillingService {
	return &BillingService{
		subscriptions: subscriptions,
		dedup:         dedup,
		cfg:           cfg,
		log:           log,
	}
}

// HandleWebhook verifies the HMAC signature over the raw body, drops
// replays, then applies the event to the subscription rows.
func (s *BillingService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !security.VerifyWebhookSignature(s.cfg.Billing.WebhookSecret, body, signature) {
		return apperror.New(apperror.KindAuthorization, "invalid webhook signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperror.Wrap(apperror.KindValidation, "parse webhook payload", err)
	}
	if event.ID == "" || event.Type == "" {
		return apperror.New(apperror.KindValidation, "webhook payload missing id or type")
	}

	if s.dedup != nil {
		ok, err := s.dedup.SetNX(ctx, "webhook:"+event.ID, "1", 24*time.Hour).Result()
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", event.ID).Msg("webhook dedup check failed")
		} else if !ok {
			s.log.Info().Str("event_id", event.ID).Msg("duplicate webhook event ignored")
			return nil
		}
	}

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		return s.applySubscription(ctx, event)
	case "customer.subscription.deleted":
		return s.markStatus(ctx, event, models.SubscriptionStatusCanceled)
	case "invoice.payment_failed":
		return s.markStatus(ctx, event, models.SubscriptionStatusPastDue)
	case "invoice.payment_succeeded":
		return s.markStatus(ctx, event, models.SubscriptionStatusActive)
	default:
		s.log.Debug().Str("type", event.Type).Msg("unhandled webhook event type")
		return nil
	}
}

func (s *BillingService) applySubscription(ctx context.Context, event webhookEvent) error {
	object := event.Data.Object
	if object.Metadata.WorkspaceID == "" {
		return apperror.New(apperror.KindValidation, "webhook event missing workspace metadata")
	}

	plan := models.SubscriptionPlan(object.Metadata.Plan)
	switch plan {
	case models.PlanFree, models.PlanStarter, models.PlanStudio:
	default:
		plan = models.PlanFree
	}

	status := models.SubscriptionStatusActive
	if object.Status == "past_due" {
		status = models.SubscriptionStatusPastDue
	} else if object.Status == "canceled" {
		status = models.SubscriptionStatusCanceled
	}

	sub := models.Subscription{
		ID:                   ids.New(),
		WorkspaceID:          object.Metadata.WorkspaceID,
		Plan:                 plan,
		Status:               status,
		CurrentPeriodStart:   time.Unix(object.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:     time.Unix(object.CurrentPeriodEnd, 0).UTC(),
		StripeCustomerID:     object.Customer,
		StripeSubscriptionID: object.ID,
	}

	if err := s.subscriptions.Upsert(ctx, sub); err != nil {
		return apperror.Wrap(apperror.KindDatabase, "upsert subscription", err)
	}
	return nil
}

func (s *BillingService) markStatus(ctx context.Context, event webhookEvent, status models.SubscriptionStatus) error {
	id := event.Data.Object.ID
	if id == "" {
		return apperror.New(apperror.KindValidation, "webhook event missing subscription id")
	}
	if err := s.subscriptions.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			s.log.Warn().Str("subscription_id", id).Msg("webhook for unknown subscription")
			return nil
		}
		return apperror.Wrap(apperror.KindDatabase, "update subscription status", err)
	}
	return nil
}
