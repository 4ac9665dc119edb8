package models

import "time"

type SubscriptionPlan string

const (
	PlanFree    SubscriptionPlan = "free"
	PlanStarter SubscriptionPlan = "starter"
	PlanStudio  SubscriptionPlan = "studio"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

type Subscription struct {
	ID                   string
	WorkspaceID          string
	Plan                 SubscriptionPlan
	Status               SubscriptionStatus
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	StripeCustomerID     string
	StripeSubscriptionID string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
