package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"photoselect/internal/models"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

const subscriptionColumns = `id, workspace_id, plan, status, current_period_start, current_period_end, stripe_customer_id, stripe_subscription_id, created_at, updated_at`

func scanSubscription(row pgx.Row) (models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.WorkspaceID,
		&sub.Plan,
		&sub.Status,
		&sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd,
		&sub.StripeCustomerID,
		&sub.StripeSubscriptionID,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, ErrSubscriptionNotFound
		}
		return models.Subscription{}, err
	}
	return sub, nil
}

// Upsert keys on workspace_id: one subscription per workspace, updated
// in place as billing events arrive.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub models.Subscription) error {
	const query = `
		INSERT INTO subscriptions (
			id, workspace_id, plan, status, current_period_start, current_period_end,
			stripe_customer_id, stripe_subscription_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
		ON CONFLICT (workspace_id)
		DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query,
		sub.ID,
		sub.WorkspaceID,
		sub.Plan,
		sub.Status,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.StripeCustomerID,
		sub.StripeSubscriptionID,
	)
	return err
}

func (r *SubscriptionRepository) GetByWorkspace(ctx context.Context, workspaceID string) (models.Subscription, error) {
	const query = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE workspace_id = $1`
	return scanSubscription(r.pool.QueryRow(ctx, query, workspaceID))
}

func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus) error {
	const query = `
		UPDATE subscriptions
		SET status = $2, updated_at = NOW()
		WHERE stripe_subscription_id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, stripeSubscriptionID, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
