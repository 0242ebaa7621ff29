package repository

import (
	"context"
	"errors"
	"fmt"

	"postcard-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionRepository handles database operations for web-push subscriptions
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert stores or replaces the push subscription for a user. A user
// has at most one active subscription; re-subscribing replaces it.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET endpoint = EXCLUDED.endpoint, p256dh = EXCLUDED.p256dh,
		    auth = EXCLUDED.auth, created_at = EXCLUDED.created_at
	`
	_, err := r.db.Exec(ctx, query,
		sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert push subscription: %w", err)
	}
	return nil
}

// GetByUser retrieves the push subscription for a user
func (r *SubscriptionRepository) GetByUser(ctx context.Context, userID string) (*models.PushSubscription, error) {
	query := `
		SELECT user_id, endpoint, p256dh, auth, created_at
		FROM push_subscriptions
		WHERE user_id = $1
	`
	var sub models.PushSubscription
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get push subscription: %w", err)
	}
	return &sub, nil
}

// Delete removes the push subscription for a user
func (r *SubscriptionRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM push_subscriptions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}
