package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"postcard-backend/internal/models"
	"postcard-backend/internal/repository"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog/log"
)

// PushMessage is the payload delivered to the browser. The service
// worker reads title/body/url; icon and badge are fixed app assets.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
	Badge string `json:"badge"`
	URL   string `json:"url"`
}

// PushService delivers web-push notifications to subscribed users
type PushService struct {
	subRepo    *repository.SubscriptionRepository
	vapidPub   string
	vapidPriv  string
	subscriber string
}

// NewPushService creates a new push service
func NewPushService(subRepo *repository.SubscriptionRepository, vapidPub, vapidPriv, subscriber string) *PushService {
	return &PushService{
		subRepo:    subRepo,
		vapidPub:   vapidPub,
		vapidPriv:  vapidPriv,
		subscriber: subscriber,
	}
}

// Subscribe stores a user's push subscription
func (s *PushService) Subscribe(ctx context.Context, userID, endpoint, p256dh, auth string) error {
	if endpoint == "" || p256dh == "" || auth == "" {
		return fmt.Errorf("incomplete subscription")
	}
	return s.subRepo.Upsert(ctx, &models.PushSubscription{
		UserID:    userID,
		Endpoint:  endpoint,
		P256dh:    p256dh,
		Auth:      auth,
		CreatedAt: time.Now(),
	})
}

// Unsubscribe removes a user's push subscription
func (s *PushService) Unsubscribe(ctx context.Context, userID string) error {
	return s.subRepo.Delete(ctx, userID)
}

// NotifyUser sends a notification to a user's subscribed browser. A
// missing subscription is not an error; the user simply never opted in.
// A 404/410 from the push endpoint means the subscription is dead and
// gets pruned.
func (s *PushService) NotifyUser(ctx context.Context, userID string, msg PushMessage) error {
	sub, err := s.subRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if msg.Icon == "" {
		msg.Icon = "/icon-512x512.png"
	}
	if msg.Badge == "" {
		msg.Badge = "/icon-512x512.png"
	}
	if msg.URL == "" {
		msg.URL = "/collection"
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPub,
		VAPIDPrivateKey: s.vapidPriv,
		TTL:             3600,
	})
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		log.Info().Str("user_id", userID).Msg("Pruning expired push subscription")
		if err := s.subRepo.Delete(ctx, userID); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to prune push subscription")
		}
		return nil
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
