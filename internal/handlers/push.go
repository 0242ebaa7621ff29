package handlers

import (
	"encoding/json"
	"net/http"

	"postcard-backend/internal/middleware"
	"postcard-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PushHandler handles push subscription HTTP requests
type PushHandler struct {
	pushService *services.PushService
}

// NewPushHandler creates a new push handler
func NewPushHandler(pushService *services.PushService) *PushHandler {
	return &PushHandler{
		pushService: pushService,
	}
}

// SubscriptionRequest mirrors the serialized browser PushSubscription
type SubscriptionRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe handles POST /api/users/me/push-subscription
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req SubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.pushService.Subscribe(ctx, userID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to store push subscription")
		respondError(w, "Invalid subscription", http.StatusBadRequest)
		return
	}

	log.Info().Str("user_id", userID).Msg("Push subscription registered")
	respondJSON(w, http.StatusOK, map[string]string{"message": "通知を有効にしました。"})
}

// Unsubscribe handles DELETE /api/users/me/push-subscription
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.pushService.Unsubscribe(ctx, userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to remove push subscription")
		respondError(w, "Failed to unsubscribe", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "通知を無効にしました。"})
}
