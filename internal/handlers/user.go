package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"postcard-backend/internal/middleware"
	"postcard-backend/internal/repository"
	"postcard-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// TokenRequest is the body of POST /api/auth/token
type TokenRequest struct {
	IDToken string `json:"id_token"`
}

// TokenResponse is the response of POST /api/auth/token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

// ExchangeToken handles POST /api/auth/token
func (h *UserHandler) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		respondError(w, "id_token is required", http.StatusBadRequest)
		return
	}

	apiToken, userID, err := h.userService.ExchangeToken(r.Context(), req.IDToken)
	if err != nil {
		log.Warn().Err(err).Msg("Token exchange rejected")
		respondError(w, "Invalid identity token", http.StatusUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{AccessToken: apiToken, UserID: userID})
}

// ProfileRequest is the body for profile create/update
type ProfileRequest struct {
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

// CreateProfile handles POST /api/users
func (h *UserHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	email := middleware.GetEmail(ctx)

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		respondError(w, "username is required", http.StatusBadRequest)
		return
	}

	user, err := h.userService.CreateProfile(ctx, userID, email, req.Username, req.ProfileImageURL)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create profile")
		respondError(w, "Failed to create profile", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("Profile created")
	respondJSON(w, http.StatusCreated, user)
}

// GetMyProfile handles GET /api/users/me
func (h *UserHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Profile not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get profile")
		respondError(w, "Failed to get profile", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// GetUserProfile handles GET /api/users/{user_id}
func (h *UserHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID := chi.URLParam(r, "user_id")

	profile, err := h.userService.GetPublicProfile(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("target_id", targetID).Msg("Failed to get public profile")
		respondError(w, "Failed to get profile", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateMyProfile handles PUT /api/users/me
func (h *UserHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		respondError(w, "username is required", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdateProfile(ctx, userID, req.Username, req.ProfileImageURL); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Profile not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondError(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "プロフィールが更新されました。",
		"user_id": userID,
	})
}

// DeleteMyProfile handles DELETE /api/users/me
func (h *UserHandler) DeleteMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.userService.DeleteProfile(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Profile not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to delete profile")
		respondError(w, "Failed to delete profile", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "プロフィールが削除されました。"})
}
