package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"postcard-backend/internal/middleware"
	"postcard-backend/internal/models"
	"postcard-backend/internal/repository"
	"postcard-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PostcardHandler handles postcard-related HTTP requests
type PostcardHandler struct {
	postcardService *services.PostcardService
}

// NewPostcardHandler creates a new postcard handler
func NewPostcardHandler(postcardService *services.PostcardService) *PostcardHandler {
	return &PostcardHandler{
		postcardService: postcardService,
	}
}

// CreatePostcardRequest is the body of POST /api/postcards
type CreatePostcardRequest struct {
	ImageURL string  `json:"image_url"`
	Text     string  `json:"text"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// CreatePostcard handles POST /api/postcards
func (h *PostcardHandler) CreatePostcard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreatePostcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ImageURL == "" {
		respondError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	postcard, err := h.postcardService.CreatePostcard(ctx, userID, req.ImageURL, req.Text, req.Lat, req.Lon)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create postcard")
		respondError(w, "Failed to create postcard", http.StatusBadRequest)
		return
	}

	log.Info().
		Str("postcard_id", postcard.ID).
		Str("user_id", userID).
		Msg("Postcard created")

	respondJSON(w, http.StatusCreated, map[string]any{
		"postcard_id": postcard.ID,
		"created_at":  postcard.CreatedAt,
	})
}

// GetMyPostcards handles GET /api/postcards/my
func (h *PostcardHandler) GetMyPostcards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	postcards, err := h.postcardService.GetMyPostcards(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get my postcards")
		respondError(w, "Failed to get postcards", http.StatusInternalServerError)
		return
	}
	if postcards == nil {
		postcards = []*models.Postcard{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"postcards": postcards})
}

// GetNearby handles GET /api/postcards/nearby
func (h *PostcardHandler) GetNearby(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		respondError(w, "lat and lon are required", http.StatusBadRequest)
		return
	}

	radius := 0
	if radiusStr := r.URL.Query().Get("radius"); radiusStr != "" {
		if parsed, err := strconv.Atoi(radiusStr); err == nil {
			radius = parsed
		}
	}

	postcards, err := h.postcardService.GetNearby(ctx, lat, lon, radius)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get nearby postcards")
		respondError(w, "Failed to get nearby postcards", http.StatusInternalServerError)
		return
	}
	if postcards == nil {
		postcards = []*models.Postcard{}
	}

	respondJSON(w, http.StatusOK, postcards)
}

// GetDetail handles GET /api/postcards/{postcard_id}
func (h *PostcardHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postcardID := chi.URLParam(r, "postcard_id")

	postcard, path, err := h.postcardService.GetDetail(ctx, postcardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Postcard not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("postcard_id", postcardID).Msg("Failed to get postcard detail")
		respondError(w, "Failed to get postcard", http.StatusInternalServerError)
		return
	}
	if path == nil {
		path = []models.PathPoint{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"postcard_id":      postcard.ID,
		"image_url":        postcard.ImageURL,
		"text":             postcard.Text,
		"created_at":       postcard.CreatedAt,
		"author_id":        postcard.AuthorID,
		"likes_count":      postcard.LikesCount,
		"current_position": postcard.CurrentPosition,
		"path":             path,
	})
}

// GetPath handles GET /api/postcards/{postcard_id}/path
func (h *PostcardHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postcardID := chi.URLParam(r, "postcard_id")

	path, err := h.postcardService.GetPath(ctx, postcardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Postcard not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("postcard_id", postcardID).Msg("Failed to get postcard path")
		respondError(w, "Failed to get path", http.StatusInternalServerError)
		return
	}
	if path == nil {
		path = []models.PathPoint{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"postcard_id": postcardID,
		"path":        path,
	})
}

// UpdatePostcardRequest is the body of PUT /api/postcards/{postcard_id}
type UpdatePostcardRequest struct {
	ImageURL string `json:"image_url"`
	Text     string `json:"text"`
}

// UpdatePostcard handles PUT /api/postcards/{postcard_id}
func (h *PostcardHandler) UpdatePostcard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	postcardID := chi.URLParam(r, "postcard_id")

	var req UpdatePostcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.postcardService.UpdatePostcard(ctx, postcardID, userID, req.ImageURL, req.Text)
	if err != nil {
		h.respondPostcardError(w, err, postcardID, userID, "Failed to update postcard")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message":     "絵葉書が更新されました。",
		"postcard_id": postcardID,
	})
}

// DeletePostcard handles DELETE /api/postcards/{postcard_id}
func (h *PostcardHandler) DeletePostcard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	postcardID := chi.URLParam(r, "postcard_id")

	if err := h.postcardService.DeletePostcard(ctx, postcardID, userID); err != nil {
		h.respondPostcardError(w, err, postcardID, userID, "Failed to delete postcard")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message":     "絵葉書が削除されました。",
		"postcard_id": postcardID,
	})
}

func (h *PostcardHandler) respondPostcardError(w http.ResponseWriter, err error, postcardID, userID, msg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, "Postcard not found", http.StatusNotFound)
	case errors.Is(err, services.ErrForbidden):
		respondError(w, "Not the author of this postcard", http.StatusForbidden)
	default:
		log.Error().Err(err).
			Str("postcard_id", postcardID).
			Str("user_id", userID).
			Msg(msg)
		respondError(w, msg, http.StatusInternalServerError)
	}
}

// Upload handles POST /api/uploads
func (h *PostcardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	response, err := h.postcardService.GetPreSignedUploadURL(ctx, userID, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to generate pre-signed URL")
		respondError(w, "Failed to generate upload URL", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("image_url", response.ImageURL).
		Msg("Pre-signed URL generated")

	respondJSON(w, http.StatusOK, response)
}
