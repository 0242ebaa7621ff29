package handlers

import (
	"errors"
	"net/http"

	"postcard-backend/internal/middleware"
	"postcard-backend/internal/models"
	"postcard-backend/internal/repository"
	"postcard-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// CollectionHandler handles collection-related HTTP requests
type CollectionHandler struct {
	collectionService *services.CollectionService
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(collectionService *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
	}
}

// Collect handles POST /api/postcards/{postcard_id}/collect
func (h *CollectionHandler) Collect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	postcardID := chi.URLParam(r, "postcard_id")

	if err := h.collectionService.Collect(ctx, userID, postcardID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Postcard not found or already collected", http.StatusNotFound)
			return
		}
		log.Error().Err(err).
			Str("postcard_id", postcardID).
			Str("user_id", userID).
			Msg("Failed to collect postcard")
		respondError(w, "Failed to collect postcard", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("postcard_id", postcardID).
		Str("user_id", userID).
		Msg("Postcard collected")

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "絵葉書をコレクションに追加しました。",
	})
}

// GetCollection handles GET /api/collection
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	items, err := h.collectionService.GetCollection(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get collection")
		respondError(w, "Failed to get collection", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []*models.CollectionItem{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"postcards": items})
}

// Like handles POST /api/postcards/{postcard_id}/like
func (h *CollectionHandler) Like(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	postcardID := chi.URLParam(r, "postcard_id")

	if err := h.collectionService.Like(ctx, userID, postcardID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respondError(w, "Postcard not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrAlreadyExists):
			respondError(w, "Already liked", http.StatusConflict)
		default:
			log.Error().Err(err).
				Str("postcard_id", postcardID).
				Str("user_id", userID).
				Msg("Failed to like postcard")
			respondError(w, "Failed to like postcard", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "いいね！が追加されました。"})
}
