package services

import (
	"context"
	"fmt"

	"postcard-backend/internal/models"
	"postcard-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// CollectionService handles collecting and liking postcards
type CollectionService struct {
	postcardRepo   *repository.PostcardRepository
	collectionRepo *repository.CollectionRepository
	pushService    *PushService
	hub            *Hub
}

// NewCollectionService creates a new collection service
func NewCollectionService(
	postcardRepo *repository.PostcardRepository,
	collectionRepo *repository.CollectionRepository,
	pushService *PushService,
	hub *Hub,
) *CollectionService {
	return &CollectionService{
		postcardRepo:   postcardRepo,
		collectionRepo: collectionRepo,
		pushService:    pushService,
		hub:            hub,
	}
}

// Collect picks up a postcard and adds it to the user's collection. A
// collected postcard disappears from the map, so the status transition
// is conditional: if another user got there first this returns
// repository.ErrNotFound, matching a postcard that no longer exists.
func (s *CollectionService) Collect(ctx context.Context, userID, postcardID string) error {
	postcard, err := s.postcardRepo.GetByID(ctx, postcardID)
	if err != nil {
		return err
	}
	if postcard.Status == models.StatusCollected {
		return repository.ErrNotFound
	}

	if err := s.postcardRepo.MarkCollected(ctx, postcardID); err != nil {
		return err
	}

	if err := s.collectionRepo.Add(ctx, userID, postcardID); err != nil {
		return fmt.Errorf("failed to add to collection: %w", err)
	}

	s.hub.Broadcast(Event{
		Type:        EventPostcardCollected,
		PostcardID:  postcardID,
		CollectorID: userID,
	})

	// Tell the author their postcard found a home. Push failures must
	// not fail the collect itself.
	if postcard.AuthorID != userID {
		err := s.pushService.NotifyUser(ctx, postcard.AuthorID, PushMessage{
			Title: "絵葉書通知",
			Body:  "あなたの絵葉書がコレクションされました",
			URL:   "/collection",
		})
		if err != nil {
			log.Error().Err(err).
				Str("postcard_id", postcardID).
				Str("author_id", postcard.AuthorID).
				Msg("Failed to notify author of collection")
		}
	}

	return nil
}

// GetCollection retrieves the user's collected postcards
func (s *CollectionService) GetCollection(ctx context.Context, userID string) ([]*models.CollectionItem, error) {
	return s.collectionRepo.GetByUser(ctx, userID)
}

// Like records a like on a postcard. Returns
// repository.ErrAlreadyExists when the user already liked it.
func (s *CollectionService) Like(ctx context.Context, userID, postcardID string) error {
	if _, err := s.postcardRepo.GetByID(ctx, postcardID); err != nil {
		return err
	}
	return s.collectionRepo.AddLike(ctx, userID, postcardID)
}
