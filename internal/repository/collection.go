package repository

import (
	"context"
	"errors"
	"fmt"

	"postcard-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAlreadyExists is returned when a unique constraint would be violated.
var ErrAlreadyExists = errors.New("already exists")

// CollectionRepository handles database operations for collections and likes
type CollectionRepository struct {
	db *pgxpool.Pool
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Add inserts a postcard into a user's collection
func (r *CollectionRepository) Add(ctx context.Context, userID, postcardID string) error {
	query := `
		INSERT INTO collections (user_id, postcard_id, collected_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, postcard_id) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query, userID, postcardID)
	if err != nil {
		return fmt.Errorf("failed to add to collection: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// GetByUser retrieves a user's collection, most recently collected first
func (r *CollectionRepository) GetByUser(ctx context.Context, userID string) ([]*models.CollectionItem, error) {
	query := `
		SELECT p.id, p.image_url, p.text, p.created_at, p.author_id, p.likes_count, c.collected_at
		FROM collections c
		JOIN postcards p ON p.id = c.postcard_id
		WHERE c.user_id = $1
		ORDER BY c.collected_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	defer rows.Close()

	var items []*models.CollectionItem
	for rows.Next() {
		var item models.CollectionItem
		err := rows.Scan(
			&item.PostcardID, &item.ImageURL, &item.Text,
			&item.CreatedAt, &item.AuthorID, &item.LikesCount, &item.CollectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection: %w", err)
	}
	return items, nil
}

// AddLike records a like; at most one per user per postcard
func (r *CollectionRepository) AddLike(ctx context.Context, userID, postcardID string) error {
	query := `
		INSERT INTO likes (user_id, postcard_id, liked_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, postcard_id) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query, userID, postcardID)
	if err != nil {
		return fmt.Errorf("failed to add like: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAlreadyExists
	}

	_, err = r.db.Exec(ctx,
		`UPDATE postcards SET likes_count = likes_count + 1 WHERE id = $1`, postcardID)
	if err != nil {
		return fmt.Errorf("failed to bump likes count: %w", err)
	}
	return nil
}
