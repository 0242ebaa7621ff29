package repository

import (
	"context"
	"errors"
	"fmt"

	"postcard-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostcardRepository handles database operations for postcards
type PostcardRepository struct {
	db *pgxpool.Pool
}

// NewPostcardRepository creates a new postcard repository
func NewPostcardRepository(db *pgxpool.Pool) *PostcardRepository {
	return &PostcardRepository{db: db}
}

const postcardColumns = `
	id, author_id, image_url, text, status,
	current_lat, current_lon, next_lat, next_lon,
	likes_count, created_at, updated_at
`

func scanPostcard(row pgx.Row) (*models.Postcard, error) {
	var p models.Postcard
	var curLat, curLon, nextLat, nextLon float64
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.ImageURL, &p.Text, &p.Status,
		&curLat, &curLon, &nextLat, &nextLon,
		&p.LikesCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CurrentPosition = models.Position{Lat: models.Coordinate(curLat), Lon: models.Coordinate(curLon)}
	p.NextDestination = models.Position{Lat: models.Coordinate(nextLat), Lon: models.Coordinate(nextLon)}
	return &p, nil
}

// Create creates a new postcard
func (r *PostcardRepository) Create(ctx context.Context, p *models.Postcard) error {
	query := `
		INSERT INTO postcards (` + postcardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.AuthorID, p.ImageURL, p.Text, p.Status,
		p.CurrentPosition.Lat.Float64(), p.CurrentPosition.Lon.Float64(),
		p.NextDestination.Lat.Float64(), p.NextDestination.Lon.Float64(),
		p.LikesCount, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create postcard: %w", err)
	}
	return nil
}

// GetByID retrieves a postcard by ID
func (r *PostcardRepository) GetByID(ctx context.Context, id string) (*models.Postcard, error) {
	query := `SELECT ` + postcardColumns + ` FROM postcards WHERE id = $1`
	p, err := scanPostcard(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get postcard: %w", err)
	}
	return p, nil
}

// GetByAuthor retrieves all postcards created by a user, newest first
func (r *PostcardRepository) GetByAuthor(ctx context.Context, authorID string) ([]*models.Postcard, error) {
	query := `
		SELECT ` + postcardColumns + `
		FROM postcards
		WHERE author_id = $1
		ORDER BY created_at DESC
	`
	return r.queryPostcards(ctx, query, authorID)
}

// GetNearby retrieves traveling postcards within radiusMeters of the
// given point. The bounding-box prefilter keeps the haversine check off
// most rows; the service applies the exact distance cut.
func (r *PostcardRepository) GetNearby(ctx context.Context, lat, lon, radiusMeters float64) ([]*models.Postcard, error) {
	// ~111km per degree of latitude; longitude degrees shrink with
	// latitude but the service re-checks exact distance, so the wider
	// box near the poles is harmless.
	degrees := radiusMeters / 111_000
	query := `
		SELECT ` + postcardColumns + `
		FROM postcards
		WHERE status IN ($1, $2)
		  AND current_lat BETWEEN $3 AND $4
		  AND current_lon BETWEEN $5 AND $6
	`
	rows, err := r.db.Query(ctx, query,
		models.StatusTraveling, models.StatusStopped,
		lat-degrees, lat+degrees, lon-degrees, lon+degrees,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get nearby postcards: %w", err)
	}
	defer rows.Close()
	return collectPostcards(rows)
}

// GetTraveling retrieves all postcards still in transit
func (r *PostcardRepository) GetTraveling(ctx context.Context) ([]*models.Postcard, error) {
	query := `SELECT ` + postcardColumns + ` FROM postcards WHERE status = $1`
	return r.queryPostcards(ctx, query, models.StatusTraveling)
}

func (r *PostcardRepository) queryPostcards(ctx context.Context, query string, args ...any) ([]*models.Postcard, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get postcards: %w", err)
	}
	defer rows.Close()
	return collectPostcards(rows)
}

func collectPostcards(rows pgx.Rows) ([]*models.Postcard, error) {
	var postcards []*models.Postcard
	for rows.Next() {
		p, err := scanPostcard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan postcard: %w", err)
		}
		postcards = append(postcards, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating postcards: %w", err)
	}
	return postcards, nil
}

// UpdateContent updates the text and image of a postcard
func (r *PostcardRepository) UpdateContent(ctx context.Context, id, imageURL, text string) error {
	query := `UPDATE postcards SET image_url = $1, text = $2, updated_at = now() WHERE id = $3`
	result, err := r.db.Exec(ctx, query, imageURL, text, id)
	if err != nil {
		return fmt.Errorf("failed to update postcard: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePosition moves a postcard and optionally re-targets its destination
func (r *PostcardRepository) UpdatePosition(ctx context.Context, id string, cur, next models.Position) error {
	query := `
		UPDATE postcards
		SET current_lat = $1, current_lon = $2, next_lat = $3, next_lon = $4, updated_at = now()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query,
		cur.Lat.Float64(), cur.Lon.Float64(),
		next.Lat.Float64(), next.Lon.Float64(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update postcard position: %w", err)
	}
	return nil
}

// UpdateStatus transitions a postcard between lifecycle states
func (r *PostcardRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE postcards SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update postcard status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkCollected transitions a postcard to collected, but only if it has
// not already been collected. Returns ErrNotFound when another user won
// the race or the postcard does not exist.
func (r *PostcardRepository) MarkCollected(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE postcards SET status = $1, updated_at = now() WHERE id = $2 AND status != $1`,
		models.StatusCollected, id)
	if err != nil {
		return fmt.Errorf("failed to mark postcard collected: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a postcard
func (r *PostcardRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM postcards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete postcard: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPathPoint appends a stop to a postcard's journey
func (r *PostcardRepository) AddPathPoint(ctx context.Context, point *models.PathPoint) error {
	query := `
		INSERT INTO postcard_path (postcard_id, prefecture, lat, lon, arrival_time)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		point.PostcardID, point.Prefecture, point.Lat, point.Lon, point.ArrivalTime,
	)
	if err != nil {
		return fmt.Errorf("failed to add path point: %w", err)
	}
	return nil
}

// GetPath retrieves a postcard's travel path in arrival order
func (r *PostcardRepository) GetPath(ctx context.Context, postcardID string) ([]models.PathPoint, error) {
	query := `
		SELECT postcard_id, prefecture, lat, lon, arrival_time
		FROM postcard_path
		WHERE postcard_id = $1
		ORDER BY arrival_time ASC
	`
	rows, err := r.db.Query(ctx, query, postcardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get postcard path: %w", err)
	}
	defer rows.Close()

	var path []models.PathPoint
	for rows.Next() {
		var p models.PathPoint
		if err := rows.Scan(&p.PostcardID, &p.Prefecture, &p.Lat, &p.Lon, &p.ArrivalTime); err != nil {
			return nil, fmt.Errorf("failed to scan path point: %w", err)
		}
		path = append(path, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating path points: %w", err)
	}
	return path, nil
}
