package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"postcard-backend/internal/models"
	"postcard-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	defaultNearbyRadius = 1000 // meters
	maxNearbyResults    = 50
	presignExpiry       = 5 * time.Minute
)

// PostcardService handles postcard-related business logic
type PostcardService struct {
	postcardRepo *repository.PostcardRepository
	s3Client     *s3.Client
	s3Bucket     string
	s3Region     string
}

// NewPostcardService creates a new postcard service
func NewPostcardService(
	postcardRepo *repository.PostcardRepository,
	awsRegion, s3Bucket, accessKey, secretKey, endpoint string,
) (*PostcardService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsRegion),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &PostcardService{
		postcardRepo: postcardRepo,
		s3Client:     s3Client,
		s3Bucket:     s3Bucket,
		s3Region:     awsRegion,
	}, nil
}

// UploadRequest represents a request to get a pre-signed URL
type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadResponse represents the response with pre-signed URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	ImageURL  string `json:"image_url"`
	ExpiresIn int    `json:"expires_in"`
}

// GetPreSignedUploadURL generates a pre-signed URL for uploading an image.
// The returned ImageURL is where the object will be readable after the
// client completes the PUT.
func (s *PostcardService) GetPreSignedUploadURL(ctx context.Context, userID, contentType string) (*UploadResponse, error) {
	key := fmt.Sprintf("images/%s/%s.jpg", userID, uuid.New().String())

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	imageURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.s3Bucket, s.s3Region, key)
	return &UploadResponse{
		UploadURL: request.URL,
		ImageURL:  imageURL,
		ExpiresIn: int(presignExpiry.Seconds()),
	}, nil
}

// CreatePostcard creates a postcard at the given position and sends it
// traveling toward a random waypoint.
func (s *PostcardService) CreatePostcard(ctx context.Context, authorID, imageURL, text string, lat, lon float64) (*models.Postcard, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid coordinates: %f, %f", lat, lon)
	}

	dest := waypoints[rand.Intn(len(waypoints))]
	now := time.Now()
	postcard := &models.Postcard{
		ID:       uuid.New().String(),
		AuthorID: authorID,
		ImageURL: imageURL,
		Text:     text,
		Status:   models.StatusTraveling,
		CurrentPosition: models.Position{
			Lat: models.Coordinate(lat), Lon: models.Coordinate(lon),
		},
		NextDestination: models.Position{
			Lat: models.Coordinate(dest.lat), Lon: models.Coordinate(dest.lon),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postcardRepo.Create(ctx, postcard); err != nil {
		return nil, err
	}

	origin := &models.PathPoint{
		PostcardID:  postcard.ID,
		Prefecture:  NearestPrefecture(lat, lon),
		Lat:         lat,
		Lon:         lon,
		ArrivalTime: now,
	}
	if err := s.postcardRepo.AddPathPoint(ctx, origin); err != nil {
		return nil, err
	}

	return postcard, nil
}

// GetMyPostcards retrieves all postcards created by a user
func (s *PostcardService) GetMyPostcards(ctx context.Context, userID string) ([]*models.Postcard, error) {
	return s.postcardRepo.GetByAuthor(ctx, userID)
}

// GetNearby retrieves traveling postcards within radius meters of a point
func (s *PostcardService) GetNearby(ctx context.Context, lat, lon float64, radius int) ([]*models.Postcard, error) {
	if radius <= 0 {
		radius = defaultNearbyRadius
	}

	candidates, err := s.postcardRepo.GetNearby(ctx, lat, lon, float64(radius))
	if err != nil {
		return nil, err
	}

	nearby := make([]*models.Postcard, 0, len(candidates))
	for _, p := range candidates {
		d := HaversineMeters(lat, lon,
			p.CurrentPosition.Lat.Float64(), p.CurrentPosition.Lon.Float64())
		if d <= float64(radius) {
			nearby = append(nearby, p)
		}
		if len(nearby) == maxNearbyResults {
			break
		}
	}
	return nearby, nil
}

// GetDetail retrieves a postcard with its travel path
func (s *PostcardService) GetDetail(ctx context.Context, postcardID string) (*models.Postcard, []models.PathPoint, error) {
	postcard, err := s.postcardRepo.GetByID(ctx, postcardID)
	if err != nil {
		return nil, nil, err
	}

	path, err := s.postcardRepo.GetPath(ctx, postcardID)
	if err != nil {
		return nil, nil, err
	}
	return postcard, path, nil
}

// GetPath retrieves a postcard's travel path
func (s *PostcardService) GetPath(ctx context.Context, postcardID string) ([]models.PathPoint, error) {
	if _, err := s.postcardRepo.GetByID(ctx, postcardID); err != nil {
		return nil, err
	}
	return s.postcardRepo.GetPath(ctx, postcardID)
}

// UpdatePostcard updates a postcard's content; only the author may do so
func (s *PostcardService) UpdatePostcard(ctx context.Context, postcardID, userID, imageURL, text string) error {
	postcard, err := s.postcardRepo.GetByID(ctx, postcardID)
	if err != nil {
		return err
	}
	if postcard.AuthorID != userID {
		return ErrForbidden
	}
	return s.postcardRepo.UpdateContent(ctx, postcardID, imageURL, text)
}

// DeletePostcard deletes a postcard; only the author may do so
func (s *PostcardService) DeletePostcard(ctx context.Context, postcardID, userID string) error {
	postcard, err := s.postcardRepo.GetByID(ctx, postcardID)
	if err != nil {
		return err
	}
	if postcard.AuthorID != userID {
		return ErrForbidden
	}
	return s.postcardRepo.Delete(ctx, postcardID)
}
