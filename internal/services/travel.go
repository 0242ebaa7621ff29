package services

import (
	"context"
	"math/rand"
	"time"

	"postcard-backend/internal/models"
	"postcard-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// TravelService moves traveling postcards toward their destinations on
// a fixed interval. On arrival a path point is recorded, the author is
// notified, and the postcard is re-routed to a new random waypoint.
type TravelService struct {
	postcardRepo *repository.PostcardRepository
	pushService  *PushService
	hub          *Hub
	interval     time.Duration
	speedKmh     float64
	arriveMeters float64
}

// NewTravelService creates a new travel service
func NewTravelService(
	postcardRepo *repository.PostcardRepository,
	pushService *PushService,
	hub *Hub,
	interval time.Duration,
	speedKmh, arriveMeters float64,
) *TravelService {
	return &TravelService{
		postcardRepo: postcardRepo,
		pushService:  pushService,
		hub:          hub,
		interval:     interval,
		speedKmh:     speedKmh,
		arriveMeters: arriveMeters,
	}
}

// Run ticks until ctx is cancelled
func (s *TravelService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", s.interval).
		Float64("speed_kmh", s.speedKmh).
		Msg("Travel worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Travel worker stopped")
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				log.Error().Err(err).Msg("Travel tick failed")
			}
		}
	}
}

// Tick advances every traveling postcard by one step
func (s *TravelService) Tick(ctx context.Context) error {
	postcards, err := s.postcardRepo.GetTraveling(ctx)
	if err != nil {
		return err
	}

	stepMeters := s.speedKmh * 1000 * s.interval.Hours()

	for _, p := range postcards {
		if err := s.advance(ctx, p, stepMeters); err != nil {
			log.Error().Err(err).Str("postcard_id", p.ID).Msg("Failed to advance postcard")
		}
	}
	return nil
}

func (s *TravelService) advance(ctx context.Context, p *models.Postcard, stepMeters float64) error {
	cur := p.CurrentPosition
	dest := p.NextDestination
	if !cur.Valid() || !dest.Valid() {
		return nil
	}

	lat, lon, arrived := StepToward(
		cur.Lat.Float64(), cur.Lon.Float64(),
		dest.Lat.Float64(), dest.Lon.Float64(),
		stepMeters+s.arriveMeters,
	)

	newCur := models.Position{Lat: models.Coordinate(lat), Lon: models.Coordinate(lon)}
	newDest := dest
	if arrived {
		next := waypoints[rand.Intn(len(waypoints))]
		newDest = models.Position{
			Lat: models.Coordinate(next.lat),
			Lon: models.Coordinate(next.lon),
		}
	}

	if err := s.postcardRepo.UpdatePosition(ctx, p.ID, newCur, newDest); err != nil {
		return err
	}

	if arrived {
		prefecture := NearestPrefecture(lat, lon)
		point := &models.PathPoint{
			PostcardID:  p.ID,
			Prefecture:  prefecture,
			Lat:         lat,
			Lon:         lon,
			ArrivalTime: time.Now(),
		}
		if err := s.postcardRepo.AddPathPoint(ctx, point); err != nil {
			return err
		}

		s.hub.Broadcast(Event{
			Type:            EventPostcardArrived,
			PostcardID:      p.ID,
			CurrentPosition: &newCur,
			Prefecture:      prefecture,
		})

		err := s.pushService.NotifyUser(ctx, p.AuthorID, PushMessage{
			Title: "絵葉書通知",
			Body:  "あなたの絵葉書が" + prefecture + "に到着しました",
			URL:   "/collection",
		})
		if err != nil {
			log.Error().Err(err).Str("postcard_id", p.ID).Msg("Failed to send arrival notification")
		}
		return nil
	}

	s.hub.Broadcast(Event{
		Type:            EventPostcardMoved,
		PostcardID:      p.ID,
		CurrentPosition: &newCur,
	})
	return nil
}
