// Package markers derives screen-space marker positions from postcard
// geocoordinates. The set is rebuilt from scratch on every camera
// change; nothing here is incremental.
package markers

import (
	"math"

	"postcard-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Projector converts a geographic coordinate to screen pixels. The map
// library owns the real projection; tests and headless use supply their
// own.
type Projector interface {
	Project(lat, lon float64) (x, y float64, err error)
}

// ProjectorFunc adapts a function to the Projector interface
type ProjectorFunc func(lat, lon float64) (float64, float64, error)

// Project implements Projector
func (f ProjectorFunc) Project(lat, lon float64) (float64, float64, error) {
	return f(lat, lon)
}

// Marker is a postcard rendered at a screen position
type Marker struct {
	ID    string
	X     float64
	Y     float64
	IsOwn bool
}

// State is the full derived marker set for one camera position
type State struct {
	UserPos   Point
	Postcards []Marker
}

// Point is a screen position
type Point struct {
	X float64
	Y float64
}

// Build recomputes the marker set. Own postcards are placed first, so a
// postcard that shows up in both lists is rendered once, as the
// viewer's own. Postcards whose coordinates fail numeric validation are
// dropped silently rather than failing the whole set.
func Build(p Projector, userLat, userLon float64, my, nearby []*models.Postcard) State {
	state := State{
		UserPos:   project(p, userLat, userLon),
		Postcards: make([]Marker, 0, len(my)+len(nearby)),
	}

	seen := make(map[string]struct{}, len(my)+len(nearby))
	appendMarkers(&state, p, my, true, seen)
	appendMarkers(&state, p, nearby, false, seen)
	return state
}

func appendMarkers(state *State, p Projector, postcards []*models.Postcard, isOwn bool, seen map[string]struct{}) {
	for _, pc := range postcards {
		if pc == nil {
			continue
		}
		if _, dup := seen[pc.ID]; dup {
			continue
		}
		seen[pc.ID] = struct{}{}

		lat := pc.CurrentPosition.Lat.Float64()
		lon := pc.CurrentPosition.Lon.Float64()
		if math.IsNaN(lat) || math.IsNaN(lon) {
			log.Warn().
				Str("postcard_id", pc.ID).
				Bool("is_own", isOwn).
				Msg("Dropping postcard with invalid coordinates")
			continue
		}

		pos := project(p, lat, lon)
		state.Postcards = append(state.Postcards, Marker{
			ID:    pc.ID,
			X:     pos.X,
			Y:     pos.Y,
			IsOwn: isOwn,
		})
	}
}

// project delegates to the map projection; when the map is not ready
// the marker lands at the origin instead of erroring the render.
func project(p Projector, lat, lon float64) Point {
	x, y, err := p.Project(lat, lon)
	if err != nil {
		log.Debug().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Projection failed")
		return Point{}
	}
	return Point{X: x, Y: y}
}

// WebMercator is a basic projector for headless rendering: standard
// web-mercator world coordinates scaled by zoom, translated so the
// camera center lands mid-viewport.
type WebMercator struct {
	CenterLat float64
	CenterLon float64
	Zoom      float64
	Width     float64
	Height    float64
}

// Project implements Projector
func (m WebMercator) Project(lat, lon float64) (float64, float64, error) {
	if lat < -85.0511 || lat > 85.0511 {
		return 0, 0, errOutOfRange
	}

	scale := 256 * math.Exp2(m.Zoom)
	wx, wy := worldCoords(lat, lon, scale)
	cx, cy := worldCoords(m.CenterLat, m.CenterLon, scale)
	return wx - cx + m.Width/2, wy - cy + m.Height/2, nil
}

func worldCoords(lat, lon, scale float64) (float64, float64) {
	x := (lon + 180) / 360 * scale
	latRad := lat * math.Pi / 180
	y := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * scale
	return x, y
}

var errOutOfRange = errProjection("latitude out of projectable range")

type errProjection string

func (e errProjection) Error() string { return string(e) }
