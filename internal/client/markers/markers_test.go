package markers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postcard-backend/internal/models"
)

// identity maps degrees straight to pixels, which keeps expectations
// readable.
var identity = ProjectorFunc(func(lat, lon float64) (float64, float64, error) {
	return lon, lat, nil
})

func postcard(id string, lat, lon float64) *models.Postcard {
	return &models.Postcard{
		ID: id,
		CurrentPosition: models.Position{
			Lat: models.Coordinate(lat),
			Lon: models.Coordinate(lon),
		},
	}
}

func TestBuildMarkerCountIsUnionSize(t *testing.T) {
	my := []*models.Postcard{postcard("a", 35, 139), postcard("b", 36, 140)}
	nearby := []*models.Postcard{postcard("b", 36, 140), postcard("c", 34, 135)}

	state := Build(identity, 35, 139, my, nearby)

	require.Len(t, state.Postcards, 3)
	assert.Equal(t, 139.0, state.UserPos.X)
	assert.Equal(t, 35.0, state.UserPos.Y)
}

func TestBuildOwnWinsDuplicate(t *testing.T) {
	my := []*models.Postcard{postcard("dup", 35, 139)}
	nearby := []*models.Postcard{postcard("dup", 35, 139), postcard("other", 34, 135)}

	state := Build(identity, 35, 139, my, nearby)

	byID := map[string]Marker{}
	for _, m := range state.Postcards {
		byID[m.ID] = m
	}
	require.Len(t, byID, 2)
	assert.True(t, byID["dup"].IsOwn)
	assert.False(t, byID["other"].IsOwn)
}

func TestBuildDropsInvalidCoordinates(t *testing.T) {
	// Coordinates arrive over JSON and may be strings; a garbage
	// string decodes to NaN and the postcard is skipped, not fatal.
	var bad models.Postcard
	err := json.Unmarshal([]byte(`{"postcard_id":"bad","current_position":{"lat":"abc","lon":"139.0"}}`), &bad)
	require.NoError(t, err)

	var good models.Postcard
	err = json.Unmarshal([]byte(`{"postcard_id":"good","current_position":{"lat":"35.6","lon":"139.7"}}`), &good)
	require.NoError(t, err)

	state := Build(identity, 35, 139, nil, []*models.Postcard{&bad, &good})

	require.Len(t, state.Postcards, 1)
	assert.Equal(t, "good", state.Postcards[0].ID)
	assert.InDelta(t, 139.7, state.Postcards[0].X, 1e-9)
}

func TestBuildSkipsNilEntries(t *testing.T) {
	state := Build(identity, 0, 0, []*models.Postcard{nil}, []*models.Postcard{postcard("a", 1, 2)})
	require.Len(t, state.Postcards, 1)
}

func TestBuildProjectionFailureLandsAtOrigin(t *testing.T) {
	failing := ProjectorFunc(func(lat, lon float64) (float64, float64, error) {
		return 0, 0, errOutOfRange
	})

	state := Build(failing, 35, 139, nil, []*models.Postcard{postcard("a", 35, 139)})

	require.Len(t, state.Postcards, 1)
	assert.Equal(t, 0.0, state.Postcards[0].X)
	assert.Equal(t, 0.0, state.Postcards[0].Y)
}

func TestWebMercatorCenterLandsMidViewport(t *testing.T) {
	m := WebMercator{CenterLat: 35.68, CenterLon: 139.76, Zoom: 12, Width: 800, Height: 600}

	x, y, err := m.Project(35.68, 139.76)
	require.NoError(t, err)
	assert.InDelta(t, 400, x, 1e-6)
	assert.InDelta(t, 300, y, 1e-6)

	// East of center renders right of center, north renders above.
	x2, _, err := m.Project(35.68, 139.9)
	require.NoError(t, err)
	assert.Greater(t, x2, x)

	_, y2, err := m.Project(35.8, 139.76)
	require.NoError(t, err)
	assert.Less(t, y2, y)
}

func TestWebMercatorRejectsPolarLatitudes(t *testing.T) {
	m := WebMercator{Zoom: 1}
	_, _, err := m.Project(89.9, 0)
	assert.Error(t, err)
}
