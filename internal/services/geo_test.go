package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMeters(t *testing.T) {
	// Tokyo station to Osaka station, roughly 400km.
	d := HaversineMeters(35.6812, 139.7671, 34.7025, 135.4959)
	assert.InDelta(t, 400_000, d, 10_000)

	assert.Zero(t, HaversineMeters(35.0, 135.0, 35.0, 135.0))

	// Symmetric in its arguments.
	assert.InDelta(t,
		HaversineMeters(43.06, 141.34, 26.21, 127.68),
		HaversineMeters(26.21, 127.68, 43.06, 141.34), 1e-6)
}

func TestStepTowardArrives(t *testing.T) {
	lat, lon, arrived := StepToward(35.0, 135.0, 35.001, 135.001, 1_000_000)
	assert.True(t, arrived)
	assert.Equal(t, 35.001, lat)
	assert.Equal(t, 135.001, lon)
}

func TestStepTowardPartialStep(t *testing.T) {
	startLat, startLon := 35.6895, 139.6917 // Tokyo
	destLat, destLon := 34.6863, 135.5200   // Osaka

	lat, lon, arrived := StepToward(startLat, startLon, destLat, destLon, 10_000)
	require.False(t, arrived)

	// The step moves roughly stepMeters toward the destination and
	// never overshoots.
	moved := HaversineMeters(startLat, startLon, lat, lon)
	assert.InDelta(t, 10_000, moved, 500)

	remaining := HaversineMeters(lat, lon, destLat, destLon)
	total := HaversineMeters(startLat, startLon, destLat, destLon)
	assert.Less(t, remaining, total)
}

func TestNearestPrefecture(t *testing.T) {
	assert.Equal(t, "東京都", NearestPrefecture(35.69, 139.70))
	assert.Equal(t, "北海道", NearestPrefecture(43.0, 141.3))
	assert.Equal(t, "沖縄県", NearestPrefecture(26.3, 127.8))
}
