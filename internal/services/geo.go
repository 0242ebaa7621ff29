package services

import "math"

const earthRadiusMeters = 6_371_000

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

// StepToward moves (lat, lon) toward (destLat, destLon) by at most
// stepMeters along the great-circle chord, returning the new point and
// whether the destination was reached within this step.
func StepToward(lat, lon, destLat, destLon, stepMeters float64) (float64, float64, bool) {
	dist := HaversineMeters(lat, lon, destLat, destLon)
	if dist <= stepMeters {
		return destLat, destLon, true
	}

	frac := stepMeters / dist
	return lat + (destLat-lat)*frac, lon + (destLon-lon)*frac, false
}

// waypoint is a named place a traveling postcard can head for.
type waypoint struct {
	name string
	lat  float64
	lon  float64
}

// Prefectural capitals the location worker routes postcards through.
var waypoints = []waypoint{
	{"北海道", 43.0642, 141.3469},
	{"宮城県", 38.2688, 140.8721},
	{"東京都", 35.6895, 139.6917},
	{"神奈川県", 35.4478, 139.6425},
	{"新潟県", 37.9026, 139.0232},
	{"石川県", 36.5947, 136.6256},
	{"長野県", 36.6513, 138.1810},
	{"愛知県", 35.1802, 136.9066},
	{"京都府", 35.0212, 135.7556},
	{"大阪府", 34.6863, 135.5200},
	{"兵庫県", 34.6913, 135.1830},
	{"広島県", 34.3966, 132.4596},
	{"香川県", 34.3401, 134.0434},
	{"福岡県", 33.6064, 130.4181},
	{"熊本県", 32.7898, 130.7417},
	{"鹿児島県", 31.5602, 130.5581},
	{"沖縄県", 26.2124, 127.6809},
}

// NearestPrefecture returns the name of the closest waypoint to a point.
func NearestPrefecture(lat, lon float64) string {
	best := waypoints[0].name
	bestDist := math.Inf(1)
	for _, w := range waypoints {
		d := HaversineMeters(lat, lon, w.lat, w.lon)
		if d < bestDist {
			bestDist = d
			best = w.name
		}
	}
	return best
}
