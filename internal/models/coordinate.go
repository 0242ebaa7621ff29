package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Coordinate is a latitude or longitude that may arrive on the wire as
// either a JSON number or a numeric string. Values that fail numeric
// parsing decode as NaN instead of failing the surrounding document, so
// a single bad postcard cannot break a whole list response.
type Coordinate float64

// UnmarshalJSON accepts a number, a numeric string, or null.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Coordinate(math.NaN())
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*c = Coordinate(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("coordinate is neither number nor string: %s", data)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*c = Coordinate(math.NaN())
		return nil
	}
	*c = Coordinate(f)
	return nil
}

// MarshalJSON always emits a number. NaN has no JSON representation and
// is emitted as null.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(c)) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(c), 'f', -1, 64), nil
}

// Float64 returns the underlying value.
func (c Coordinate) Float64() float64 {
	return float64(c)
}

// Valid reports whether the coordinate parsed to a usable number.
func (c Coordinate) Valid() bool {
	return !math.IsNaN(float64(c))
}

// Valid reports whether both coordinates of the position are usable.
func (p Position) Valid() bool {
	return p.Lat.Valid() && p.Lon.Valid()
}
