package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mymed-inc/mymed-api/schema"
)

const earthRadius = 6371000 // meters

var ErrInvalidGeoPosition = fmt.Errorf("invalid geo-position value")

// Distance returns the great-circle distance in meters between two locations
func Distance(a, b schema.Location) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ParseGeoPosition parses a `lat;lon` geo-position string
func ParseGeoPosition(geoPosition string) (schema.Location, error) {
	positions := strings.Split(geoPosition, ";")

	if len(positions) != 2 {
		return schema.Location{}, ErrInvalidGeoPosition
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(positions[0]), 64)
	if err != nil {
		return schema.Location{}, err
	}

	long, err := strconv.ParseFloat(strings.TrimSpace(positions[1]), 64)
	if err != nil {
		return schema.Location{}, err
	}

	loc := schema.Location{Latitude: lat, Longitude: long}
	if !loc.Valid() {
		return schema.Location{}, ErrInvalidGeoPosition
	}

	return loc, nil
}
