package utils

import (
	"strings"

	"github.com/mymed-inc/mymed-api/schema"
)

// ReadPlaceKind returns a place kind by analyzing an amenity tag value
func ReadPlaceKind(amenity string) schema.PlaceKind {
	switch strings.ToLower(amenity) {
	case "pharmacy":
		return schema.PharmacyPlace
	case "clinic":
		return schema.ClinicPlace
	case "hospital":
		return schema.HospitalPlace
	}

	return schema.OtherPlace
}

// JoinAddress builds a one-line address from street and house number.
// Returns nil when nothing is left after trimming.
func JoinAddress(street, houseNumber string) *string {
	parts := make([]string, 0, 2)
	for _, p := range []string{street, houseNumber} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	address := strings.TrimSpace(strings.Join(parts, " "))
	if address == "" {
		return nil
	}
	return &address
}
