package schema

import (
	"strings"
)

type PlaceKind string

const (
	PharmacyPlace PlaceKind = "pharmacy"
	ClinicPlace   PlaceKind = "clinic"
	HospitalPlace PlaceKind = "hospital"
	OtherPlace    PlaceKind = "other"
)

type PlaceCategory string

const (
	AllCategory      PlaceCategory = "all"
	PharmacyCategory PlaceCategory = "pharmacies"
	ClinicCategory   PlaceCategory = "clinics"
)

// openHoursMarkers are lower-cased substrings of opening_hours which
// are treated as "always open"
var openHoursMarkers = []string{"24", "24/7", "mo-su", "круглосуточ"}

// Place is a pharmacy, clinic or hospital found around a location.
// ID is composed from the upstream geometry type and numeric id.
type Place struct {
	ID           string            `json:"id"`
	Name         *string           `json:"name,omitempty"`
	Location     Location          `json:"location"`
	Kind         PlaceKind         `json:"kind"`
	Address      *string           `json:"address,omitempty"`
	Phone        *string           `json:"phone,omitempty"`
	OpeningHours *string           `json:"opening_hours,omitempty"`
	Tags         map[string]string `json:"tags"`
}

func (p Place) IsPharmacy() bool {
	return p.Kind == PharmacyPlace
}

// IsLikelyOpen is a rough guess from the opening_hours text. Pharmacies
// are assumed open. This is not a schedule evaluation.
func (p Place) IsLikelyOpen() bool {
	if p.OpeningHours != nil {
		oh := strings.ToLower(*p.OpeningHours)
		for _, marker := range openHoursMarkers {
			if strings.Contains(oh, marker) {
				return true
			}
		}
	}

	return p.Kind == PharmacyPlace
}

// PhoneURI returns the tel: link of the place phone, unformatted
func (p Place) PhoneURI() string {
	if p.Phone == nil {
		return ""
	}
	return "tel:" + *p.Phone
}

// FilterState is the set of user selected filters on a place list
type FilterState struct {
	Category PlaceCategory `json:"category"`
	OpenOnly bool          `json:"open_only"`
	Query    string        `json:"query"`
}
