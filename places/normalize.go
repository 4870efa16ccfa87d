package places

import (
	"fmt"
	"sort"

	"github.com/mymed-inc/mymed-api/external/overpass"
	"github.com/mymed-inc/mymed-api/schema"
	"github.com/mymed-inc/mymed-api/utils"
)

// Normalize maps overpass elements into places. Elements without a
// coordinate are dropped, duplicated ids keep the first occurrence and the
// result is ordered nearest first from center.
func Normalize(center schema.Location, elements []overpass.Element) []schema.Place {
	seen := make(map[string]struct{}, len(elements))
	places := make([]schema.Place, 0, len(elements))

	for _, e := range elements {
		place, ok := toPlace(e)
		if !ok {
			continue
		}

		if _, dup := seen[place.ID]; dup {
			continue
		}
		seen[place.ID] = struct{}{}

		places = append(places, place)
	}

	distances := make(map[string]float64, len(places))
	for _, p := range places {
		distances[p.ID] = utils.Distance(center, p.Location)
	}

	sort.SliceStable(places, func(i, j int) bool {
		return distances[places[i].ID] < distances[places[j].ID]
	})

	return places
}

func toPlace(e overpass.Element) (schema.Place, bool) {
	loc, ok := e.Coordinate()
	if !ok {
		return schema.Place{}, false
	}

	tags := e.Tags
	if tags == nil {
		tags = map[string]string{}
	}

	return schema.Place{
		ID:           fmt.Sprintf("%s-%d", e.GeometryType(), e.ID),
		Name:         tagValue(tags, "name"),
		Location:     loc,
		Kind:         utils.ReadPlaceKind(tags["amenity"]),
		Address:      utils.JoinAddress(tags["addr:street"], tags["addr:housenumber"]),
		Phone:        firstTagValue(tags, "phone", "contact:phone"),
		OpeningHours: tagValue(tags, "opening_hours"),
		Tags:         tags,
	}, true
}

func tagValue(tags map[string]string, key string) *string {
	if v, ok := tags[key]; ok {
		return &v
	}
	return nil
}

func firstTagValue(tags map[string]string, keys ...string) *string {
	for _, k := range keys {
		if v := tagValue(tags, k); v != nil {
			return v
		}
	}
	return nil
}
