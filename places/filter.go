package places

import (
	"fmt"
	"strings"

	"github.com/mymed-inc/mymed-api/schema"
)

var ErrUnknownCategory = fmt.Errorf("unknown place category")

// ParseCategory reads a category filter value. Empty means all.
func ParseCategory(s string) (schema.PlaceCategory, error) {
	switch c := schema.PlaceCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return schema.AllCategory, nil
	case schema.AllCategory, schema.PharmacyCategory, schema.ClinicCategory:
		return c, nil
	}

	return "", ErrUnknownCategory
}

// ApplyFilters returns the places matching every filter of state. The
// input slice is never modified. The query is trimmed before matching, so
// " аптека " matches the same places as "аптека".
func ApplyFilters(places []schema.Place, state schema.FilterState) []schema.Place {
	query := strings.ToLower(strings.TrimSpace(state.Query))

	result := make([]schema.Place, 0, len(places))
	for _, p := range places {
		if !matchCategory(p, state.Category) {
			continue
		}

		if state.OpenOnly && !p.IsLikelyOpen() {
			continue
		}

		if query != "" && !matchText(p, query) {
			continue
		}

		result = append(result, p)
	}

	return result
}

func matchCategory(p schema.Place, category schema.PlaceCategory) bool {
	switch category {
	case schema.PharmacyCategory:
		return p.Kind == schema.PharmacyPlace
	case schema.ClinicCategory:
		return p.Kind == schema.ClinicPlace || p.Kind == schema.HospitalPlace
	}

	return true
}

// matchText checks name or address against an already lower-cased query
func matchText(p schema.Place, query string) bool {
	if p.Name != nil && strings.Contains(strings.ToLower(*p.Name), query) {
		return true
	}

	return p.Address != nil && strings.Contains(strings.ToLower(*p.Address), query)
}
