package geo

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymed-inc/mymed-api/external/geoinfo"
	"github.com/mymed-inc/mymed-api/schema"
)

const defaultLanguage = "en"

var (
	ErrNoGeoInfoFound         = fmt.Errorf("no geo information found")
	ErrResolverNotInitialized = fmt.Errorf("area resolver is not initialized")
)

// AreaResolver - interface for naming the area around a location
type AreaResolver interface {
	Resolve(ctx context.Context, loc schema.Location, language string) (schema.AddressComponent, error)
}

var defaultResolver AreaResolver

type GeocodingResolver struct {
	client geoinfo.GeoInfo
}

func NewGeocodingResolver(client geoinfo.GeoInfo) *GeocodingResolver {
	return &GeocodingResolver{
		client: client,
	}
}

func (g *GeocodingResolver) Resolve(ctx context.Context, loc schema.Location, language string) (schema.AddressComponent, error) {
	if language == "" {
		language = defaultLanguage
	}

	geos, err := g.client.Get(ctx, loc, language)
	if nil != err {
		return schema.AddressComponent{}, err
	}

	if len(geos) == 0 {
		return schema.AddressComponent{}, ErrNoGeoInfoFound
	}

	var area schema.AddressComponent
	var level1, level2, locality string
	for _, a := range geos[0].AddressComponents {
		if len(a.Types) > 0 {
			switch a.Types[0] {
			case "administrative_area_level_1":
				level1 = a.LongName
			case "administrative_area_level_2":
				level2 = a.LongName
			case "locality":
				locality = a.LongName
			case "country":
				area.Country = a.LongName
			}
		}
	}

	area.Address = geos[0].FormattedAddress
	area.State = level1
	area.County = level2
	if area.County == "" {
		area.County = locality
	}

	return area, nil
}

// Label is the short area name shown above the map
func Label(area schema.AddressComponent) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{area.County, area.State, area.Country} {
		if p != "" && len(parts) < 2 {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, ", ")
}

func SetAreaResolver(resolver AreaResolver) {
	defaultResolver = resolver
}

func ResolveArea(ctx context.Context, loc schema.Location, language string) (schema.AddressComponent, error) {
	if defaultResolver == nil {
		return schema.AddressComponent{}, ErrResolverNotInitialized
	}

	return defaultResolver.Resolve(ctx, loc, language)
}
