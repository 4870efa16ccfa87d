package places

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mymed-inc/mymed-api/external/overpass"
	"github.com/mymed-inc/mymed-api/metrics"
	"github.com/mymed-inc/mymed-api/schema"
)

const logPrefix = "places"

// Finder runs a single query against the fetcher and normalizes the result
type Finder struct {
	fetcher overpass.Fetcher
	metrics *metrics.PlacesMetrics
}

func NewFinder(fetcher overpass.Fetcher, m *metrics.PlacesMetrics) *Finder {
	return &Finder{
		fetcher: fetcher,
		metrics: m,
	}
}

// Nearby returns the places within radiusMeters of center, nearest first
func (f *Finder) Nearby(ctx context.Context, center schema.Location, radiusMeters int) ([]schema.Place, error) {
	start := time.Now()
	elements, err := f.fetcher.FetchNearby(ctx, center, radiusMeters)
	f.metrics.ObserveRequest(resultLabel(err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	places := Normalize(center, elements)
	f.metrics.ObservePlaces(len(places))

	log.WithFields(log.Fields{
		"prefix":   logPrefix,
		"elements": len(elements),
		"places":   len(places),
	}).Debug("normalized places")

	return places, nil
}

func resultLabel(err error) string {
	if err == nil {
		return metrics.ResultOK
	}

	var netErr *overpass.NetworkError
	if errors.As(err, &netErr) {
		return metrics.ResultNetwork
	}

	var decodeErr *overpass.DecodeError
	if errors.As(err, &decodeErr) {
		return metrics.ResultDecode
	}

	return metrics.ResultOther
}
