package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	ResultOK      = "ok"
	ResultNetwork = "network_error"
	ResultDecode  = "decode_error"
	ResultOther   = "error"
)

// PlacesMetrics exposes counters/histograms for the nearby places pipeline.
type PlacesMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	placesReturned  prometheus.Histogram
}

func NewPlacesMetrics(reg prometheus.Registerer) *PlacesMetrics {
	m := &PlacesMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mymed",
			Subsystem: "overpass",
			Name:      "requests_total",
			Help:      "Total overpass queries by result",
		}, []string{"result"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mymed",
			Subsystem: "overpass",
			Name:      "request_duration_seconds",
			Help:      "Latency of overpass queries",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 35},
		}),
		placesReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mymed",
			Subsystem: "places",
			Name:      "returned",
			Help:      "Number of places after normalization",
			Buckets:   prometheus.LinearBuckets(0, 25, 10),
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration, m.placesReturned)
	return m
}

func (m *PlacesMetrics) ObserveRequest(result string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(result).Inc()
	m.requestDuration.Observe(seconds)
}

func (m *PlacesMetrics) ObservePlaces(count int) {
	if m == nil {
		return
	}
	m.placesReturned.Observe(float64(count))
}
