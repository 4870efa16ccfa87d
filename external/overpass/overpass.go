package overpass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mymed-inc/mymed-api/schema"
)

const (
	logPrefix       = "overpass"
	defaultEndpoint = "https://overpass-api.de/api/interpreter"
	contentType     = "application/x-www-form-urlencoded; charset=utf-8"

	// DefaultTimeout leaves room for the [timeout:25] hint in the query
	DefaultTimeout = 35 * time.Second
	serverTimeout  = 25
	defaultType    = "node"
)

var (
	amenities  = []string{"pharmacy", "clinic", "hospital"}
	geometries = []string{"node", "way", "relation"}
)

// NetworkError is returned when the request can not be sent or the
// endpoint answers with a non-2xx status
type NetworkError struct {
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("overpass network error: status %d: %s", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("overpass network error: %s", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when the response body is not the expected JSON
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("overpass decode error: %s", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is a map feature as returned by the interpreter
type Element struct {
	Type   *string           `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *Center           `json:"center"`
	Tags   map[string]string `json:"tags"`
}

// GeometryType returns the element type, "node" when absent
func (e Element) GeometryType() string {
	if e.Type == nil || *e.Type == "" {
		return defaultType
	}
	return *e.Type
}

// Coordinate returns the direct coordinate of the element, or its center
// for way and relation geometries
func (e Element) Coordinate() (schema.Location, bool) {
	if e.Lat != nil && e.Lon != nil {
		return schema.Location{Latitude: *e.Lat, Longitude: *e.Lon}, true
	}

	if e.Center != nil {
		return schema.Location{Latitude: e.Center.Lat, Longitude: e.Center.Lon}, true
	}

	return schema.Location{}, false
}

type rawElement struct {
	Element
	ID *int64 `json:"id"`
}

type jsonResponse struct {
	Elements *[]rawElement `json:"elements"`
}

// Fetcher queries medical amenities around a location
type Fetcher interface {
	FetchNearby(ctx context.Context, center schema.Location, radiusMeters int) ([]Element, error)
}

type overpass struct {
	client   *http.Client
	endpoint string
}

// Query builds the interpreter query for pharmacies, clinics and
// hospitals within radiusMeters of center
func Query(center schema.Location, radiusMeters int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", serverTimeout)
	for _, amenity := range amenities {
		for _, geometry := range geometries {
			fmt.Fprintf(&b, "  %s[\"amenity\"=\"%s\"](around:%d,%v,%v);\n",
				geometry, amenity, radiusMeters, center.Latitude, center.Longitude)
		}
	}
	b.WriteString(");\nout center;\n")

	return b.String()
}

func (o overpass) FetchNearby(ctx context.Context, center schema.Location, radiusMeters int) ([]Element, error) {
	logger := log.WithFields(log.Fields{
		"prefix": logPrefix,
		"lat":    center.Latitude,
		"lng":    center.Longitude,
		"radius": radiusMeters,
	})

	req, err := http.NewRequest(http.MethodPost, o.endpoint, bytes.NewBufferString(Query(center, radiusMeters)))
	if nil != err {
		return nil, &NetworkError{Err: err}
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", contentType)

	logger.Debug("query nearby places")

	resp, err := o.client.Do(req)
	if nil != err {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	d, err := ioutil.ReadAll(resp.Body)
	if nil != err {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", http.StatusText(resp.StatusCode)),
		}
	}

	var r jsonResponse
	if err := json.Unmarshal(d, &r); nil != err {
		return nil, &DecodeError{Err: err}
	}

	if r.Elements == nil {
		return nil, &DecodeError{Err: fmt.Errorf("missing elements")}
	}

	elements := make([]Element, 0, len(*r.Elements))
	for i, raw := range *r.Elements {
		if raw.ID == nil {
			return nil, &DecodeError{Err: fmt.Errorf("element #%d: missing id", i)}
		}
		e := raw.Element
		e.ID = *raw.ID
		elements = append(elements, e)
	}

	logger.WithField("count", len(elements)).Info("fetched nearby places")

	return elements, nil
}

// New returns a Fetcher posting to endpoint, or the public interpreter
// when endpoint is empty
func New(client *http.Client, endpoint string) Fetcher {
	u := defaultEndpoint
	if endpoint != "" {
		u = endpoint
	}

	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &overpass{
		client:   client,
		endpoint: u,
	}
}
