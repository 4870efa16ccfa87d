package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/mymed-inc/mymed-api/nearby"
	"github.com/mymed-inc/mymed-api/schema"
)

func str(s string) *string { return &s }

func fixturePlaces() []schema.Place {
	return []schema.Place{
		{
			ID:       "node-1",
			Name:     str("Аптека №3"),
			Location: schema.Location{Latitude: 51.101, Longitude: 71.401},
			Kind:     schema.PharmacyPlace,
			Phone:    str("+7 717 123 4567"),
			Tags:     map[string]string{"amenity": "pharmacy"},
		},
		{
			ID:           "node-2",
			Name:         str("Клиника Дост"),
			Location:     schema.Location{Latitude: 51.105, Longitude: 71.405},
			Kind:         schema.ClinicPlace,
			OpeningHours: str("Mo-Fr 09:00-18:00"),
			Tags:         map[string]string{"amenity": "clinic"},
		},
		{
			ID:           "way-3",
			Name:         str("City Hospital"),
			Location:     schema.Location{Latitude: 51.11, Longitude: 71.41},
			Kind:         schema.HospitalPlace,
			OpeningHours: str("24/7"),
			Tags:         map[string]string{"amenity": "hospital"},
		},
	}
}

type placesResponse struct {
	Center *schema.Location   `json:"center"`
	Radius int                `json:"radius"`
	Total  int                `json:"total"`
	Filter schema.FilterState `json:"filter"`
	Places []placeView        `json:"places"`
}

func decodePlaces(t *testing.T, body []byte) placesResponse {
	var resp placesResponse
	assert.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func placeIDs(views []placeView) []string {
	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestSearchNearby(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	ts := newTestServer(t, ctl)
	ts.finder.places = fixturePlaces()
	auth := map[string]string{"Authorization": ts.authorized(t, "uid-1"), "Accept-Language": "ru"}

	w := ts.do("GET", "/api/nearby?lat=51.1&lon=71.4", "", auth)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodePlaces(t, w.Body.Bytes())
	assert.Equal(t, 10000, resp.Radius)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, []string{"node-1", "node-2", "way-3"}, placeIDs(resp.Places))
	assert.Equal(t, "tel:+7 717 123 4567", resp.Places[0].PhoneURI)
	assert.Equal(t, "Аптека", resp.Places[0].KindLabel)
	assert.True(t, resp.Places[0].Distance > 0)
	assert.True(t, resp.Places[0].LikelyOpen)
	assert.False(t, resp.Places[1].LikelyOpen)

	w = ts.do("GET", "/api/nearby?lat=51.1&lon=71.4&category=clinics&radius=900000", "", auth)
	assert.Equal(t, http.StatusOK, w.Code)
	resp = decodePlaces(t, w.Body.Bytes())
	assert.Equal(t, 50000, resp.Radius)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, []string{"node-2", "way-3"}, placeIDs(resp.Places))

	w = ts.do("GET", "/api/nearby?lat=51.1&lon=71.4&open_only=true&q=HOSPITAL", "", auth)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"way-3"}, placeIDs(decodePlaces(t, w.Body.Bytes()).Places))
}

func TestSearchRadius(t *testing.T) {
	radius, err := searchRadius("")
	assert.NoError(t, err)
	assert.Equal(t, nearby.DefaultRadius, radius)

	radius, err = searchRadius("2500")
	assert.NoError(t, err)
	assert.Equal(t, 2500, radius)

	radius, err = searchRadius("900000")
	assert.NoError(t, err)
	assert.Equal(t, maxRadius, radius)

	_, err = searchRadius("0")
	assert.Equal(t, errInvalidRadius, err)
}

func TestSearchNearbyFetchFailure(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	ts := newTestServer(t, ctl)
	ts.finder.err = errors.New("overpass unavailable")
	auth := map[string]string{"Authorization": ts.authorized(t, "uid-1")}

	w := ts.do("GET", "/api/nearby?lat=51.1&lon=71.4", "", auth)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodePlaces(t, w.Body.Bytes())
	assert.Equal(t, 0, resp.Total)
	assert.Empty(t, resp.Places)
}

func TestSearchNearbyInvalidParameters(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	ts := newTestServer(t, ctl)
	auth := map[string]string{"Authorization": ts.authorized(t, "uid-1")}

	for _, query := range []string{
		"",
		"?lat=51.1",
		"?lat=91&lon=71.4",
		"?lat=51.1&lon=71.4&radius=-5",
		"?lat=51.1&lon=71.4&radius=far",
	} {
		w := ts.do("GET", "/api/nearby"+query, "", auth)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
		assert.Equal(t, errorInvalidParameters, decodeError(t, w), query)
	}

	w := ts.do("GET", "/api/nearby?lat=51.1&lon=71.4&category=dentists", "", auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errorUnknownCategory, decodeError(t, w))
	assert.Equal(t, 0, ts.finder.calls)
}

func TestSessionPlaces(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	ts := newTestServer(t, ctl)
	ts.finder.places = fixturePlaces()
	bearer := ts.authorized(t, "uid-1")
	auth := map[string]string{"Authorization": bearer}

	ts.accounts.EXPECT().UpdateAccountGeoPosition("uid-1", 51.1, 71.4).Return(nil).Times(1)

	w := ts.do("GET", "/api/places", "", map[string]string{
		"Authorization":       bearer,
		"Geo-Position":        "51.1;71.4",
		"Location-Permission": "granted",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Eventually(t, func() bool {
		w := ts.do("GET", "/api/places", "", auth)
		return w.Code == http.StatusOK && decodePlaces(t, w.Body.Bytes()).Total == 3
	}, 2*time.Second, 10*time.Millisecond)

	w = ts.do("PUT", "/api/places/filter", `{"category":"pharmacies"}`, auth)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodePlaces(t, w.Body.Bytes())
	assert.Equal(t, schema.PharmacyCategory, resp.Filter.Category)
	assert.Equal(t, []string{"node-1"}, placeIDs(resp.Places))
	assert.Equal(t, 3, resp.Total)

	w = ts.do("PUT", "/api/places/filter", `{"category":"dentists"}`, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errorUnknownCategory, decodeError(t, w))

	w = ts.do("GET", "/api/places/way-3", "", auth)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"way-3"`)

	w = ts.do("GET", "/api/places/node-404", "", auth)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errorUnknownPlace, decodeError(t, w))

	w = ts.do("POST", "/api/places/refresh", "", auth)
	assert.Equal(t, http.StatusOK, w.Code)
	resp = decodePlaces(t, w.Body.Bytes())
	assert.Equal(t, []string{"node-1"}, placeIDs(resp.Places))
	if assert.NotNil(t, resp.Center) {
		assert.Equal(t, schema.Location{Latitude: 51.1, Longitude: 71.4}, *resp.Center)
	}
}

func TestRefreshPlacesWithoutLocation(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	ts := newTestServer(t, ctl)
	auth := map[string]string{"Authorization": ts.authorized(t, "uid-1")}

	w := ts.do("POST", "/api/places/refresh", "", auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errorUnknownAccountLocation, decodeError(t, w))
}

func TestRefreshPlacesLocationDenied(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	ts := newTestServer(t, ctl)
	bearer := ts.authorized(t, "uid-1")

	w := ts.do("POST", "/api/places/refresh", "", map[string]string{
		"Authorization":       bearer,
		"Location-Permission": "denied",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errorLocationDenied, decodeError(t, w))
}
