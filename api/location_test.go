package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/mymed-inc/mymed-api/schema"
)

type fakeResolver struct {
	language string
}

func (r *fakeResolver) Resolve(_ context.Context, _ schema.Location, language string) (schema.AddressComponent, error) {
	r.language = language
	return schema.AddressComponent{
		Country: "Kazakhstan",
		State:   "Akmola Region",
		County:  "Astana",
	}, nil
}

func TestCurrentLocation(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	ts := newTestServer(t, ctl)
	resolver := &fakeResolver{}
	ts.resolver = resolver
	bearer := ts.authorized(t, "uid-1")

	w := ts.do("GET", "/api/location", "", map[string]string{"Authorization": bearer})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"permission":"not_determined"`)
	assert.Contains(t, w.Body.String(), `"location":null`)

	ts.accounts.EXPECT().UpdateAccountGeoPosition("uid-1", 51.1, 71.4).Return(nil).Times(1)
	ts.do("GET", "/api/location", "", map[string]string{
		"Authorization": bearer,
		"Geo-Position":  "51.1;71.4",
	})

	var resp struct {
		Permission string           `json:"permission"`
		Location   *schema.Location `json:"location"`
		Region     schema.Region    `json:"region"`
		Label      string           `json:"label"`
	}
	assert.Eventually(t, func() bool {
		w := ts.do("GET", "/api/location", "", map[string]string{
			"Authorization":   bearer,
			"Accept-Language": "ru-KZ,ru;q=0.9",
		})
		return json.Unmarshal(w.Body.Bytes(), &resp) == nil && resp.Location != nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "authorized", resp.Permission)
	assert.Equal(t, schema.Location{Latitude: 51.1, Longitude: 71.4}, *resp.Location)
	assert.Equal(t, schema.Location{Latitude: 51.1, Longitude: 71.4}, resp.Region.Center)
	assert.Equal(t, "Astana, Akmola Region", resp.Label)
	assert.Equal(t, "ru", resolver.language)
}
