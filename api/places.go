package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/viper"

	"github.com/mymed-inc/mymed-api/nearby"
	"github.com/mymed-inc/mymed-api/places"
	"github.com/mymed-inc/mymed-api/schema"
	"github.com/mymed-inc/mymed-api/utils"
)

const maxRadius = 50000

var errInvalidRadius = fmt.Errorf("invalid radius")

// placeView is a place as shown in the list and the detail sheet
type placeView struct {
	schema.Place
	Distance   float64 `json:"distance"`
	LikelyOpen bool    `json:"likely_open"`
	PhoneURI   string  `json:"phone_uri,omitempty"`
	KindLabel  string  `json:"kind_label"`
}

func newPlaceView(p schema.Place, center *schema.Location, localizer *i18n.Localizer) placeView {
	v := placeView{
		Place:      p,
		LikelyOpen: p.IsLikelyOpen(),
		PhoneURI:   p.PhoneURI(),
		KindLabel:  utils.Localize(localizer, "place_kind_"+string(p.Kind), string(p.Kind)),
	}

	if center != nil {
		v.Distance = utils.Distance(*center, p.Location)
	}

	return v
}

func newPlaceViews(list []schema.Place, center *schema.Location, localizer *i18n.Localizer) []placeView {
	views := make([]placeView, 0, len(list))
	for _, p := range list {
		views = append(views, newPlaceView(p, center, localizer))
	}
	return views
}

// searchRadius reads the radius parameter, bounded by places.max_radius
func searchRadius(value string) (int, error) {
	radius := viper.GetInt("places.default_radius")
	if radius <= 0 {
		radius = nearby.DefaultRadius
	}

	if value != "" {
		r, err := strconv.Atoi(value)
		if err != nil || r <= 0 {
			return 0, errInvalidRadius
		}
		radius = r
	}

	limit := viper.GetInt("places.max_radius")
	if limit <= 0 {
		limit = maxRadius
	}
	if radius > limit {
		radius = limit
	}

	return radius, nil
}

// searchNearby is the API running the whole pipeline once around a given
// location, without touching the session state
func (s *Server) searchNearby(c *gin.Context) {
	var params struct {
		Latitude  *float64 `form:"lat"`
		Longitude *float64 `form:"lon"`
		Radius    string   `form:"radius"`
		Category  string   `form:"category"`
		OpenOnly  bool     `form:"open_only"`
		Query     string   `form:"q"`
	}

	if err := c.BindQuery(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	if params.Latitude == nil || params.Longitude == nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	center := schema.Location{Latitude: *params.Latitude, Longitude: *params.Longitude}
	if !center.Valid() {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	radius, err := searchRadius(params.Radius)
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	category, err := places.ParseCategory(params.Category)
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorUnknownCategory, err)
		return
	}

	found, err := s.finder.Nearby(c.Request.Context(), center, radius)
	if err != nil {
		// fetch failures show an empty list
		log.WithError(err).Error("search nearby places")
		found = []schema.Place{}
	}

	visible := places.ApplyFilters(found, schema.FilterState{
		Category: category,
		OpenOnly: params.OpenOnly,
		Query:    params.Query,
	})

	c.JSON(http.StatusOK, gin.H{
		"center": center,
		"radius": radius,
		"total":  len(found),
		"places": newPlaceViews(visible, &center, localizer(c)),
	})
}

func (s *Server) responseWithSnapshot(c *gin.Context, snapshot nearby.Snapshot) {
	c.JSON(http.StatusOK, gin.H{
		"places":     newPlaceViews(snapshot.Places, snapshot.Center, localizer(c)),
		"total":      snapshot.Total,
		"filter":     snapshot.Filter,
		"center":     snapshot.Center,
		"loading":    snapshot.Loading,
		"error":      snapshot.Error,
		"updated_at": snapshot.UpdatedAt,
	})
}

// listPlaces is the API returning the current nearby list of the session
func (s *Server) listPlaces(c *gin.Context) {
	session := s.registry.Session(c.GetString("requester"))
	s.responseWithSnapshot(c, session.Controller.Snapshot())
}

// updatePlaceFilter is the API to change the filters of the nearby list
func (s *Server) updatePlaceFilter(c *gin.Context) {
	var params struct {
		Category string `json:"category"`
		OpenOnly bool   `json:"open_only"`
		Query    string `json:"query"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	category, err := places.ParseCategory(params.Category)
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorUnknownCategory, err)
		return
	}

	session := s.registry.Session(c.GetString("requester"))
	s.responseWithSnapshot(c, session.Controller.SetFilter(schema.FilterState{
		Category: category,
		OpenOnly: params.OpenOnly,
		Query:    params.Query,
	}))
}

// refreshPlaces is the API to fetch the nearby list again around the latest
// location. It waits for the fetch up to refresh_timeout.
func (s *Server) refreshPlaces(c *gin.Context) {
	session := s.registry.Session(c.GetString("requester"))

	task, err := session.Controller.Refresh()
	if err == nearby.ErrNoLocation {
		if session.Provider.Permission().Refused() {
			abortWithEncoding(c, http.StatusBadRequest, errorLocationDenied, err)
			return
		}
		abortWithEncoding(c, http.StatusBadRequest, errorUnknownAccountLocation, err)
		return
	} else if shouldInterupt(err, c) {
		return
	}

	timeout := viper.GetDuration("places.refresh_timeout")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	select {
	case <-task.Done():
	case <-time.After(timeout):
	case <-c.Request.Context().Done():
	}

	s.responseWithSnapshot(c, session.Controller.Snapshot())
}

// placeDetail is the API for the detail sheet of one place of the list
func (s *Server) placeDetail(c *gin.Context) {
	session := s.registry.Session(c.GetString("requester"))

	p, ok := session.Controller.Select(c.Param("placeID"))
	if !ok {
		abortWithEncoding(c, http.StatusNotFound, errorUnknownPlace)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": newPlaceView(p, session.Controller.Snapshot().Center, localizer(c)),
	})
}
