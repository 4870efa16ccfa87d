package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/mymed-inc/mymed-api/geo"
)

// currentLocation is the API returning the location state of the session:
// permission, last coordinate, map region and the area name
func (s *Server) currentLocation(c *gin.Context) {
	session := s.registry.Session(c.GetString("requester"))
	provider := session.Provider

	result := gin.H{
		"permission": provider.Permission(),
		"region":     provider.Region(),
	}

	loc, ok := provider.Current()
	if !ok {
		result["location"] = nil
		c.JSON(http.StatusOK, result)
		return
	}
	result["location"] = loc

	if s.resolver != nil {
		area, err := s.resolver.Resolve(c.Request.Context(), loc, preferredLanguage(c))
		if err != nil {
			log.WithError(err).Warn("resolve area")
		} else {
			result["area"] = area
			result["label"] = geo.Label(area)
		}
	}

	c.JSON(http.StatusOK, result)
}

// preferredLanguage returns the base language of the first Accept-Language
// tag, e.g. "ru" for "ru-KZ,ru;q=0.9"
func preferredLanguage(c *gin.Context) string {
	tags, _, err := language.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return ""
	}

	base, _ := tags[0].Base()
	return base.String()
}
