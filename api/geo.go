package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mymed-inc/mymed-api/location"
	"github.com/mymed-inc/mymed-api/schema"
	"github.com/mymed-inc/mymed-api/utils"
)

// updateGeoPositionMiddleware is a middleware to store geo-position for every
// api requests from users and feed it to the nearby session of the user.
// Headers:
// - Geo-Position: 'lat;lon'
// - Location-Permission: 'granted', 'denied' or 'restricted'
func (s *Server) updateGeoPositionMiddleware(c *gin.Context) {
	accountNumber := c.GetString("requester")
	if accountNumber == "" {
		c.Next()
		return
	}

	permission, err := location.ParsePermission(c.GetHeader("Location-Permission"))
	if err != nil {
		c.Error(err)
	}

	var loc *schema.Location
	if gp := c.GetHeader("Geo-Position"); gp != "" {
		if l, err := utils.ParseGeoPosition(gp); err == nil {
			loc = &l
			if err := s.store.UpdateAccountGeoPosition(accountNumber, l.Latitude, l.Longitude); err != nil {
				c.Error(err)
			}
		} else {
			c.Error(err)
		}
	}

	// a client only knows its position once access is granted
	if loc != nil && permission == location.NotDetermined {
		permission = location.Authorized
	}

	if s.registry != nil && (loc != nil || permission != location.NotDetermined) {
		s.registry.Session(accountNumber).Report(permission, loc)
	}

	c.Next()
}
