package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mymed-inc/mymed-api/account"
	"github.com/mymed-inc/mymed-api/schema"
	"github.com/mymed-inc/mymed-api/store"
)

// getProfile is the API to read the intake questionnaire of the user
func (s *Server) getProfile(c *gin.Context) {
	a, ok := c.MustGet("account").(*schema.Account)
	if !ok {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
		return
	}

	p, err := s.mongoStore.GetProfile(c.Request.Context(), a.UserID)
	if err == store.ErrProfileNotFound {
		abortWithEncoding(c, http.StatusNotFound, errorProfileNotFound)
		return
	} else if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": p})
}

// updateProfile is the API to merge answers into the questionnaire
func (s *Server) updateProfile(c *gin.Context) {
	a, ok := c.MustGet("account").(*schema.Account)
	if !ok {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
		return
	}

	var params schema.ProfileUpdate
	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	if err := account.ValidateProfile(&params); err != nil {
		abortWithAccountError(c, err)
		return
	}

	if params.Email == nil {
		params.Email = &a.Email
	}

	p, err := s.mongoStore.MergeProfile(c.Request.Context(), a.UserID, params)
	if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": p})
}
