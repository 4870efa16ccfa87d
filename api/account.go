package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mymed-inc/mymed-api/account"
	"github.com/mymed-inc/mymed-api/external/identity"
	"github.com/mymed-inc/mymed-api/schema"
	"github.com/mymed-inc/mymed-api/utils"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// accountSignUp is the API to register a new user at the identity provider
func (s *Server) accountSignUp(c *gin.Context) {
	var params credentials
	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	a, err := s.accounts.SignUp(c.Request.Context(), params.Email, params.Password)
	if abortWithAccountError(c, err) {
		return
	}

	s.responseWithToken(c, a)
}

// accountSignIn is the API to sign in with email and password
func (s *Server) accountSignIn(c *gin.Context) {
	var params credentials
	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	a, err := s.accounts.SignIn(c.Request.Context(), params.Email, params.Password)
	if abortWithAccountError(c, err) {
		return
	}

	s.responseWithToken(c, a)
}

// accountResetPassword is the API to request a password reset email
func (s *Server) accountResetPassword(c *gin.Context) {
	var params struct {
		Email string `json:"email"`
	}
	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	if abortWithAccountError(c, s.accounts.ResetPassword(c.Request.Context(), params.Email)) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": utils.Localize(localizer(c), "password_reset_sent", "A password reset link has been sent to your email."),
	})
}

// accountSignOut is the API to end the current session
func (s *Server) accountSignOut(c *gin.Context) {
	accountNumber := c.GetString("requester")
	expires, _ := c.Get("token_expires")
	expiresAt, _ := expires.(time.Time)

	if err := s.accounts.SignOut(c.Request.Context(), accountNumber, c.GetString("token_id"), expiresAt); err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}

func (s *Server) responseWithToken(c *gin.Context, a *schema.Account) {
	token, expiresAt, err := s.issueJWT(a.UserID)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jwt_token": token,
		"expire_in": int64(time.Until(expiresAt).Seconds()),
		"result":    a,
	})
}

// abortWithAccountError maps validation and identity provider failures to
// a response. It reports whether the request was aborted.
func abortWithAccountError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var verr *account.ValidationError
	if errors.As(err, &verr) {
		abortWithEncoding(c, http.StatusBadRequest, errorValidation.withMessage(verr.Localize(localizer(c))), err)
		return true
	}

	var perr *identity.ProviderError
	if errors.As(err, &perr) {
		status := http.StatusBadRequest
		if perr.StatusCode == 0 || perr.StatusCode >= 500 {
			status = http.StatusBadGateway
		}
		abortWithEncoding(c, status, errorIdentityProvider.withMessage(perr.Message), err)
		return true
	}

	abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
	return true
}
