package api

import (
	"github.com/mymed-inc/mymed-api/places"
	"github.com/mymed-inc/mymed-api/store"
)

var (
	errorMessageMap = map[int64]string{
		999:  "internal server error",
		1001: "invalid authorization format",
		1003: "invalid token",
		1004: "token has been revoked",

		1010: "invalid parameters",
		1011: "cannot parse request",
		1012: "validation failed",

		1100: "identity provider rejected the request",
		1101: "account not found",
		1104: "unknown account location",
		1105: "location permission denied",
		1106: "unknown place",
		1107: store.ErrProfileNotFound.Error(),
		1108: places.ErrUnknownCategory.Error(),
	}

	errorInternalServer             = errorJSON(999)
	errorInvalidAuthorizationFormat = errorJSON(1001)
	errorInvalidToken               = errorJSON(1003)
	errorRevokedToken               = errorJSON(1004)

	errorInvalidParameters  = errorJSON(1010)
	errorCannotParseRequest = errorJSON(1011)
	errorValidation         = errorJSON(1012)

	errorIdentityProvider       = errorJSON(1100)
	errorAccountNotFound        = errorJSON(1101)
	errorUnknownAccountLocation = errorJSON(1104)
	errorLocationDenied         = errorJSON(1105)
	errorUnknownPlace           = errorJSON(1106)
	errorProfileNotFound        = errorJSON(1107)
	errorUnknownCategory        = errorJSON(1108)
)

type ErrorResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// errorJSON converts an error code to a standardized error object
func errorJSON(code int64) ErrorResponse {
	var message string
	if msg, ok := errorMessageMap[code]; ok {
		message = msg
	} else {
		message = "unknown"
	}

	return ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// withMessage keeps the code of e and replaces its message, e.g. with a
// localized or provider supplied text
func (e ErrorResponse) withMessage(message string) ErrorResponse {
	if message != "" {
		e.Message = message
	}
	return e
}
