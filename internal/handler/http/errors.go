package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/superherotang/clip/internal/service"
)

// HandleServiceError maps business errors to HTTP status codes. Errors
// that carry no mapping are logged and reported as an opaque 500 so
// internals never leak to clients.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed):
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrRegistrationFailed),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrOwnerCannotLeave):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotRoomMember),
		errors.Is(err, service.ErrNotRoomOwner):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrInvalidRoomCode),
		errors.Is(err, service.ErrItemNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
