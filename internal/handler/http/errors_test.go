package http_test

import (
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	handler "github.com/superherotang/clip/internal/handler/http"
	"github.com/superherotang/clip/internal/service"
)

func TestHandleServiceError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"authentication failed", service.ErrAuthenticationFailed, nethttp.StatusUnauthorized},
		{"registration failed", service.ErrRegistrationFailed, nethttp.StatusBadRequest},
		{"invalid input", service.ErrInvalidInput, nethttp.StatusBadRequest},
		{"already member", service.ErrAlreadyMember, nethttp.StatusBadRequest},
		{"owner cannot leave", service.ErrOwnerCannotLeave, nethttp.StatusBadRequest},
		{"not room member", service.ErrNotRoomMember, nethttp.StatusForbidden},
		{"not room owner", service.ErrNotRoomOwner, nethttp.StatusForbidden},
		{"room not found", service.ErrRoomNotFound, nethttp.StatusNotFound},
		{"invalid room code", service.ErrInvalidRoomCode, nethttp.StatusNotFound},
		{"item not found", service.ErrItemNotFound, nethttp.StatusNotFound},
		{"unexpected error", errors.New("dial tcp: connection refused"), nethttp.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handler.HandleServiceError(c, tc.err)

			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
			if tc.code == nethttp.StatusInternalServerError {
				// Internal details must not leak to the client.
				assert.NotContains(t, w.Body.String(), "connection refused")
			}
		})
	}
}
