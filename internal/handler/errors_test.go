package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialnet/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, tc := range []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", &service.Error{Kind: service.ErrValidation, Message: "content required"}, http.StatusBadRequest, `{"error":"content required"}`},
		{"unauthorized", &service.Error{Kind: service.ErrUnauthorized, Message: "invalid credentials"}, http.StatusUnauthorized, `{"error":"invalid credentials"}`},
		{"forbidden", &service.Error{Kind: service.ErrForbidden, Message: "nope"}, http.StatusForbidden, `{"error":"nope"}`},
		{"not found", &service.Error{Kind: service.ErrNotFound, Message: "user not found"}, http.StatusNotFound, `{"error":"user not found"}`},
		{"conflict wrapped", fmt.Errorf("create: %w", &service.Error{Kind: service.ErrConflict, Message: "taken"}), http.StatusConflict, `{"error":"taken"}`},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}
