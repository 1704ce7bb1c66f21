package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// MediaStore is the object storage used for post media.
type MediaStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (*url.URL, error)
	Remove(ctx context.Context, key string) error
}

// Handler serves the HTTP API. Media may be nil, which disables uploads.
type Handler struct {
	Users    *service.Identity
	Friends  *service.Friends
	Posts    *service.Posts
	Messages *service.Messages
	Sessions *auth.SessionStore
	Hub      *hub.Hub
	Media    MediaStore

	// WSOriginPatterns are the host patterns allowed to open a websocket
	// from a browser on another origin.
	WSOriginPatterns []string
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// MessageResponse is returned by endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message" example:"Logged out"`
}

// respondError maps service errors onto status codes. Anything that is not
// a known domain error is logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	msg := err.Error()
	var se *service.Error
	if errors.As(err, &se) {
		msg = se.Message
	}
	c.JSON(status, gin.H{"error": msg})
}

// actorID returns the authenticated user. Only call it behind
// auth.RequireSession.
func actorID(c *gin.Context) uint {
	id, _ := auth.CurrentUserID(c)
	return id
}

// pathID parses the :id path parameter, writing a 400 if it is not a
// positive integer.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}
