package handler

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"socialnet/backend/internal/media"

	"github.com/gin-gonic/gin"
)

const (
	maxUploadSize = 5 << 20
	presignTTL    = 24 * time.Hour
)

// MediaUploadResponse identifies a stored object.
type MediaUploadResponse struct {
	Key string `json:"key" example:"posts/1/0f9c2b7e-....png"`
	URL string `json:"url" example:"http://localhost:9000/post-media/posts/1/0f9c2b7e-....png?X-Amz-..."`
}

// UploadMedia godoc
// @Summary      Upload post media
// @Description  Stores an image of at most 5 MiB. Use the returned key as a post's image_url.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     SessionCookie
// @Param        file formData  file  true  "Image file"
// @Success      201  {object}  MediaUploadResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      413  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /media [post]
func (h *Handler) UploadMedia(c *gin.Context) {
	if h.Media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Media storage is not configured"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fh.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds 5 MiB"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(data) > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds 5 MiB"})
		return
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only images can be uploaded"})
		return
	}

	key := media.ObjectKey(actorID(c), fh.Filename)
	ctx := c.Request.Context()
	if err := h.Media.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		respondError(c, err)
		return
	}
	u, err := h.Media.PresignGet(ctx, key, presignTTL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MediaUploadResponse{Key: key, URL: u.String()})
}

// removeMedia deletes the objects that userID uploaded among refs. Failures
// are logged; the rows referencing them are already gone.
func (h *Handler) removeMedia(ctx context.Context, userID uint, refs ...string) {
	if h.Media == nil {
		return
	}
	for _, ref := range refs {
		if !media.OwnedKey(ref, userID) {
			continue
		}
		if err := h.Media.Remove(ctx, ref); err != nil {
			log.Printf("remove media %s: %v", ref, err)
		}
	}
}
