package handler

import (
	"net/http"
	"time"

	"socialnet/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// CreatePostInput defines the body of a new post.
type CreatePostInput struct {
	Content  string  `json:"content" binding:"required" example:"hello"`
	ImageURL *string `json:"image_url,omitempty" example:"posts/1/5b0c....png"`
}

// PostResponse is a post as returned by the API.
type PostResponse struct {
	ID        uint                `json:"id" example:"1"`
	UserID    uint                `json:"user_id" example:"1"`
	Author    UserSummaryResponse `json:"author"`
	Content   string              `json:"content" example:"hello"`
	ImageURL  *string             `json:"image_url"`
	Timestamp time.Time           `json:"timestamp"`
}

func toPostResponse(p models.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		UserID:    p.AuthorID,
		Author:    UserSummaryResponse{ID: p.Author.ID, Username: p.Author.Username},
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		Timestamp: p.CreatedAt,
	}
}

// CreatePost godoc
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        input body      CreatePostInput  true  "Post"
// @Success      201   {object}  PostResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.Posts.Create(c.Request.Context(), actorID(c), input.Content, input.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPostResponse(*post))
}

// ListPosts godoc
// @Summary      List visible posts
// @Description  Posts by the caller and the caller's accepted friends, newest first.
// @Tags         posts
// @Produce      json
// @Security     SessionCookie
// @Param        limit  query     int  false  "Maximum number of posts"
// @Param        offset query     int  false  "Number of posts to skip"
// @Success      200    {array}   PostResponse
// @Failure      401    {object}  ErrorResponse
// @Router       /posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.Posts.VisibleTo(c.Request.Context(), actorID(c), offsetParams(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// GetPost godoc
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	post, err := h.Posts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPostResponse(*post))
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Only the author may delete a post.
// @Tags         posts
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	post, err := h.Posts.Delete(c.Request.Context(), id, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if post.ImageURL != nil {
		h.removeMedia(c.Request.Context(), post.AuthorID, *post.ImageURL)
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Post deleted"})
}
