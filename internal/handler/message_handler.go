package handler

import (
	"net/http"
	"time"

	"socialnet/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SendMessageInput defines the body of a direct message.
type SendMessageInput struct {
	ReceiverID uint   `json:"receiver_id" example:"2"`
	Content    string `json:"content" example:"hi bob"`
}

// DirectMessageResponse is a message as returned by the API.
type DirectMessageResponse struct {
	ID         uint      `json:"id" example:"1"`
	SenderID   uint      `json:"sender_id" example:"1"`
	ReceiverID uint      `json:"receiver_id" example:"2"`
	Content    string    `json:"content" example:"hi bob"`
	Timestamp  time.Time `json:"timestamp"`
}

func toDirectMessageResponse(m models.Message) DirectMessageResponse {
	return DirectMessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Timestamp:  m.CreatedAt,
	}
}

// SendMessage godoc
// @Summary      Send a direct message
// @Description  Only accepted friends can message each other.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        input body      SendMessageInput  true  "Message"
// @Success      201   {object}  DirectMessageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.Messages.Send(c.Request.Context(), actorID(c), input.ReceiverID, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDirectMessageResponse(*msg))
}

// ListMessages godoc
// @Summary      List messages
// @Description  Every message the caller sent or received, newest first, as one feed.
// @Tags         messages
// @Produce      json
// @Security     SessionCookie
// @Param        limit  query     int  false  "Maximum number of messages"
// @Param        offset query     int  false  "Number of messages to skip"
// @Success      200    {array}   DirectMessageResponse
// @Failure      401    {object}  ErrorResponse
// @Router       /messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	msgs, err := h.Messages.ListFor(c.Request.Context(), actorID(c), offsetParams(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]DirectMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toDirectMessageResponse(m))
	}
	c.JSON(http.StatusOK, out)
}

// GetMessage godoc
// @Summary      Get a message
// @Description  Only the sender or the receiver can read a message.
// @Tags         messages
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      int  true  "Message ID"
// @Success      200  {object}  DirectMessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /messages/{id} [get]
func (h *Handler) GetMessage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	msg, err := h.Messages.Get(c.Request.Context(), id, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDirectMessageResponse(*msg))
}
