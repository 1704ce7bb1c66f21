package handler

import (
	"net/http"

	"socialnet/backend/internal/models"
	"socialnet/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// FriendRequestInput names the user to befriend.
type FriendRequestInput struct {
	FriendID uint `json:"friend_id" example:"2"`
}

// FriendRequestCreatedResponse describes a new pending edge.
type FriendRequestCreatedResponse struct {
	ID     uint                    `json:"id" example:"1"`
	Status models.FriendshipStatus `json:"status" example:"pending"`
}

// RespondFriendRequestInput carries the recipient's answer.
type RespondFriendRequestInput struct {
	Action string `json:"action" binding:"required" example:"accept" enums:"accept,reject"`
}

// PendingRequestResponse is an incoming request awaiting an answer.
type PendingRequestResponse struct {
	ID   uint                `json:"id" example:"1"`
	From UserSummaryResponse `json:"from"`
}

// SendFriendRequest godoc
// @Summary      Send a friend request
// @Description  Opens a pending friend request to another user. Fails with 409 if any edge already exists between the two users, in either direction.
// @Tags         friendship
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        input body      FriendRequestInput  true  "Target user"
// @Success      201   {object}  FriendRequestCreatedResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /friends [post]
func (h *Handler) SendFriendRequest(c *gin.Context) {
	var input FriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edge, err := h.Friends.CreateRequest(c.Request.Context(), actorID(c), input.FriendID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, FriendRequestCreatedResponse{ID: edge.ID, Status: edge.Status})
}

// RespondFriendRequest godoc
// @Summary      Answer a friend request
// @Description  Accepts or rejects a pending request. Only its recipient may answer; rejecting deletes it.
// @Tags         friendship
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      int                        true  "Friend request ID"
// @Param        input body      RespondFriendRequestInput  true  "accept or reject"
// @Success      200   {object}  MessageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /friends/{id} [put]
func (h *Handler) RespondFriendRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input RespondFriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action := service.Action(input.Action)
	if _, err := h.Friends.Respond(c.Request.Context(), id, actorID(c), action); err != nil {
		respondError(c, err)
		return
	}

	msg := "Friend request accepted"
	if action == service.ActionReject {
		msg = "Friend request rejected"
	}
	c.JSON(http.StatusOK, MessageResponse{Message: msg})
}

// RemoveFriend godoc
// @Summary      Remove a friend or cancel a request
// @Description  Deletes a friend edge in any state. Either side may do it. Existing messages are kept.
// @Tags         friendship
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      int  true  "Friend edge ID"
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/{id} [delete]
func (h *Handler) RemoveFriend(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Friends.Remove(c.Request.Context(), id, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Friend removed"})
}

// ListFriends godoc
// @Summary      List friends
// @Description  Lists the caller's accepted friends, whichever side sent the request.
// @Tags         friendship
// @Produce      json
// @Security     SessionCookie
// @Success      200  {array}   UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends [get]
func (h *Handler) ListFriends(c *gin.Context) {
	friends, err := h.Friends.ListFriends(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(friends))
}

// ListFriendRequests godoc
// @Summary      List incoming friend requests
// @Description  Lists pending requests addressed to the caller, oldest first.
// @Tags         friendship
// @Produce      json
// @Security     SessionCookie
// @Success      200  {array}   PendingRequestResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/requests [get]
func (h *Handler) ListFriendRequests(c *gin.Context) {
	edges, err := h.Friends.ListPending(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	requests := make([]PendingRequestResponse, 0, len(edges))
	for _, e := range edges {
		requests = append(requests, PendingRequestResponse{
			ID:   e.ID,
			From: UserSummaryResponse{ID: e.Requester.ID, Username: e.Requester.Username},
		})
	}
	c.JSON(http.StatusOK, requests)
}
