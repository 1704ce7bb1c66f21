package handler

import (
	"log"
	"net/http"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// LoginInput accepts the identifier under any of its three names.
type LoginInput struct {
	Identifier string `json:"identifier" example:"alice"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password" example:"password123"`
}

func (in LoginInput) identifier() string {
	switch {
	case in.Identifier != "":
		return in.Identifier
	case in.Username != "":
		return in.Username
	default:
		return in.Email
	}
}

// UpdateUserInput holds the fields of a partial update; omitted fields are
// left unchanged.
type UpdateUserInput struct {
	Username *string `json:"username,omitempty" example:"alice2"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email" example:"alice2@example.com"`
	Password *string `json:"password,omitempty"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uint   `json:"id" example:"1"`
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
}

// UserProfileResponse adds the viewer's relationship when a session is present.
type UserProfileResponse struct {
	UserResponse
	FriendStatus string `json:"friend_status,omitempty" example:"accepted"`
}

// UserSummaryResponse is the short form used in search results.
type UserSummaryResponse struct {
	ID       uint   `json:"id" example:"2"`
	Username string `json:"username" example:"bob"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Message string       `json:"message" example:"Login successful"`
	User    UserResponse `json:"user"`
}

// endregion

func toUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func toUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// region --- Auth Handlers ---

// Register godoc
// @Summary      Register a new user
// @Description  Creates a new account. Does not log the user in.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  UserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users [post]
func (h *Handler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.Register(c.Request.Context(), service.RegisterParams{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(*user))
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates with a username or email and a password, and starts a session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  ErrorResponse "Missing credentials"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse
// @Router       /login [post]
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), input.identifier(), input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.Sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Sessions.SetCookie(c, token)

	c.JSON(http.StatusOK, LoginResponse{Message: "Login successful", User: toUserResponse(*user)})
}

// Logout godoc
// @Summary      Log out
// @Description  Destroys the current session and clears the cookie.
// @Tags         auth
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(auth.SessionCookie); err == nil {
		if err := h.Sessions.Destroy(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}
	h.Sessions.ClearCookie(c)
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

// Me godoc
// @Summary      Get the current user
// @Tags         auth
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(*user))
}

// endregion

// region --- User Handlers ---

// ListUsers godoc
// @Summary      List users
// @Description  Lists all users ordered by id, paginated.
// @Tags         users
// @Produce      json
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(50)
// @Success      200   {object}  PaginatedResponse[UserResponse]
// @Failure      500   {object}  ErrorResponse
// @Router       /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)

	users, total, err := h.Users.List(c.Request.Context(), service.Page{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(toUserResponses(users), total, page, limit))
}

// GetUser godoc
// @Summary      Get a user
// @Description  Returns a user's public profile. With a session, includes the caller's friend status towards them.
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  UserProfileResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := UserProfileResponse{UserResponse: toUserResponse(*user)}
	if viewerID, ok := auth.CurrentUserID(c); ok && viewerID != id {
		status, err := h.Friends.Status(c.Request.Context(), viewerID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.FriendStatus = status
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateUser godoc
// @Summary      Update a user
// @Description  Partially updates username, email or password. Only the user themselves may do it.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      int              true  "User ID"
// @Param        input body      UpdateUserInput  true  "Fields to change"
// @Success      200   {object}  UserResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.Update(c.Request.Context(), id, actorID(c), service.UpdateParams{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(*user))
}

// DeleteUser godoc
// @Summary      Delete a user
// @Description  Deletes the caller's account with its posts, messages and friend edges, and ends all of its sessions.
// @Tags         users
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	refs, err := h.Users.Delete(c.Request.Context(), id, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.removeMedia(c.Request.Context(), id, refs...)

	if err := h.Sessions.RevokeUser(c.Request.Context(), id); err != nil {
		log.Printf("revoke sessions of deleted user %d: %v", id, err)
	}
	h.Sessions.ClearCookie(c)
	c.JSON(http.StatusOK, MessageResponse{Message: "User deleted"})
}

// SearchUsers godoc
// @Summary      Search for users
// @Description  Case-insensitive substring match on username, excluding the caller. At most 50 results.
// @Tags         users
// @Produce      json
// @Security     SessionCookie
// @Param        q    query     string  false  "Search query for username"
// @Success      200  {array}   UserSummaryResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/search [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	users, err := h.Users.Search(c.Request.Context(), c.Query("q"), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]UserSummaryResponse, 0, len(users))
	for _, u := range users {
		results = append(results, UserSummaryResponse{ID: u.ID, Username: u.Username})
	}
	c.JSON(http.StatusOK, results)
}

// endregion
