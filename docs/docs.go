// Package docs registers the Swagger description served at /swagger. Keep it
// in step with the swag annotations on the handlers and cmd/server.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/events": {
			"get": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Server-sent events for the caller: message:new, friend:request and friend:accepted. Each data line is a JSON {type, payload}.",
				"produces": [
					"text/event-stream"
				],
				"tags": [
					"realtime"
				],
				"summary": "Stream real-time events",
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/friends": {
			"post": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Opens a pending friend request to another user. Fails with 409 if any edge already exists between the two users, in either direction.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"friendship"
				],
				"summary": "Send a friend request",
				"parameters": [
					{
						"description": "Target user",
						"name": "input",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.FriendRequestInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.FriendRequestCreatedResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Lists the caller's accepted friends, whichever side sent the request.",
				"produces": [
					"application/json"
				],
				"tags": [
					"friendship"
				],
				"summary": "List friends",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.UserResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/friends/requests": {
			"get": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Lists pending requests addressed to the caller, oldest first.",
				"produces": [
					"application/json"
				],
				"tags": [
					"friendship"
				],
				"summary": "List incoming friend requests",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.PendingRequestResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/friends/{id}": {
			"put": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Accepts or rejects a pending request. Only its recipient may answer; rejecting deletes it.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"friendship"
				],
				"summary": "Answer a friend request",
				"parameters": [
					{
						"type": "integer",
						"description": "Friend request ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "accept or reject",
						"name": "input",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.RespondFriendRequestInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.MessageResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Deletes a friend edge in any state. Either side may do it. Existing messages are kept.",
				"produces": [
					"application/json"
				],
				"tags": [
					"friendship"
				],
				"summary": "Remove a friend or cancel a request",
				"parameters": [
					{
						"type": "integer",
						"description": "Friend edge ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.MessageResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/login": {
			"post": {
				"description": "Authenticates with a username or email and a password, and starts a session cookie.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Log in",
				"parameters": [
					{
						"description": "Login Info",
						"name": "input",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.LoginInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.LoginResponse"
						}
					},
					"400": {
						"description": "Missing credentials",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"401": {
						"description": "Invalid credentials",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/logout": {
			"post": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Destroys the current session and clears the cookie.",
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Log out",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.MessageResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/me": {
			"get": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Get the current user",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.UserResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/media": {
			"post": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Stores an image of at most 5 MiB. Use the returned key as a post's image_url.",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"posts"
				],
				"summary": "Upload post media",
				"parameters": [
					{
						"type": "file",
						"description": "Image file",
						"name": "file",
						"in": "formData",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.MediaUploadResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"413": {
						"description": "Request Entity Too Large",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/messages": {
			"post": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Only accepted friends can message each other.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"messages"
				],
				"summary": "Send a direct message",
				"parameters": [
					{
						"description": "Message",
						"name": "input",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.SendMessageInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.DirectMessageResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Every message the caller sent or received, newest first, as one feed.",
				"produces": [
					"application/json"
				],
				"tags": [
					"messages"
				],
				"summary": "List messages",
				"parameters": [
					{
						"type": "integer",
						"description": "Maximum number of messages",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Number of messages to skip",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.DirectMessageResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/messages/{id}": {
			"get": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Only the sender or the receiver can read a message.",
				"produces": [
					"application/json"
				],
				"tags": [
					"messages"
				],
				"summary": "Get a message",
				"parameters": [
					{
						"type": "integer",
						"description": "Message ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.DirectMessageResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/posts": {
			"post": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"posts"
				],
				"summary": "Create a post",
				"parameters": [
					{
						"description": "Post",
						"name": "input",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.CreatePostInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.PostResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Posts by the caller and the caller's accepted friends, newest first.",
				"produces": [
					"application/json"
				],
				"tags": [
					"posts"
				],
				"summary": "List visible posts",
				"parameters": [
					{
						"type": "integer",
						"description": "Maximum number of posts",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Number of posts to skip",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.PostResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/posts/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"posts"
				],
				"summary": "Get a post",
				"parameters": [
					{
						"type": "integer",
						"description": "Post ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.PostResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Only the author may delete a post.",
				"produces": [
					"application/json"
				],
				"tags": [
					"posts"
				],
				"summary": "Delete a post",
				"parameters": [
					{
						"type": "integer",
						"description": "Post ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.MessageResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/users": {
			"post": {
				"description": "Creates a new account. Does not log the user in.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Register a new user",
				"parameters": [
					{
						"description": "Registration Info",
						"name": "input",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.RegisterInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.UserResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"description": "Lists all users ordered by id, paginated.",
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "List users",
				"parameters": [
					{
						"type": "integer",
						"default": 1,
						"description": "Page number",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"default": 50,
						"description": "Items per page",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.PaginatedResponse-handler_UserResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/users/search": {
			"get": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Case-insensitive substring match on username, excluding the caller. At most 50 results.",
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Search for users",
				"parameters": [
					{
						"type": "string",
						"description": "Search query for username",
						"name": "q",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.UserSummaryResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/users/{id}": {
			"get": {
				"description": "Returns a user's public profile. With a session, includes the caller's friend status towards them.",
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Get a user",
				"parameters": [
					{
						"type": "integer",
						"description": "User ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.UserProfileResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Partially updates username, email or password. Only the user themselves may do it.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Update a user",
				"parameters": [
					{
						"type": "integer",
						"description": "User ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Fields to change",
						"name": "input",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.UpdateUserInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.UserResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Deletes the caller's account with its posts, messages and friend edges, and ends all of its sessions.",
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Delete a user",
				"parameters": [
					{
						"type": "integer",
						"description": "User ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.MessageResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		},
		"/ws": {
			"get": {
				"security": [
					{
						"SessionCookie": []
					}
				],
				"description": "Push-only websocket carrying the same events as /events as JSON text frames.",
				"tags": [
					"realtime"
				],
				"summary": "Real-time events over a websocket",
				"responses": {
					"101": {
						"description": "Switching Protocols"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handler.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"handler.CreatePostInput": {
			"type": "object",
			"required": [
				"content"
			],
			"properties": {
				"content": {
					"type": "string",
					"example": "hello"
				},
				"image_url": {
					"type": "string",
					"example": "posts/1/5b0c....png"
				}
			}
		},
		"handler.DirectMessageResponse": {
			"type": "object",
			"properties": {
				"content": {
					"type": "string",
					"example": "hi bob"
				},
				"id": {
					"type": "integer",
					"example": 1
				},
				"receiver_id": {
					"type": "integer",
					"example": 2
				},
				"sender_id": {
					"type": "integer",
					"example": 1
				},
				"timestamp": {
					"type": "string"
				}
			}
		},
		"handler.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string",
					"example": "An error message"
				}
			}
		},
		"handler.FriendRequestCreatedResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer",
					"example": 1
				},
				"status": {
					"allOf": [
						{
							"$ref": "#/definitions/models.FriendshipStatus"
						}
					],
					"example": "pending"
				}
			}
		},
		"handler.FriendRequestInput": {
			"type": "object",
			"properties": {
				"friend_id": {
					"type": "integer",
					"example": 2
				}
			}
		},
		"handler.LoginInput": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"identifier": {
					"type": "string",
					"example": "alice"
				},
				"password": {
					"type": "string",
					"example": "password123"
				},
				"username": {
					"type": "string"
				}
			}
		},
		"handler.LoginResponse": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string",
					"example": "Login successful"
				},
				"user": {
					"$ref": "#/definitions/handler.UserResponse"
				}
			}
		},
		"handler.MediaUploadResponse": {
			"type": "object",
			"properties": {
				"key": {
					"type": "string",
					"example": "posts/1/0f9c2b7e-....png"
				},
				"url": {
					"type": "string",
					"example": "http://localhost:9000/post-media/posts/1/0f9c2b7e-....png?X-Amz-..."
				}
			}
		},
		"handler.MessageResponse": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string",
					"example": "Logged out"
				}
			}
		},
		"handler.PaginatedResponse-handler_UserResponse": {
			"type": "object",
			"properties": {
				"data": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/handler.UserResponse"
					}
				},
				"meta": {
					"$ref": "#/definitions/handler.PaginationMeta"
				}
			}
		},
		"handler.PaginationMeta": {
			"type": "object",
			"properties": {
				"current_page": {
					"type": "integer"
				},
				"page_size": {
					"type": "integer"
				},
				"total_items": {
					"type": "integer"
				},
				"total_pages": {
					"type": "integer"
				}
			}
		},
		"handler.PendingRequestResponse": {
			"type": "object",
			"properties": {
				"from": {
					"$ref": "#/definitions/handler.UserSummaryResponse"
				},
				"id": {
					"type": "integer",
					"example": 1
				}
			}
		},
		"handler.PostResponse": {
			"type": "object",
			"properties": {
				"author": {
					"$ref": "#/definitions/handler.UserSummaryResponse"
				},
				"content": {
					"type": "string",
					"example": "hello"
				},
				"id": {
					"type": "integer",
					"example": 1
				},
				"image_url": {
					"type": "string"
				},
				"timestamp": {
					"type": "string"
				},
				"user_id": {
					"type": "integer",
					"example": 1
				}
			}
		},
		"handler.RegisterInput": {
			"type": "object",
			"required": [
				"email",
				"password",
				"username"
			],
			"properties": {
				"email": {
					"type": "string",
					"example": "alice@example.com"
				},
				"password": {
					"type": "string",
					"example": "password123"
				},
				"username": {
					"type": "string",
					"example": "alice"
				}
			}
		},
		"handler.RespondFriendRequestInput": {
			"type": "object",
			"required": [
				"action"
			],
			"properties": {
				"action": {
					"type": "string",
					"enum": [
						"accept",
						"reject"
					],
					"example": "accept"
				}
			}
		},
		"handler.SendMessageInput": {
			"type": "object",
			"properties": {
				"content": {
					"type": "string",
					"example": "hi bob"
				},
				"receiver_id": {
					"type": "integer",
					"example": 2
				}
			}
		},
		"handler.UpdateUserInput": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string",
					"example": "alice2@example.com"
				},
				"password": {
					"type": "string"
				},
				"username": {
					"type": "string",
					"example": "alice2"
				}
			}
		},
		"handler.UserProfileResponse": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string",
					"example": "alice@example.com"
				},
				"friend_status": {
					"type": "string",
					"example": "accepted"
				},
				"id": {
					"type": "integer",
					"example": 1
				},
				"username": {
					"type": "string",
					"example": "alice"
				}
			}
		},
		"handler.UserResponse": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string",
					"example": "alice@example.com"
				},
				"id": {
					"type": "integer",
					"example": 1
				},
				"username": {
					"type": "string",
					"example": "alice"
				}
			}
		},
		"handler.UserSummaryResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer",
					"example": 2
				},
				"username": {
					"type": "string",
					"example": "bob"
				}
			}
		},
		"models.FriendshipStatus": {
			"type": "string",
			"enum": [
				"pending",
				"accepted"
			],
			"x-enum-varnames": [
				"StatusPending",
				"StatusAccepted"
			]
		}
	},
	"securityDefinitions": {
		"SessionCookie": {
			"type": "apiKey",
			"name": "Cookie",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Socialnet API",
	Description:      "REST backend for a small social network: accounts, friends, friend-scoped posts and direct messages.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
