package handler

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"
)

const (
	streamBuffer      = 64
	keepAliveInterval = 25 * time.Second
)

// Events godoc
// @Summary      Stream real-time events
// @Description  Server-sent events for the caller: message:new, friend:request and friend:accepted. Each data line is a JSON {type, payload}.
// @Tags         realtime
// @Produce      text/event-stream
// @Security     SessionCookie
// @Success      200
// @Failure      401  {object}  ErrorResponse
// @Router       /events [get]
func (h *Handler) Events(c *gin.Context) {
	userID := actorID(c)
	client := h.Hub.Subscribe(userID, streamBuffer)
	defer h.Hub.Unsubscribe(userID, client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	// Flush headers so the client sees the stream open before any event.
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", json.RawMessage(msg))
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// WebSocket godoc
// @Summary      Real-time events over a websocket
// @Description  Push-only websocket carrying the same events as /events as JSON text frames.
// @Tags         realtime
// @Security     SessionCookie
// @Success      101
// @Failure      401  {object}  ErrorResponse
// @Router       /ws [get]
func (h *Handler) WebSocket(c *gin.Context) {
	userID := actorID(c)

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.WSOriginPatterns,
	})
	if err != nil {
		return // Accept already wrote the response
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	// Push only, but control frames still need reading.
	ctx := conn.CloseRead(c.Request.Context())

	client := h.Hub.Subscribe(userID, streamBuffer)
	defer h.Hub.Unsubscribe(userID, client)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
