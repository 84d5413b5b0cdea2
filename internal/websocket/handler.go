package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"topichat/internal/chat"
	"topichat/internal/domain"
)

// Handler owns the lifecycle of chat WebSocket connections: upgrade, the
// join handshake, the receive loop and the exactly-once disconnection pass.
//
// Each connection moves through Connected (accepted, no identity), Joined
// (username and topic assigned) and Closed. A connection that fails the join
// handshake goes straight from Connected to Closed and never triggers leave
// logic, since there is nothing to leave.
type Handler struct {
	service *chat.Service
	logger  *slog.Logger
}

// NewHandler creates the WebSocket handler for the given chat service.
func NewHandler(service *chat.Service) *Handler {
	return &Handler{
		service: service,
		logger:  slog.Default().With("component", "websocket"),
	}
}

// Handle upgrades the request and runs the connection until the peer goes
// away. One goroutine per connection; it suspends in Read between frames.
func (h *Handler) Handle(c echo.Context) error {
	ws, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin checks are the proxy's job in this deployment
	})
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return err
	}
	defer ws.Close(websocket.StatusInternalError, "internal server error")

	ctx := c.Request().Context()
	conn := newConn(ws)

	// First frame must be the join request.
	_, raw, err := ws.Read(ctx)
	if err != nil {
		// Peer vanished before joining; nothing to clean up.
		return nil
	}

	var req chat.JoinRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.logger.Warn("Invalid join payload", "error", err)
		if sendErr := conn.Send(domain.ErrorPayload{Error: domain.ErrInvalidJSON.Error()}); sendErr != nil {
			h.logger.Warn("Failed to report invalid payload", "error", sendErr)
		}
		return ws.Close(websocket.StatusInvalidFramePayloadData, domain.ErrInvalidJSON.Error())
	}

	username, topic, err := h.service.ProcessConnection(conn, req)
	if err != nil {
		// The error payload was already sent; the connection never reached
		// Joined, so it closes without leave logic.
		return ws.Close(websocket.StatusPolicyViolation, err.Error())
	}

	// From here on the connection is Joined; leaving must happen exactly
	// once, however the receive loop ends.
	defer h.service.HandleDisconnection(topic, username)

	for {
		_, frame, err := ws.Read(ctx)
		if err != nil {
			h.logReadEnd(username, err)
			return ws.Close(websocket.StatusNormalClosure, "")
		}
		h.service.ProcessMessage(topic, username, string(frame), conn)
	}
}

func (h *Handler) logReadEnd(username string, err error) {
	switch status := websocket.CloseStatus(err); {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		h.logger.Info("WebSocket closed by client", "username", username)
	case errors.Is(err, io.EOF) || errors.Is(err, context.Canceled):
		// Server shutdown or abrupt peer loss; routine either way.
	default:
		h.logger.Warn("WebSocket read error", "username", username, "error", err)
	}
}
