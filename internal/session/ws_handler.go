package session

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/classquest/edugame-platform/pkg/http/errors"
	"github.com/classquest/edugame-platform/pkg/http/ws"
)

// WSHandler manages WebSocket connections for live session watching. Hosts
// keep a projector view open; students watch the ranking board.
type WSHandler struct {
	service  *Service
	hub      *ws.Hub
	upgrader *websocket.Upgrader
	logger   zerolog.Logger
}

// NewWSHandler creates a session WebSocket handler.
func NewWSHandler(service *Service, hub *ws.Hub, upgrader *websocket.Upgrader, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		service:  service,
		hub:      hub,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "session_ws").Logger(),
	}
}

// HandleWebSocket upgrades the connection and runs the read loop. Identity
// comes from the platform gateway as a client_id query parameter; session
// access is still checked per watch request.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "Missing client_id")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.RegisterConnection(clientID, wsConn)

	go wsConn.WritePump()

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(clientID, msg)
	})

	h.hub.UnregisterConnection(clientID)
}

func (h *WSHandler) handleMessage(clientID string, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeWatchSession:
		return h.handleWatch(clientID, msg.Payload)
	case ws.TypeLeaveSession:
		return h.handleLeave(clientID, msg.Payload)
	case ws.TypePing:
		return h.hub.SendToClient(clientID, ws.NewMessage(ws.TypePong, nil))
	default:
		return h.sendError(clientID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *WSHandler) handleWatch(clientID string, payload json.RawMessage) error {
	var req ws.WatchSessionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(clientID, httperrors.ErrCodeInvalidPayload, "Invalid watch_session payload")
	}

	view, err := h.service.Get(req.SessionID)
	if err != nil {
		return h.sendError(clientID, httperrors.ErrCodeSessionNotFound, err.Error())
	}

	h.hub.WatchSession(view.ID, clientID)

	// Send the current snapshot so the watcher starts from known state.
	return h.hub.SendToClient(clientID, ws.NewMessage(ws.TypeSessionState, view))
}

func (h *WSHandler) handleLeave(clientID string, payload json.RawMessage) error {
	var req ws.LeaveSessionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(clientID, httperrors.ErrCodeInvalidPayload, "Invalid leave_session payload")
	}
	h.hub.UnwatchSession(NormalizeID(req.SessionID), clientID)
	return nil
}

func (h *WSHandler) sendError(clientID, code, message string) error {
	return h.hub.SendToClient(clientID, ws.NewMessage(ws.TypeError, ws.ErrorPayload{
		Code:    code,
		Message: message,
	}))
}
