package chat

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/proposal-agent/backend/internal/service/ai"
)

const (
	wsTypeMessage = "message"
	wsTypeReply   = "reply"
	wsTypeError   = "error"
)

type wsHandler struct {
	responder Responder
	logger    *zap.SugaredLogger
	upgrader  websocket.Upgrader
}

func newWSHandler(responder Responder, logger *zap.SugaredLogger) *wsHandler {
	return &wsHandler{
		responder: responder,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type inboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type outgoingMessage struct {
	Type      string     `json:"type"`
	SessionID string     `json:"sessionId,omitempty"`
	Content   string     `json:"content,omitempty"`
	Outcome   ai.Outcome `json:"outcome,omitempty"`
	Error     string     `json:"error,omitempty"`
	Timestamp int64      `json:"timestamp"`
}

// handleWebSocket runs a turn-based loop: each inbound message is answered
// before the next one is read.
func (h *wsHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("WebSocket upgrade failed", "session", sessionID, "error", err)
		return
	}
	defer conn.Close()

	h.logger.Infow("WebSocket connected", "session", sessionID)
	ctx := r.Context()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warnw("WebSocket read failed", "session", sessionID, "error", err)
			} else {
				h.logger.Infow("WebSocket closed", "session", sessionID)
			}
			return
		}

		var in inboundMessage
		if err := json.Unmarshal(data, &in); err != nil {
			if err := h.write(conn, outgoingMessage{Type: wsTypeError, SessionID: sessionID, Error: "invalid message"}); err != nil {
				return
			}
			continue
		}

		if in.Type != "" && in.Type != wsTypeMessage {
			if err := h.write(conn, outgoingMessage{Type: wsTypeError, SessionID: sessionID, Error: "unsupported message type"}); err != nil {
				return
			}
			continue
		}

		reply := h.responder.Respond(ctx, sessionID, in.Content)
		if err := h.write(conn, outgoingMessage{
			Type:      wsTypeReply,
			SessionID: sessionID,
			Content:   reply.Text,
			Outcome:   reply.Outcome,
		}); err != nil {
			h.logger.Warnw("WebSocket write failed", "session", sessionID, "error", err)
			return
		}
	}
}

func (h *wsHandler) write(conn *websocket.Conn, msg outgoingMessage) error {
	msg.Timestamp = time.Now().UnixMilli()
	return conn.WriteJSON(msg)
}
