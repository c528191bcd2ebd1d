package chat

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/proposal-agent/backend/internal/model/chat"
	"github.com/zhouzirui/proposal-agent/backend/internal/service/ai"
	"github.com/zhouzirui/proposal-agent/backend/pkg/utils"
)

// Responder answers one user message within a session.
type Responder interface {
	Respond(ctx context.Context, sessionID, input string) ai.Reply
}

// SessionStore exposes the session transcript to HTTP clients.
type SessionStore interface {
	CreateSession(ctx context.Context) chat.Session
	Session(ctx context.Context, sessionID string) (chat.Session, bool)
	Get(ctx context.Context, sessionID string) []chat.Turn
}

// Handler 提案会话的HTTP处理器
type Handler struct {
	responder Responder
	sessions  SessionStore
	logger    *zap.SugaredLogger
	ws        *wsHandler
}

// New 创建会话处理器
func New(responder Responder, sessions SessionStore, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	h := &Handler{
		responder: responder,
		sessions:  sessions,
		logger:    logger,
	}
	h.ws = newWSHandler(responder, logger)
	return h
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions/{sessionID}/turns", h.handleListTurns)
	r.Post("/sessions/{sessionID}/messages", h.handleSendMessage)
	r.Get("/sessions/{sessionID}/ws", h.ws.handleWebSocket)
}

// MessageResponse is returned for every accepted message, including fallbacks.
type MessageResponse struct {
	SessionID string     `json:"sessionId"`
	Reply     string     `json:"reply"`
	Outcome   ai.Outcome `json:"outcome"`
}

// TranscriptResponse lists the recorded turns of a session.
type TranscriptResponse struct {
	SessionID string      `json:"sessionId"`
	Turns     []chat.Turn `json:"turns"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.CreateSession(r.Context())
	h.logger.Infow("Session created", "session", session.ID)
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleListTurns(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, ok := h.sessions.Session(r.Context(), sessionID); !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, TranscriptResponse{
		SessionID: sessionID,
		Turns:     h.sessions.Get(r.Context(), sessionID),
	})
}

// handleSendMessage 发送一条消息并返回模型回复。空字符串内容原样转发。
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Content *string `json:"content"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Content == nil {
		utils.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	reply := h.responder.Respond(r.Context(), sessionID, *payload.Content)
	utils.RespondJSON(w, http.StatusOK, MessageResponse{
		SessionID: sessionID,
		Reply:     reply.Text,
		Outcome:   reply.Outcome,
	})
}
