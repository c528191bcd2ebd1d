package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/proposal-agent/backend/internal/service/ai"
	"github.com/zhouzirui/proposal-agent/backend/pkg/utils"
)

// StateReporter exposes the pipeline lifecycle state.
type StateReporter interface {
	State() ai.State
}

// Handler 健康检查处理器
type Handler struct {
	pipeline StateReporter
}

// New 创建健康检查处理器
func New(pipeline StateReporter) *Handler {
	return &Handler{pipeline: pipeline}
}

// RegisterRoutes 注册健康检查路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

// handleHealth always answers 200; a degraded pipeline is reported, not failed,
// because the service still answers every request with a fallback.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"pipeline": h.pipeline.State().String(),
	})
}
