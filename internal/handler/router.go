package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/proposal-agent/backend/internal/handler/chat"
	"github.com/zhouzirui/proposal-agent/backend/internal/handler/health"
	middlewarePkg "github.com/zhouzirui/proposal-agent/backend/internal/middleware"
	aiService "github.com/zhouzirui/proposal-agent/backend/internal/service/ai"
	chatService "github.com/zhouzirui/proposal-agent/backend/internal/service/chat"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(pipeline *aiService.Pipeline, store *chatService.Store, allowedOrigins []string, logger *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	healthHandler := health.New(pipeline)
	chatHandler := chat.New(pipeline, store, logger)

	r.Route("/api", func(api chi.Router) {
		healthHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
	})

	return r
}
