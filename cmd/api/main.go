package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/proposal-agent/backend/internal/config"
	"github.com/zhouzirui/proposal-agent/backend/internal/handler"
	"github.com/zhouzirui/proposal-agent/backend/internal/logging"
	"github.com/zhouzirui/proposal-agent/backend/internal/service/ai"
	"github.com/zhouzirui/proposal-agent/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	sugar, err := logging.New(cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = sugar.Sync()
	}()

	if envErr != nil {
		sugar.Infow("No .env file loaded, using system environment variables only", "error", envErr)
	}

	store := chat.NewStore()
	pipeline := newPipeline(ctx, cfg.AI, store, sugar)

	addr, err := cfg.Server.Addr()
	if err != nil {
		sugar.Fatalw("Invalid server address", "error", err)
	}

	router := handler.NewRouter(pipeline, store, cfg.Server.AllowedOrigins, sugar)
	startServer(ctx, addr, router, sugar)
}

// newPipeline builds the conversation pipeline. Instruction or credential
// problems leave it degraded rather than stopping the server.
func newPipeline(ctx context.Context, aiCfg config.AIConfig, store *chat.Store, sugar *zap.SugaredLogger) *ai.Pipeline {
	sugar.Infow("Initializing proposal pipeline",
		"provider", aiCfg.Provider,
		"model", aiCfg.ModelName(),
		"temperature", aiCfg.Temperature,
	)

	instruction, err := ai.LoadInstruction(aiCfg.InstructionFile)
	if err != nil {
		factory := func(context.Context) (model.ChatModel, error) { return nil, err }
		return ai.New(ctx, store, factory, aiCfg.PipelineConfig(""), sugar)
	}

	return ai.New(ctx, store, aiCfg.NewChatModel, aiCfg.PipelineConfig(instruction), sugar)
}

func startServer(ctx context.Context, addr string, router http.Handler, sugar *zap.SugaredLogger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sugar.Infow("Proposal agent listening", "addr", addr)
	if err := runServer(ctx, srv); err != nil {
		sugar.Fatalw("Server error", "error", err)
	}
	sugar.Infow("Server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
