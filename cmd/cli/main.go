package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/proposal-agent/backend/internal/config"
	"github.com/zhouzirui/proposal-agent/backend/internal/console"
	"github.com/zhouzirui/proposal-agent/backend/internal/logging"
	"github.com/zhouzirui/proposal-agent/backend/internal/service/ai"
	"github.com/zhouzirui/proposal-agent/backend/internal/service/chat"
)

func main() {
	session := flag.String("session", "default_session", "conversation session id")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Diagnostics go to stderr so they do not interleave with the transcript.
	sugar, err := logging.New(cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = sugar.Sync()
	}()

	store := chat.NewStore()
	factory := ai.ModelFactory(cfg.AI.NewChatModel)
	instruction, err := ai.LoadInstruction(cfg.AI.InstructionFile)
	if err != nil {
		factory = func(context.Context) (model.ChatModel, error) { return nil, err }
	}
	pipeline := ai.New(ctx, store, factory, cfg.AI.PipelineConfig(instruction), sugar)

	if err := console.New(pipeline, store, *session, os.Stdin, os.Stdout).Run(ctx); err != nil {
		sugar.Errorw("Console stopped", "error", err)
	}
}
