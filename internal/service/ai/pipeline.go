package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/proposal-agent/backend/internal/model/chat"
)

const (
	FallbackUnavailable   = "System is currently unavailable. Please try again later."
	FallbackRequestFailed = "I apologize, but I encountered an error. Please try again or rephrase your question."

	defaultRequestTimeout = 60 * time.Second
)

// HistoryStore is the session transcript the pipeline reads and extends.
type HistoryStore interface {
	Get(ctx context.Context, sessionID string) []chat.Turn
	Append(ctx context.Context, sessionID string, turn chat.Turn)
}

// ModelFactory builds the chat model once at pipeline construction.
type ModelFactory func(ctx context.Context) (model.ChatModel, error)

// Config tunes the pipeline.
type Config struct {
	// Instruction is the system directive; empty selects DefaultInstruction.
	Instruction string
	// Timeout bounds a single model call; zero selects the default.
	Timeout time.Duration
	// HistoryLimit caps how many recorded turns are sent with a request.
	// Zero sends the whole history. The store itself is never trimmed.
	HistoryLimit int
}

// State is the lifecycle state of a Pipeline.
type State int

const (
	StateReady State = iota + 1
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return "uninitialized"
	}
}

// Outcome classifies how a Respond call ended.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeFailed      Outcome = "failed"
)

// Reply is the result of one Respond call. Text is always safe to show.
type Reply struct {
	Text    string
	Outcome Outcome
	Err     error
}

// Pipeline turns a session's history plus new input into one model call.
type Pipeline struct {
	store        HistoryStore
	logger       *zap.SugaredLogger
	instruction  string
	timeout      time.Duration
	historyLimit int

	state   State
	initErr error
	chain   compose.Runnable[map[string]any, *schema.Message]
}

// New builds the pipeline. It never fails: if the model or the chain cannot
// be constructed the pipeline is returned degraded and stays that way.
func New(ctx context.Context, store HistoryStore, factory ModelFactory, cfg Config, logger *zap.SugaredLogger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	p := &Pipeline{
		store:        store,
		logger:       logger,
		instruction:  cfg.Instruction,
		timeout:      cfg.Timeout,
		historyLimit: cfg.HistoryLimit,
	}
	if p.instruction == "" {
		p.instruction = DefaultInstruction
	}
	if p.timeout <= 0 {
		p.timeout = defaultRequestTimeout
	}

	chain, err := compileChain(ctx, factory)
	if err != nil {
		p.state = StateDegraded
		p.initErr = &InitializationError{Cause: err}
		logger.Errorw("Proposal pipeline unavailable", "error", err)
		return p
	}

	p.state = StateReady
	p.chain = chain
	logger.Infow("Proposal pipeline ready", "timeout", p.timeout.String(), "historyLimit", p.historyLimit)
	return p
}

func compileChain(ctx context.Context, factory ModelFactory) (compose.Runnable[map[string]any, *schema.Message], error) {
	if factory == nil {
		return nil, fmt.Errorf("no chat model configured")
	}

	chatModel, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	if chatModel == nil {
		return nil, fmt.Errorf("chat model factory returned nil")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile proposal chain: %w", err)
	}
	return runnable, nil
}

// State reports whether the pipeline is ready or permanently degraded.
func (p *Pipeline) State() State {
	return p.state
}

// InitErr returns the construction failure of a degraded pipeline.
func (p *Pipeline) InitErr() error {
	return p.initErr
}

// Respond answers input within sessionID. It never returns an error: failures
// are logged and replaced by a fallback text, and the history is only
// extended when the model call succeeds.
func (p *Pipeline) Respond(ctx context.Context, sessionID, input string) Reply {
	if p.state != StateReady {
		p.logger.Errorw("Rejecting request, pipeline unavailable", "session", sessionID, "error", p.initErr)
		return Reply{Text: FallbackUnavailable, Outcome: OutcomeUnavailable, Err: p.initErr}
	}

	start := time.Now()
	text, err := p.exchange(ctx, sessionID, input)
	dur := time.Since(start)
	if err != nil {
		p.logger.Errorw("Error generating response", "session", sessionID, "duration", dur.String(), "error", err)
		return Reply{Text: FallbackRequestFailed, Outcome: OutcomeFailed, Err: err}
	}

	p.logger.Infow("Response generated", "session", sessionID, "duration", dur.String(), "length", len(text))
	return Reply{Text: text, Outcome: OutcomeOK}
}

func (p *Pipeline) exchange(ctx context.Context, sessionID, input string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RequestError{SessionID: sessionID, Cause: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()

	if sessionID == "" {
		return "", &RequestError{Cause: ErrSessionRequired}
	}

	history := p.store.Get(ctx, sessionID)

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg, err := p.chain.Invoke(callCtx, p.buildChainInput(history, input))
	if err != nil {
		return "", &RequestError{SessionID: sessionID, Cause: fmt.Errorf("failed to run proposal chain: %w", err)}
	}
	if msg == nil {
		return "", &RequestError{SessionID: sessionID, Cause: ErrEmptyReply}
	}

	p.store.Append(ctx, sessionID, chat.UserTurn(input))
	p.store.Append(ctx, sessionID, chat.AssistantTurn(msg.Content))
	return msg.Content, nil
}

func (p *Pipeline) buildChainInput(history []chat.Turn, input string) map[string]any {
	return map[string]any{
		"system":  p.instruction,
		"history": p.buildHistoryMessages(history),
		"query":   input,
	}
}

func (p *Pipeline) buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	startIdx := 0
	if p.historyLimit > 0 && len(turns) > p.historyLimit {
		startIdx = len(turns) - p.historyLimit
	}

	history := make([]*schema.Message, 0, len(turns)-startIdx)
	for _, turn := range turns[startIdx:] {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Text))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Text, nil))
		case chat.RoleSystem:
			history = append(history, schema.SystemMessage(turn.Text))
		}
	}
	return history
}
