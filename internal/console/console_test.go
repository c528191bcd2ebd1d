package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/zhouzirui/proposal-agent/backend/internal/console"
	chatmodel "github.com/zhouzirui/proposal-agent/backend/internal/model/chat"
	"github.com/zhouzirui/proposal-agent/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/proposal-agent/backend/internal/service/chat"
)

type scriptedResponder struct {
	store   *chatservice.Store
	replies []string
	inputs  []string
}

func (s *scriptedResponder) Respond(ctx context.Context, sessionID, input string) ai.Reply {
	idx := len(s.inputs)
	s.inputs = append(s.inputs, input)
	reply := "ok"
	if idx < len(s.replies) {
		reply = s.replies[idx]
	}
	s.store.Append(ctx, sessionID, chatmodel.UserTurn(input))
	s.store.Append(ctx, sessionID, chatmodel.AssistantTurn(reply))
	return ai.Reply{Text: reply, Outcome: ai.OutcomeOK}
}

func TestConsoleExchangesAndQuits(t *testing.T) {
	store := chatservice.NewStore()
	responder := &scriptedResponder{store: store, replies: []string{"Hi, tell me about your company."}}
	in := strings.NewReader("Hello\n/quit\nignored\n")
	var out bytes.Buffer

	if err := console.New(responder, store, "default_session", in, &out).Run(context.Background()); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if len(responder.inputs) != 1 || responder.inputs[0] != "Hello" {
		t.Fatalf("unexpected inputs: %v", responder.inputs)
	}
	if !strings.Contains(out.String(), "assistant> Hi, tell me about your company.") {
		t.Fatalf("reply not printed:\n%s", out.String())
	}
}

func TestConsolePasteBlock(t *testing.T) {
	store := chatservice.NewStore()
	responder := &scriptedResponder{store: store}
	in := strings.NewReader("/paste\nMet with Acme.\nThey need a CRM.\n.\n")
	var out bytes.Buffer

	if err := console.New(responder, store, "s", in, &out).Run(context.Background()); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if len(responder.inputs) != 1 || responder.inputs[0] != "Met with Acme.\nThey need a CRM." {
		t.Fatalf("unexpected inputs: %q", responder.inputs)
	}
}

func TestConsoleHistory(t *testing.T) {
	store := chatservice.NewStore()
	responder := &scriptedResponder{store: store, replies: []string{"What is the budget?"}}
	in := strings.NewReader("/history\nNotes\n/history\n")
	var out bytes.Buffer

	if err := console.New(responder, store, "s", in, &out).Run(context.Background()); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "(no history yet)") {
		t.Fatalf("expected empty history notice:\n%s", text)
	}
	if !strings.Contains(text, "you> Notes") || strings.Count(text, "assistant> What is the budget?") != 2 {
		t.Fatalf("history not printed:\n%s", text)
	}
}

func TestConsoleStopsOnCancelledContext(t *testing.T) {
	store := chatservice.NewStore()
	responder := &scriptedResponder{store: store}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := console.New(responder, store, "s", strings.NewReader("Hello\n"), &bytes.Buffer{}).Run(ctx); err != nil {
		t.Fatalf("Run err: %v", err)
	}
	if len(responder.inputs) != 0 {
		t.Fatal("no exchange expected after cancellation")
	}
}
