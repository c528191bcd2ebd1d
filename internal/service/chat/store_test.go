package chat_test

import (
	"context"
	"reflect"
	"sync"
	"testing"

	model "github.com/zhouzirui/proposal-agent/backend/internal/model/chat"
	chat "github.com/zhouzirui/proposal-agent/backend/internal/service/chat"
)

func TestStoreGetUnknownSessionIsEmpty(t *testing.T) {
	store := chat.NewStore()

	turns := store.Get(context.Background(), "missing")
	if turns == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(turns) != 0 {
		t.Fatalf("expected no turns, got %d", len(turns))
	}
	if _, ok := store.Session(context.Background(), "missing"); ok {
		t.Fatal("Get must not create a session")
	}
}

func TestStoreAppendPreservesOrder(t *testing.T) {
	store := chat.NewStore()
	ctx := context.Background()

	store.Append(ctx, "default_session", model.UserTurn("Hello"))
	store.Append(ctx, "default_session", model.AssistantTurn("Hi, tell me about your company."))
	store.Append(ctx, "default_session", model.UserTurn("We are Acme Corp"))

	turns := store.Get(ctx, "default_session")
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}

	want := []struct {
		role model.Role
		text string
	}{
		{model.RoleUser, "Hello"},
		{model.RoleAssistant, "Hi, tell me about your company."},
		{model.RoleUser, "We are Acme Corp"},
	}
	for i, w := range want {
		if turns[i].Role != w.role || turns[i].Text != w.text {
			t.Fatalf("turn %d: got %s:%q want %s:%q", i, turns[i].Role, turns[i].Text, w.role, w.text)
		}
		if turns[i].ID == "" {
			t.Fatalf("turn %d: expected generated id", i)
		}
		if turns[i].CreatedAt.IsZero() {
			t.Fatalf("turn %d: expected timestamp", i)
		}
	}
}

func TestStoreAppendCreatesSession(t *testing.T) {
	store := chat.NewStore()
	ctx := context.Background()

	store.Append(ctx, "s1", model.UserTurn("hi"))

	session, ok := store.Session(ctx, "s1")
	if !ok {
		t.Fatal("expected session to exist after append")
	}
	if session.ID != "s1" {
		t.Fatalf("unexpected session id: %s", session.ID)
	}
}

func TestStoreGetIsIdempotent(t *testing.T) {
	store := chat.NewStore()
	ctx := context.Background()
	store.Append(ctx, "s1", model.UserTurn("a"))
	store.Append(ctx, "s1", model.AssistantTurn("b"))

	first := store.Get(ctx, "s1")
	second := store.Get(ctx, "s1")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("consecutive reads differ: %v vs %v", first, second)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := chat.NewStore()
	ctx := context.Background()
	store.Append(ctx, "s1", model.UserTurn("original"))

	turns := store.Get(ctx, "s1")
	turns[0].Text = "mutated"

	if got := store.Get(ctx, "s1")[0].Text; got != "original" {
		t.Fatalf("store history was mutated through returned slice: %q", got)
	}
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	store := chat.NewStore()
	ctx := context.Background()
	store.Append(ctx, "a", model.UserTurn("for a"))
	store.Append(ctx, "b", model.UserTurn("for b"))

	if got := store.Get(ctx, "a"); len(got) != 1 || got[0].Text != "for a" {
		t.Fatalf("unexpected history for a: %v", got)
	}
	if got := store.Get(ctx, "b"); len(got) != 1 || got[0].Text != "for b" {
		t.Fatalf("unexpected history for b: %v", got)
	}
}

func TestStoreCreateSession(t *testing.T) {
	store := chat.NewStore()
	ctx := context.Background()

	first := store.CreateSession(ctx)
	second := store.CreateSession(ctx)
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", first.ID, second.ID)
	}
	if _, ok := store.Session(ctx, first.ID); !ok {
		t.Fatal("created session not found")
	}
	if got := store.Get(ctx, first.ID); len(got) != 0 {
		t.Fatalf("new session should be empty, got %d turns", len(got))
	}
}

func TestStoreConcurrentSessions(t *testing.T) {
	store := chat.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				store.Append(ctx, id, model.UserTurn(id))
				_ = store.Get(ctx, id)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range []string{"a", "b", "c", "d"} {
		if got := len(store.Get(ctx, id)); got != 50 {
			t.Fatalf("session %s: expected 50 turns, got %d", id, got)
		}
	}
}
