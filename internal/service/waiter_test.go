package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hourglass-bot/hourglass/internal/biz/domain"
)

func TestWaiter_DeliversMatchingReaction(t *testing.T) {
	w := NewReactionWaiter()
	wait := w.Register("msg-1", "⏰")
	defer wait.Close()

	w.Process(domain.Reaction{MessageID: "msg-1", UserID: "user-1", Emoji: "⏰"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r, err := wait.Next(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.UserID != "user-1" {
		t.Errorf("Expected user-1, got %q", r.UserID)
	}
}

func TestWaiter_DoesNotRetireOnMatch(t *testing.T) {
	w := NewReactionWaiter()
	wait := w.Register("msg-1", "⏰")
	defer wait.Close()

	w.Process(domain.Reaction{MessageID: "msg-1", UserID: "user-1", Emoji: "⏰"})
	w.Process(domain.Reaction{MessageID: "msg-1", UserID: "user-2", Emoji: "⏰"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first, err := wait.Next(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := wait.Next(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first.UserID != "user-1" || second.UserID != "user-2" {
		t.Errorf("Expected both reactions in order, got %q then %q", first.UserID, second.UserID)
	}
}

func TestWaiter_IgnoresOtherEmojiAndMessages(t *testing.T) {
	w := NewReactionWaiter()
	wait := w.Register("msg-1", "⏰")
	defer wait.Close()

	w.Process(domain.Reaction{MessageID: "msg-1", UserID: "user-1", Emoji: "👍"})
	w.Process(domain.Reaction{MessageID: "msg-2", UserID: "user-1", Emoji: "⏰"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := wait.Next(ctx); !errors.Is(err, domain.ErrTimedOut) {
		t.Fatalf("Expected ErrTimedOut, got %v", err)
	}
}

func TestWaiter_Timeout(t *testing.T) {
	w := NewReactionWaiter()
	wait := w.Register("msg-1", "⏰")
	defer wait.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := wait.Next(ctx)
	if !errors.Is(err, domain.ErrTimedOut) {
		t.Fatalf("Expected ErrTimedOut, got %v", err)
	}
}

func TestWaiter_IndependentMessages(t *testing.T) {
	w := NewReactionWaiter()
	wait1 := w.Register("msg-1", "⏰")
	defer wait1.Close()
	wait2 := w.Register("msg-2", "⏰")
	defer wait2.Close()

	w.Process(domain.Reaction{MessageID: "msg-2", UserID: "user-2", Emoji: "⏰"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r, err := wait2.Next(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.UserID != "user-2" {
		t.Errorf("Expected user-2, got %q", r.UserID)
	}

	shortCtx, shortCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer shortCancel()
	if _, err := wait1.Next(shortCtx); !errors.Is(err, domain.ErrTimedOut) {
		t.Errorf("Expected msg-1 wait untouched, got %v", err)
	}
}

func TestWaiter_CloseDeregisters(t *testing.T) {
	w := NewReactionWaiter()
	wait := w.Register("msg-1", "⏰")
	wait.Close()

	w.mu.Lock()
	remaining := len(w.waiters)
	w.mu.Unlock()
	if remaining != 0 {
		t.Errorf("Expected empty registry after Close, got %d entries", remaining)
	}
}
