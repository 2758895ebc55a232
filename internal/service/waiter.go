package service

import (
	"context"
	"sync"

	"github.com/hourglass-bot/hourglass/internal/biz/domain"
)

// ReactionWaiter correlates reaction-add events with pending confirmation
// waits, keyed by message id and emoji. Waits on different messages are
// independent; the registry map is the only shared state.
type ReactionWaiter struct {
	mu      sync.Mutex
	waiters map[string][]*Wait
}

// NewReactionWaiter creates an empty waiter registry.
func NewReactionWaiter() *ReactionWaiter {
	return &ReactionWaiter{waiters: make(map[string][]*Wait)}
}

// Wait is one registered confirmation wait.
type Wait struct {
	owner     *ReactionWaiter
	messageID string
	emoji     string
	ch        chan domain.Reaction
}

// Register starts collecting reactions with the given emoji on the message.
// The registration stays live until Close, so repeated reactions are all
// delivered; a matching event never retires the wait.
func (w *ReactionWaiter) Register(messageID, emoji string) *Wait {
	wait := &Wait{
		owner:     w,
		messageID: messageID,
		emoji:     emoji,
		ch:        make(chan domain.Reaction, 8),
	}
	w.mu.Lock()
	w.waiters[messageID] = append(w.waiters[messageID], wait)
	w.mu.Unlock()
	return wait
}

// Process fans a reaction event out to matching waits. Events with a
// different emoji are ignored; events beyond a wait's buffer are dropped
// rather than blocking the dispatcher.
func (w *ReactionWaiter) Process(r domain.Reaction) {
	w.mu.Lock()
	waits := append([]*Wait(nil), w.waiters[r.MessageID]...)
	w.mu.Unlock()

	for _, wait := range waits {
		if wait.emoji != r.Emoji {
			continue
		}
		select {
		case wait.ch <- r:
		default:
		}
	}
}

// Next blocks until the next matching reaction or the context deadline,
// returning domain.ErrTimedOut on expiry.
func (wt *Wait) Next(ctx context.Context) (domain.Reaction, error) {
	select {
	case r := <-wt.ch:
		return r, nil
	case <-ctx.Done():
		return domain.Reaction{}, domain.ErrTimedOut
	}
}

// Close deregisters the wait.
func (wt *Wait) Close() {
	wt.owner.mu.Lock()
	defer wt.owner.mu.Unlock()

	waits := wt.owner.waiters[wt.messageID]
	for i, w := range waits {
		if w == wt {
			waits = append(waits[:i], waits[i+1:]...)
			break
		}
	}
	if len(waits) == 0 {
		delete(wt.owner.waiters, wt.messageID)
	} else {
		wt.owner.waiters[wt.messageID] = waits
	}
}
