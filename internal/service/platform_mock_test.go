package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/hourglass-bot/hourglass/internal/biz/domain"
	"github.com/hourglass-bot/hourglass/internal/biz/repo"
)

// mockPlatform records every platform call for assertions. Safe for
// concurrent use.
type mockPlatform struct {
	mu sync.Mutex

	reactions  []domain.Reaction // bot reactions added, UserID left empty
	unreacted  []domain.Reaction
	replies    []string
	deleted    []string
	executed   []repo.WebhookPost
	previews   map[string]*repo.Preview // keyed by recipient user id
	channels   map[string]*domain.Channel
	webhooks   map[string][]domain.Webhook // per channel
	created    map[string]int              // CreateWebhook calls per channel
	createdTok string                      // token given to created webhooks

	deleteErr  error
	executeErr error
}

func newMockPlatform() *mockPlatform {
	return &mockPlatform{
		previews:   make(map[string]*repo.Preview),
		channels:   make(map[string]*domain.Channel),
		webhooks:   make(map[string][]domain.Webhook),
		created:    make(map[string]int),
		createdTok: "token",
	}
}

func (m *mockPlatform) React(ctx context.Context, channelID, messageID, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactions = append(m.reactions, domain.Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	return nil
}

func (m *mockPlatform) Unreact(ctx context.Context, channelID, messageID, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unreacted = append(m.unreacted, domain.Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	return nil
}

func (m *mockPlatform) Reply(ctx context.Context, channelID, messageID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, content)
	return nil
}

func (m *mockPlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *mockPlatform) Channel(ctx context.Context, channelID string) (*domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[channelID]; ok {
		return ch, nil
	}
	return &domain.Channel{ID: channelID}, nil
}

func (m *mockPlatform) ChannelWebhooks(ctx context.Context, channelID string) ([]domain.Webhook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Webhook(nil), m.webhooks[channelID]...), nil
}

func (m *mockPlatform) CreateWebhook(ctx context.Context, channelID, name string) (*domain.Webhook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created[channelID]++
	webhook := domain.Webhook{
		ID:        fmt.Sprintf("wh-%s-%d", channelID, m.created[channelID]),
		Token:     m.createdTok,
		ChannelID: channelID,
	}
	m.webhooks[channelID] = append(m.webhooks[channelID], webhook)
	return &webhook, nil
}

func (m *mockPlatform) ExecuteWebhook(ctx context.Context, webhook *domain.Webhook, post *repo.WebhookPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.executeErr != nil {
		return m.executeErr
	}
	m.executed = append(m.executed, *post)
	return nil
}

func (m *mockPlatform) SendDirectPreview(ctx context.Context, userID string, preview *repo.Preview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previews[userID] = preview
	return nil
}

func (m *mockPlatform) reactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reactions)
}

func (m *mockPlatform) deletedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deleted)
}

func (m *mockPlatform) previewFor(userID string) *repo.Preview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previews[userID]
}
