package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hourglass-bot/hourglass/internal/biz/domain"
	"github.com/hourglass-bot/hourglass/internal/biz/repo"
)

// webhookName is the name given to webhooks the bot creates.
const webhookName = "hourglass"

// WebhookManager caches one usable webhook per channel for the process
// lifetime. Lookups are concurrent; creation is serialized per channel key
// so two messages racing on a previously-unseen channel produce a single
// webhook.
type WebhookManager struct {
	platform repo.PlatformRepo

	mu    sync.RWMutex
	cache map[string]*domain.Webhook

	creating singleflight.Group
}

// NewWebhookManager creates an empty webhook cache.
func NewWebhookManager(platform repo.PlatformRepo) *WebhookManager {
	return &WebhookManager{
		platform: platform,
		cache:    make(map[string]*domain.Webhook),
	}
}

// GetOrCreate returns the channel's cached webhook. On a miss it reuses the
// first existing channel webhook that exposes a token, creating one when
// none does. For threads, callers pass the parent channel id; webhooks are
// never created per thread.
func (m *WebhookManager) GetOrCreate(ctx context.Context, channelID string) (*domain.Webhook, error) {
	m.mu.RLock()
	cached := m.cache[channelID]
	m.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := m.creating.Do(channelID, func() (any, error) {
		// A racing caller may have filled the cache while this one waited
		// on the flight.
		m.mu.RLock()
		cached := m.cache[channelID]
		m.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		webhook, err := m.fetchOrCreate(ctx, channelID)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.cache[channelID] = webhook
		m.mu.Unlock()
		return webhook, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Webhook), nil
}

func (m *WebhookManager) fetchOrCreate(ctx context.Context, channelID string) (*domain.Webhook, error) {
	webhooks, err := m.platform.ChannelWebhooks(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	for i := range webhooks {
		if webhooks[i].Token != "" {
			return &webhooks[i], nil
		}
	}

	webhook, err := m.platform.CreateWebhook(ctx, channelID, webhookName)
	if err != nil {
		return nil, fmt.Errorf("create webhook: %w", err)
	}
	if webhook.Token == "" {
		return nil, domain.ErrWebhookUnusable
	}
	return webhook, nil
}

// Invalidate re-probes the channel after an external webhooks update and
// evicts the cached entry when the platform no longer recognizes it. A
// later rewrite recreates the webhook on demand.
func (m *WebhookManager) Invalidate(ctx context.Context, channelID string) error {
	m.mu.RLock()
	cached := m.cache[channelID]
	m.mu.RUnlock()
	if cached == nil {
		return nil
	}

	webhooks, err := m.platform.ChannelWebhooks(ctx, channelID)
	if err != nil {
		return fmt.Errorf("list webhooks: %w", err)
	}
	for _, w := range webhooks {
		if w.ID == cached.ID {
			return nil
		}
	}

	m.mu.Lock()
	if m.cache[channelID] == cached {
		delete(m.cache, channelID)
	}
	m.mu.Unlock()
	return nil
}
