package repo

import (
	"context"

	"github.com/hourglass-bot/hourglass/internal/biz/domain"
)

// WebhookPost is a message published through a channel webhook under an
// impersonated identity. ThreadID is set when the target is a thread; the
// webhook itself always belongs to the parent channel.
type WebhookPost struct {
	Content   string
	Username  string
	AvatarURL string
	ThreadID  string
}

// Preview is the private would-be rewrite shown to a non-author reactor.
type Preview struct {
	AuthorName string
	AvatarURL  string
	Content    string
}

// PlatformRepo is the slice of the platform's message API the pipeline
// drives. Failures are terminal for the current message; retry policy
// belongs to the platform client, not this core.
type PlatformRepo interface {
	// React adds the bot's own reaction to a message.
	React(ctx context.Context, channelID, messageID, emoji string) error

	// Unreact retracts the bot's own reaction from a message.
	Unreact(ctx context.Context, channelID, messageID, emoji string) error

	// Reply posts a message replying to the given message.
	Reply(ctx context.Context, channelID, messageID, content string) error

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// Channel fetches a channel, resolving thread parent relations.
	Channel(ctx context.Context, channelID string) (*domain.Channel, error)

	// ChannelWebhooks lists the webhooks owned by a channel.
	ChannelWebhooks(ctx context.Context, channelID string) ([]domain.Webhook, error)

	// CreateWebhook creates a webhook in a channel.
	CreateWebhook(ctx context.Context, channelID, name string) (*domain.Webhook, error)

	// ExecuteWebhook publishes a post through a webhook.
	ExecuteWebhook(ctx context.Context, webhook *domain.Webhook, post *WebhookPost) error

	// SendDirectPreview sends a private preview embed to a user.
	SendDirectPreview(ctx context.Context, userID string, preview *Preview) error
}
