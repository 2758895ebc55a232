package data

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/hourglass-bot/hourglass/internal/biz/domain"
	"github.com/hourglass-bot/hourglass/internal/biz/repo"
)

// discordRepo implements the platform repository over the Discord REST API.
type discordRepo struct {
	session *discordgo.Session
}

// NewDiscordRepo creates a platform repository driving the given session.
func NewDiscordRepo(session *discordgo.Session) repo.PlatformRepo {
	return &discordRepo{session: session}
}

func (r *discordRepo) React(ctx context.Context, channelID, messageID, emoji string) error {
	if err := r.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}

func (r *discordRepo) Unreact(ctx context.Context, channelID, messageID, emoji string) error {
	if err := r.session.MessageReactionRemove(channelID, messageID, emoji, "@me", discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	return nil
}

func (r *discordRepo) Reply(ctx context.Context, channelID, messageID, content string) error {
	_, err := r.session.ChannelMessageSendReply(channelID, content, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (r *discordRepo) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := r.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (r *discordRepo) Channel(ctx context.Context, channelID string) (*domain.Channel, error) {
	channel, err := r.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel: %w", err)
	}
	return &domain.Channel{
		ID:       channel.ID,
		ParentID: channel.ParentID,
		IsThread: channel.IsThread(),
	}, nil
}

func (r *discordRepo) ChannelWebhooks(ctx context.Context, channelID string) ([]domain.Webhook, error) {
	webhooks, err := r.session.ChannelWebhooks(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}

	out := make([]domain.Webhook, 0, len(webhooks))
	for _, w := range webhooks {
		out = append(out, domain.Webhook{ID: w.ID, Token: w.Token, ChannelID: w.ChannelID})
	}
	return out, nil
}

func (r *discordRepo) CreateWebhook(ctx context.Context, channelID, name string) (*domain.Webhook, error) {
	webhook, err := r.session.WebhookCreate(channelID, name, "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}
	return &domain.Webhook{ID: webhook.ID, Token: webhook.Token, ChannelID: webhook.ChannelID}, nil
}

func (r *discordRepo) ExecuteWebhook(ctx context.Context, webhook *domain.Webhook, post *repo.WebhookPost) error {
	params := &discordgo.WebhookParams{
		Content:   post.Content,
		Username:  post.Username,
		AvatarURL: post.AvatarURL,
	}

	var err error
	if post.ThreadID != "" {
		_, err = r.session.WebhookThreadExecute(webhook.ID, webhook.Token, false, post.ThreadID, params, discordgo.WithContext(ctx))
	} else {
		_, err = r.session.WebhookExecute(webhook.ID, webhook.Token, false, params, discordgo.WithContext(ctx))
	}
	if err != nil {
		return fmt.Errorf("failed to execute webhook: %w", err)
	}
	return nil
}

func (r *discordRepo) SendDirectPreview(ctx context.Context, userID string, preview *repo.Preview) error {
	dm, err := r.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open dm channel: %w", err)
	}

	_, err = r.session.ChannelMessageSendEmbed(dm.ID, &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    preview.AuthorName,
			IconURL: preview.AvatarURL,
		},
		Description: preview.Content,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send preview: %w", err)
	}
	return nil
}
