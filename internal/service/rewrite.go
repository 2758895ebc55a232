package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/hourglass-bot/hourglass/internal/biz/domain"
	"github.com/hourglass-bot/hourglass/internal/biz/repo"
	"github.com/hourglass-bot/hourglass/internal/biz/usecase"
	"github.com/hourglass-bot/hourglass/internal/metrics"
)

// maxMessageLen is Discord's message content limit in characters.
const maxMessageLen = 2000

// RewriteConfig carries the orchestrator's tunables.
type RewriteConfig struct {
	// PromptEmoji is the confirmation prompt reaction.
	PromptEmoji string
	// UnknownTZEmoji is the reaction posted when the author has no stored
	// timezone.
	UnknownTZEmoji string
	// ConfirmTimeout bounds the confirmation wait.
	ConfirmTimeout time.Duration
}

// RewriteService runs the detection and confirmed-rewrite pipeline. One
// instance is shared by all handler goroutines; per-message state lives on
// the stack of HandleMessage.
type RewriteService struct {
	platform repo.PlatformRepo
	guilds   repo.GuildRepo
	usage    repo.UsageRepo
	timezone *usecase.TimezoneUsecase
	webhooks *WebhookManager
	waiter   *ReactionWaiter
	cfg      RewriteConfig
	log      zerolog.Logger
}

// NewRewriteService wires the pipeline's collaborators.
func NewRewriteService(
	platform repo.PlatformRepo,
	guilds repo.GuildRepo,
	usage repo.UsageRepo,
	timezone *usecase.TimezoneUsecase,
	webhooks *WebhookManager,
	waiter *ReactionWaiter,
	cfg RewriteConfig,
	log zerolog.Logger,
) *RewriteService {
	return &RewriteService{
		platform: platform,
		guilds:   guilds,
		usage:    usage,
		timezone: timezone,
		webhooks: webhooks,
		waiter:   waiter,
		cfg:      cfg,
		log:      log,
	}
}

// HandleMessage runs the full pipeline for one inbound message: scan,
// prompt, wait for the author's consent, then rewrite and repost under the
// author's identity. Reactions from other users get a private preview
// instead; an unanswered prompt is retracted when the deadline elapses.
func (s *RewriteService) HandleMessage(ctx context.Context, msg *domain.Message) error {
	if msg.Author.Bot || msg.GuildID == "" {
		return nil
	}

	enabled, err := s.guilds.ParsingEnabled(ctx, msg.GuildID)
	if err != nil {
		return fmt.Errorf("guild settings: %w", err)
	}
	if !enabled {
		return nil
	}

	tokens, err := domain.ScanTokens(msg.Content)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}
	metrics.MessagesMatched.Inc()

	// One timezone lookup per message, reused for every token.
	loc, err := s.timezone.Location(ctx, msg.Author.ID)
	var missing *domain.MissingTimezoneError
	if errors.As(err, &missing) {
		return s.platform.React(ctx, msg.ChannelID, msg.ID, s.cfg.UnknownTZEmoji)
	}
	if err != nil {
		return err
	}

	instants := make([]time.Time, len(tokens))
	for i, tok := range tokens {
		instant, err := s.timezone.Materialize(loc, tok.Hour, tok.Minute)
		if err != nil {
			var invalid *domain.InvalidLocalTimeError
			if errors.As(err, &invalid) {
				return s.platform.Reply(ctx, msg.ChannelID, msg.ID, fmt.Sprintf(
					"%02d:%02d doesn't happen exactly once in %s today, daylight saving is in the way",
					invalid.Hour, invalid.Minute, invalid.Zone))
			}
			return err
		}
		instants[i] = instant
	}

	content, err := domain.RewriteContent(msg.Content, tokens, instants)
	if err != nil {
		// Programming defect: abort this message without side effects.
		s.log.Error().Err(err).Str("message_id", msg.ID).Msg("rewrite content")
		return err
	}

	// Register before prompting so an instant reaction can't slip past.
	wait := s.waiter.Register(msg.ID, s.cfg.PromptEmoji)
	defer wait.Close()

	if err := s.platform.React(ctx, msg.ChannelID, msg.ID, s.cfg.PromptEmoji); err != nil {
		return fmt.Errorf("prompt reaction: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmTimeout)
	defer cancel()

	for {
		reaction, err := wait.Next(waitCtx)
		if errors.Is(err, domain.ErrTimedOut) {
			metrics.ConfirmTimeouts.Inc()
			return s.platform.Unreact(ctx, msg.ChannelID, msg.ID, s.cfg.PromptEmoji)
		}
		if err != nil {
			return err
		}

		if reaction.UserID == msg.Author.ID {
			return s.rewrite(ctx, msg, content)
		}
		// Someone else is curious: non-destructive preview, keep waiting
		// for the author up to the original deadline.
		s.sendPreview(ctx, msg, content, reaction.UserID)
	}
}

func (s *RewriteService) rewrite(ctx context.Context, msg *domain.Message, content string) error {
	if utf8.RuneCountInString(content) > maxMessageLen {
		return s.platform.Reply(ctx, msg.ChannelID, msg.ID,
			"the rewritten message wouldn't fit, it's right at the edge of the character limit")
	}

	channel, err := s.platform.Channel(ctx, msg.ChannelID)
	if err != nil {
		return fmt.Errorf("fetch channel: %w", err)
	}
	webhookChannelID := channel.ID
	threadID := ""
	if channel.IsThread {
		webhookChannelID = channel.ParentID
		threadID = msg.ChannelID
	}

	// Resolve the webhook before deleting anything so resource failures
	// stay non-destructive.
	webhook, err := s.webhooks.GetOrCreate(ctx, webhookChannelID)
	if err != nil {
		if errors.Is(err, domain.ErrWebhookUnusable) {
			return s.platform.Reply(ctx, msg.ChannelID, msg.ID,
				"i can't use any webhook in this channel, check my permissions and try again")
		}
		return err
	}

	if err := s.platform.DeleteMessage(ctx, msg.ChannelID, msg.ID); err != nil {
		return fmt.Errorf("delete original: %w", err)
	}

	post := &repo.WebhookPost{
		Content:   content,
		Username:  msg.Author.DisplayName(),
		AvatarURL: msg.Author.AvatarURL,
		ThreadID:  threadID,
	}
	if err := s.platform.ExecuteWebhook(ctx, webhook, post); err != nil {
		// The original is already gone; escalate.
		lossErr := &domain.ContentLossError{Err: err}
		s.log.Error().Err(lossErr).
			Str("message_id", msg.ID).
			Str("channel_id", msg.ChannelID).
			Msg("repost failed after delete")
		return lossErr
	}

	metrics.Conversions.Inc()
	metrics.Usage.WithLabelValues(string(repo.UsageConversion)).Inc()
	if err := s.usage.Record(ctx, repo.UsageConversion); err != nil {
		s.log.Warn().Err(err).Msg("record usage")
	}
	return nil
}

func (s *RewriteService) sendPreview(ctx context.Context, msg *domain.Message, content, userID string) {
	preview := &repo.Preview{
		AuthorName: msg.Author.DisplayName(),
		AvatarURL:  msg.Author.AvatarURL,
		Content:    content,
	}
	if err := s.platform.SendDirectPreview(ctx, userID, preview); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("send preview")
		return
	}
	metrics.Previews.Inc()
}
