package server

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/hourglass-bot/hourglass/internal/biz/domain"
	"github.com/hourglass-bot/hourglass/internal/biz/repo"
	"github.com/hourglass-bot/hourglass/internal/biz/usecase"
	"github.com/hourglass-bot/hourglass/internal/metrics"
	"github.com/hourglass-bot/hourglass/internal/service"
)

// guildCountInterval is how often the guild-count gauge is refreshed.
const guildCountInterval = time.Minute

// gatewayIntents covers guild lifecycle, messages with content, and
// reactions. Without the guilds intent the state's guild list goes stale
// after Ready.
const gatewayIntents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentMessageContent

// DiscordServer subscribes to gateway events and dispatches each one to an
// independent goroutine. Events for different messages never block each
// other.
type DiscordServer struct {
	session  *discordgo.Session
	rewrite  *service.RewriteService
	waiter   *service.ReactionWaiter
	webhooks *service.WebhookManager
	commands *commandHandler
	log      zerolog.Logger

	stopCh chan struct{}
}

// NewDiscordServer creates a Discord gateway server.
func NewDiscordServer(
	session *discordgo.Session,
	rewrite *service.RewriteService,
	waiter *service.ReactionWaiter,
	webhooks *service.WebhookManager,
	timezone *usecase.TimezoneUsecase,
	guilds repo.GuildRepo,
	usage repo.UsageRepo,
	log zerolog.Logger,
) *DiscordServer {
	return &DiscordServer{
		session:  session,
		rewrite:  rewrite,
		waiter:   waiter,
		webhooks: webhooks,
		commands: newCommandHandler(timezone, guilds, usage, log),
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start registers handlers, opens the gateway connection, and registers the
// application commands.
func (s *DiscordServer) Start() error {
	s.session.Identify.Intents = gatewayIntents

	s.session.AddHandler(s.onMessageCreate)
	s.session.AddHandler(s.onReactionAdd)
	s.session.AddHandler(s.onWebhooksUpdate)
	s.session.AddHandler(s.onInteractionCreate)

	if err := s.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	if err := s.commands.register(s.session); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	go s.pollGuildCount()
	return nil
}

// Stop closes the gateway connection.
func (s *DiscordServer) Stop() {
	close(s.stopCh)
	if err := s.session.Close(); err != nil {
		s.log.Warn().Err(err).Msg("close session")
	}
}

func (s *DiscordServer) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.session.State.User.ID {
		return
	}

	msg := toDomainMessage(m)
	go func() {
		if err := s.rewrite.HandleMessage(context.Background(), msg); err != nil {
			s.log.Error().Err(err).
				Str("message_id", msg.ID).
				Str("channel_id", msg.ChannelID).
				Msg("handle message")
		}
	}()
}

func (s *DiscordServer) onReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	// The bot's own prompt reaction comes back as an event too.
	if r.UserID == s.session.State.User.ID {
		return
	}
	s.waiter.Process(domain.Reaction{
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		UserID:    r.UserID,
		Emoji:     r.Emoji.APIName(),
	})
}

func (s *DiscordServer) onWebhooksUpdate(_ *discordgo.Session, w *discordgo.WebhooksUpdate) {
	go func() {
		if err := s.webhooks.Invalidate(context.Background(), w.ChannelID); err != nil {
			s.log.Warn().Err(err).Str("channel_id", w.ChannelID).Msg("invalidate webhook cache")
		}
	}()
}

func (s *DiscordServer) onInteractionCreate(sess *discordgo.Session, i *discordgo.InteractionCreate) {
	go s.commands.handle(sess, i)
}

func (s *DiscordServer) pollGuildCount() {
	ticker := time.NewTicker(guildCountInterval)
	defer ticker.Stop()
	for {
		metrics.GuildCount.Set(float64(s.guildCount()))
		select {
		case <-ticker.C:
		case <-s.stopCh:
			return
		}
	}
}

// guildCount reads the gateway state under its lock; the gateway goroutine
// mutates the guild list concurrently.
func (s *DiscordServer) guildCount() int {
	s.session.State.RLock()
	defer s.session.State.RUnlock()
	return len(s.session.State.Guilds)
}

// toDomainMessage converts a gateway message, resolving the avatar fallback
// chain: guild member avatar, then user avatar, then the default scheme.
func toDomainMessage(m *discordgo.MessageCreate) *domain.Message {
	author := domain.Author{
		ID:        m.Author.ID,
		Name:      m.Author.Username,
		Bot:       m.Author.Bot,
		AvatarURL: m.Author.AvatarURL(""),
	}
	if m.Member != nil {
		author.Nick = m.Member.Nick
		if m.Member.Avatar != "" && m.GuildID != "" {
			author.AvatarURL = discordgo.EndpointGuildMemberAvatar(m.GuildID, m.Author.ID, m.Member.Avatar)
		}
	}

	return &domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Author:    author,
		Content:   m.Content,
	}
}
