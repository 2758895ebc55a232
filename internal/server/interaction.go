package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/hourglass-bot/hourglass/internal/biz/domain"
	"github.com/hourglass-bot/hourglass/internal/biz/repo"
	"github.com/hourglass-bot/hourglass/internal/biz/usecase"
	"github.com/hourglass-bot/hourglass/internal/metrics"
)

const (
	cmdTimezone    = "timezone"
	cmdToggle      = "toggle-auto-conversion"
	cmdCurrentTime = "current time"
	cmdHelp        = "help"
)

const helpText = "i convert times in your messages to everyone's own timezone. " +
	"set yours with /timezone (an IANA name like America/Chicago or Europe/Berlin), " +
	"then write a time like \"5pm\" or \"14:00\" and press the ⏰ reaction to confirm the rewrite. " +
	"server managers can turn the whole thing off with /toggle-auto-conversion."

// commandHandler implements the settings and lookup commands around the
// rewrite pipeline.
type commandHandler struct {
	timezone *usecase.TimezoneUsecase
	guilds   repo.GuildRepo
	usage    repo.UsageRepo
	log      zerolog.Logger
}

func newCommandHandler(timezone *usecase.TimezoneUsecase, guilds repo.GuildRepo, usage repo.UsageRepo, log zerolog.Logger) *commandHandler {
	return &commandHandler{timezone: timezone, guilds: guilds, usage: usage, log: log}
}

// register registers the global application commands.
func (h *commandHandler) register(s *discordgo.Session) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        cmdTimezone,
			Description: "set your timezone so your times can be converted",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "zone",
				Description: "IANA timezone name, like America/Chicago",
				Required:    true,
			}},
		},
		{
			Name:        cmdToggle,
			Description: "enable or disable auto-conversion in this server",
		},
		{
			Name: cmdCurrentTime,
			Type: discordgo.UserApplicationCommand,
		},
		{
			Name:        cmdHelp,
			Description: "how to use the bot",
		},
	}

	for _, cmd := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", cmd); err != nil {
			return fmt.Errorf("create command %q: %w", cmd.Name, err)
		}
	}
	return nil
}

// handle dispatches one interaction and replies ephemerally.
func (h *commandHandler) handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	ctx := context.Background()

	var reply string
	var kind repo.UsageKind
	switch data.Name {
	case cmdTimezone:
		reply, kind = h.handleTimezone(ctx, i, data)
	case cmdToggle:
		reply, kind = h.handleToggle(ctx, i)
	case cmdCurrentTime:
		reply, kind = h.handleCurrentTime(ctx, data)
	case cmdHelp:
		reply, kind = helpText, repo.UsageHelp
	default:
		h.log.Warn().Str("command", data.Name).Msg("unknown command")
		return
	}

	if kind != "" {
		metrics.Usage.WithLabelValues(string(kind)).Inc()
		if err := h.usage.Record(ctx, kind); err != nil {
			h.log.Warn().Err(err).Msg("record usage")
		}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.log.Error().Err(err).Str("command", data.Name).Msg("respond to interaction")
	}
}

func (h *commandHandler) handleTimezone(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) (string, repo.UsageKind) {
	zone := data.Options[0].StringValue()
	userID := interactionUserID(i)
	if userID == "" {
		return "i couldn't tell who you are, sorry", ""
	}

	if err := h.timezone.Set(ctx, userID, zone); err != nil {
		var bad *domain.BadTimezoneError
		if errors.As(err, &bad) {
			return fmt.Sprintf("i looked and looked but couldn't find %q anywhere, try the exact IANA name like Europe/Berlin", zone), ""
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("set timezone")
		return "something went wrong saving that, try again in a bit", ""
	}
	return fmt.Sprintf("done! your times are now shared in %s", zone), repo.UsageTimezone
}

func (h *commandHandler) handleToggle(ctx context.Context, i *discordgo.InteractionCreate) (string, repo.UsageKind) {
	if i.GuildID == "" || i.Member == nil {
		return "this only works in a server", ""
	}
	if i.Member.Permissions&discordgo.PermissionManageServer == 0 {
		return "you need the manage server permission to use this", ""
	}

	enabled, err := h.guilds.ToggleParsing(ctx, i.GuildID)
	if err != nil {
		h.log.Error().Err(err).Str("guild_id", i.GuildID).Msg("toggle parsing")
		return "something went wrong flipping that, try again in a bit", ""
	}
	if enabled {
		return "auto-conversion is back on", repo.UsageToggle
	}
	return "auto-conversion is off for this server", repo.UsageToggle
}

func (h *commandHandler) handleCurrentTime(ctx context.Context, data discordgo.ApplicationCommandInteractionData) (string, repo.UsageKind) {
	now, err := h.timezone.CurrentTime(ctx, data.TargetID)
	var missing *domain.MissingTimezoneError
	if errors.As(err, &missing) {
		return "they haven't told me their timezone yet", ""
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", data.TargetID).Msg("current time")
		return "something went wrong looking that up, try again in a bit", ""
	}
	return now.Format("Monday, January 2, 3:04 PM"), repo.UsageCurrentTime
}

// interactionUserID resolves the invoking user in both guild and DM
// interactions.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
