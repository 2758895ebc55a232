package main

import (
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hourglass-bot/hourglass/internal/biz/usecase"
	"github.com/hourglass-bot/hourglass/internal/conf"
	"github.com/hourglass-bot/hourglass/internal/data"
	"github.com/hourglass-bot/hourglass/internal/metrics"
	"github.com/hourglass-bot/hourglass/internal/server"
	"github.com/hourglass-bot/hourglass/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if cfg.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	// Initialize storage
	repos, err := data.NewRepositories(cfg.Store.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer repos.Close()
	log.Info().Str("path", cfg.Store.DBPath).Msg("store ready")

	// Initialize Discord session
	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create discord session")
	}
	platform := data.NewDiscordRepo(session)

	// Initialize pipeline components
	timezoneUC := usecase.NewTimezoneUsecase(repos.Timezone)
	waiter := service.NewReactionWaiter()
	webhooks := service.NewWebhookManager(platform)
	rewriteSvc := service.NewRewriteService(
		platform,
		repos.Guild,
		repos.Usage,
		timezoneUC,
		webhooks,
		waiter,
		service.RewriteConfig{
			PromptEmoji:    cfg.Rewrite.PromptEmoji,
			UnknownTZEmoji: cfg.Rewrite.UnknownTZEmoji,
			ConfirmTimeout: cfg.Rewrite.ConfirmTimeout,
		},
		log.With().Str("component", "rewrite").Logger(),
	)

	srv := server.NewDiscordServer(
		session,
		rewriteSvc,
		waiter,
		webhooks,
		timezoneUC,
		repos.Guild,
		repos.Usage,
		log.With().Str("component", "server").Logger(),
	)

	// Metrics listener
	go func() {
		if err := metrics.Serve(cfg.Metrics.Addr); err != nil {
			log.Error().Err(err).Msg("metrics server")
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
	log.Info().Msg("hourglass is running, press ctrl+c to exit")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	srv.Stop()
}
