package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"travis-bott/api"
	"travis-bott/cogs"
	"travis-bott/config"
	"travis-bott/fun"
	"travis-bott/gateway"
	"travis-bott/store"
	"travis-bott/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("travis-bott exited")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "travis-bott",
		Short:         "travis-bott - a Discord fun bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config", "directory containing config.yaml")

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the cookie leaderboard schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), cfg)
		},
	})

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return nil, err
	}
	setupLogging(cfg.Log)
	return cfg, nil
}

func setupLogging(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func migrate(ctx context.Context, cfg *config.Config) error {
	db, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open score store")
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to run migrations")
		return err
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("Migrations applied")
	return nil
}

func run(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	status := newBotStatus()
	health := &healthServer{port: cfg.Health.Port, status: status}
	go health.start()
	defer health.shutdown()

	if err := cfg.Validate(); err != nil {
		status.set("no_token")
		log.Error().Err(err).Msg("Invalid configuration")
		return err
	}

	db, err := store.Open(ctx, cfg.Database)
	if err != nil {
		status.set("error")
		log.Error().Err(err).Msg("Failed to open score store")
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		status.set("error")
		log.Error().Err(err).Msg("Failed to run migrations")
		return err
	}
	health.setPing(db.Ping)
	log.Info().Str("driver", cfg.Database.Driver).Msg("Score store ready")

	catalog, err := fun.LoadCatalog()
	if err != nil {
		return err
	}

	utils.InitializeNameCache(10 * time.Minute)
	defer utils.CloseNameCache()
	utils.InitializeSessionManager(30 * time.Minute)

	dispatcher := gateway.NewDispatcher()
	cogs.Setup(&cogs.Deps{
		Config:     cfg,
		Store:      db,
		API:        api.NewClient(cfg.API.Timeout, cfg.API.UserAgent, api.DefaultEndpoints),
		Chatbot:    api.NewChatbot(cfg.API.Timeout, cfg.API.ChatbotURL, cfg.API.ChatbotKey),
		Dispatcher: dispatcher,
		Rater:      fun.NewRater(cfg.Bot.OwnerIDs...),
		Oracle:     fun.NewOracle(catalog.EightBall),
		Catalog:    catalog,
	})

	session, err := discordgo.New("Bot " + cfg.Bot.Token)
	if err != nil {
		status.set("error")
		log.Error().Err(err).Msg("Failed to create Discord session")
		return err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	session.AddHandler(func(s *discordgo.Session, event *discordgo.Ready) {
		onReady(s, event, cfg.Bot.GuildID)
	})
	session.AddHandler(onInteractionCreate)
	session.AddHandler(dispatcher.OnReactionAdd)
	session.AddHandler(dispatcher.OnMessageCreate)

	if err := session.Open(); err != nil {
		status.set("connection_failed")
		log.Error().Err(err).Msg("Failed to open Discord connection")
		return err
	}
	defer session.Close()

	log.Info().Msg("Bot is now running. Press CTRL+C to exit.")
	status.set("running")

	<-ctx.Done()

	log.Info().Msg("Gracefully shutting down...")
	status.set("shutting_down")

	dispatcher.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := utils.Sessions.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Sessions did not finish before shutdown")
	}
	return nil
}

func onReady(s *discordgo.Session, event *discordgo.Ready, guildID string) {
	log.Info().
		Str("user", fmt.Sprintf("%s#%s", event.User.Username, event.User.Discriminator)).
		Int("guilds", len(event.Guilds)).
		Msg("Logged in")

	if err := s.UpdateGameStatus(0, "/help"); err != nil {
		log.Warn().Err(err).Msg("Failed to update status")
	}

	if err := cogs.RegisterCommands(s, guildID); err != nil {
		log.Error().Err(err).Msg("Failed to register slash commands")
		return
	}
	log.Info().Int("commands", len(cogs.Commands())).Msg("Slash commands registered")
}

func onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	cogs.HandleCommand(s, i)
}
