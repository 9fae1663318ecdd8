package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/jonny/helpdesk-bot/internal/adapter/inbound/discordbot"
	"github.com/jonny/helpdesk-bot/internal/adapter/inbound/opsapi"
	"github.com/jonny/helpdesk-bot/internal/adapter/inbound/webhook"
	"github.com/jonny/helpdesk-bot/internal/adapter/inbound/webhook/middleware"
	"github.com/jonny/helpdesk-bot/internal/adapter/outbound/discord"
	"github.com/jonny/helpdesk-bot/internal/adapter/outbound/notification"
	slackmirror "github.com/jonny/helpdesk-bot/internal/adapter/outbound/notification/slack"
	"github.com/jonny/helpdesk-bot/internal/adapter/outbound/persistence/sqlite"
	"github.com/jonny/helpdesk-bot/internal/config"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
	"github.com/jonny/helpdesk-bot/internal/domain/service"
	"github.com/jonny/helpdesk-bot/pkg/health"
	"github.com/jonny/helpdesk-bot/pkg/version"
)

func main() {
	configPath := pflag.StringP("config", "c", "configs/config.yaml", "path to config file (empty for environment only)")
	printVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *printVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = buildLogger(cfg.Logging)

	if err := run(cfg, logger); err != nil {
		logger.Error("helpdesk-bot exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("helpdesk-bot stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// --- Audit sinks ---
	sinks := []outbound.AuditSink{notification.NewLogSink(logger)}

	var auditRepo outbound.AuditRepository
	var sqliteRepo *sqlite.AuditRepo
	var store *sqlite.Store
	if cfg.Audit.SQLite.Enabled {
		var err error
		store, err = sqlite.NewStore(sqlite.Config{
			Path:              cfg.Audit.SQLite.Path,
			MaxOpenConns:      cfg.Audit.SQLite.MaxOpenConns,
			PragmaJournalMode: cfg.Audit.SQLite.PragmaJournalMode,
			PragmaBusyTimeout: cfg.Audit.SQLite.PragmaBusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		defer store.Close()
		sqliteRepo = sqlite.NewAuditRepo(store)
		auditRepo = sqliteRepo
		sinks = append(sinks, sqliteRepo)
	}

	if cfg.Audit.Slack.Enabled() {
		mirror, err := slackmirror.NewMirror(slackmirror.Config{
			WebhookURL: cfg.Audit.Slack.WebhookURL,
			BotToken:   cfg.Audit.Slack.BotToken,
			Channel:    cfg.Audit.Slack.Channel,
			EventTypes: cfg.Audit.Slack.EventTypes,
		})
		if err != nil {
			return fmt.Errorf("creating slack mirror: %w", err)
		}
		sinks = append(sinks, mirror)
	}

	audit := service.NewAuditDispatcher(cfg.Audit.DispatchTimeout, logger, sinks...)

	// --- Discord ---
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("creating discord session: %w", err)
	}
	session.UserAgent = version.UserAgent()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	me, err := session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("fetching bot user: %w", err)
	}

	platform := discord.NewPlatform(session, me.ID, logger)

	// --- Domain services ---
	router := service.NewRouter(service.RouterConfig{
		WizardTimeout:     cfg.Sessions.WizardTimeout,
		PaginationTimeout: cfg.Sessions.PaginationTimeout,
		HelpPageSize:      cfg.Sessions.HelpPageSize,
		EffectTimeout:     cfg.Sessions.EffectTimeout,
		TicketPrefix:      cfg.Tickets.NamePrefix,
		MaxSlugLength:     cfg.Tickets.MaxSlugLength,
	}, platform, audit, logger)

	cmds := router.Commands().List()
	specs := make([]discordbot.CommandSpec, 0, len(cmds))
	for _, c := range cmds {
		specs = append(specs, discordbot.CommandSpec{Name: c.Name, Description: c.Description})
	}

	// --- Health checker ---
	checker := health.NewChecker(0)
	if store != nil {
		checker.Register("sqlite", store.Ping)
	}

	g, gCtx := errgroup.WithContext(ctx)

	switch cfg.Discord.Transport {
	case config.TransportHTTP:
		publicKey, err := middleware.ParsePublicKey(cfg.Discord.PublicKey)
		if err != nil {
			return fmt.Errorf("discord.publicKey: %w", err)
		}
		if cfg.Discord.RegisterCommands {
			if _, err := discordbot.RegisterCommands(ctx, session, cfg.Discord.ApplicationID, cfg.Discord.GuildID, specs); err != nil {
				return err
			}
			logger.Info("application commands registered", "count", len(specs), "guildID", cfg.Discord.GuildID)
		}

		handler := webhook.NewHandler(webhook.HandlerConfig{
			AckTimeout:     cfg.Discord.AckTimeout,
			HandlerTimeout: cfg.Discord.HandlerTimeout,
		}, session, router, logger)
		server := webhook.NewServer(webhook.ServerConfig{
			Port:              cfg.Server.Port,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			ShutdownTimeout:   cfg.Server.ShutdownTimeout,
			RequestsPerMinute: cfg.Server.RequestsPerMinute,
			TrustProxy:        cfg.Server.TrustProxy,
		}, handler, publicKey, logger)

		g.Go(func() error {
			logger.Info("starting interactions server", "port", cfg.Server.Port)
			return server.Start(gCtx)
		})
	default:
		bot := discordbot.NewBot(session, discordbot.Config{
			ApplicationID:    cfg.Discord.ApplicationID,
			GuildID:          cfg.Discord.GuildID,
			RegisterCommands: cfg.Discord.RegisterCommands,
			HandlerTimeout:   cfg.Discord.HandlerTimeout,
		}, router, specs, logger)
		checker.Register("gateway", func(context.Context) error {
			if !bot.Connected() {
				return errors.New("gateway not connected")
			}
			return nil
		})

		g.Go(func() error {
			logger.Info("starting discord gateway bot")
			return bot.Start(gCtx)
		})
	}

	if sqliteRepo != nil && cfg.Audit.SQLite.Retention > 0 {
		g.Go(func() error {
			pruneAuditLoop(gCtx, sqliteRepo, cfg.Audit.SQLite.Retention, logger)
			return nil
		})
	}

	// Ops server (optional).
	if cfg.Server.OpsPort > 0 {
		ops := opsapi.NewServer(opsapi.ServerConfig{
			Port:            cfg.Server.OpsPort,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			TrustProxy:      cfg.Server.TrustProxy,
		}, checker, auditRepo, logger)
		g.Go(func() error {
			return ops.Start(gCtx)
		})
	} else {
		logger.Info("ops server disabled")
	}

	logger.Info("helpdesk-bot started",
		"version", version.String(),
		"transport", cfg.Discord.Transport,
		"botUserID", me.ID,
	)

	runErr := g.Wait()

	// Live sessions are expired before the audit trail is flushed so their
	// expiry records reach every sink.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	router.Shutdown(shutdownCtx)
	audit.Wait()

	return runErr
}

// pruneAuditLoop deletes audit records older than retention once at startup
// and then hourly until ctx is cancelled.
func pruneAuditLoop(ctx context.Context, repo *sqlite.AuditRepo, retention time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		n, err := repo.Prune(ctx, time.Now().Add(-retention))
		if err != nil {
			logger.Warn("audit retention prune failed", "error", err)
		} else if n > 0 {
			logger.Info("pruned audit records", "count", n, "retention", retention)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// buildLogger constructs a slog.Logger based on config.
func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}
