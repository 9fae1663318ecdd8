package discordbot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/inbound"
)

// Config holds gateway bot configuration.
type Config struct {
	ApplicationID    string
	GuildID          string
	RegisterCommands bool
	// HandlerTimeout bounds the work done for one interaction.
	HandlerTimeout time.Duration
}

// Bot receives interactions and reactions over the Discord gateway.
type Bot struct {
	session   *discordgo.Session
	cfg       Config
	port      inbound.InteractionPort
	commands  []CommandSpec
	logger    *slog.Logger
	ctx       context.Context
	connected atomic.Bool

	mu       sync.Mutex
	stopping bool
	wg       sync.WaitGroup
	removers []func()
}

func NewBot(session *discordgo.Session, cfg Config, port inbound.InteractionPort, commands []CommandSpec, logger *slog.Logger) *Bot {
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}
	return &Bot{
		session:  session,
		cfg:      cfg,
		port:     port,
		commands: commands,
		logger:   logger,
		ctx:      context.Background(),
	}
}

// Start opens the gateway and blocks until ctx is cancelled, then drains
// in-flight handlers and closes the connection.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	b.session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessageReactions
	b.attach()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	if b.cfg.RegisterCommands {
		appID := b.cfg.ApplicationID
		if appID == "" && b.session.State != nil && b.session.State.User != nil {
			appID = b.session.State.User.ID
		}
		created, err := RegisterCommands(ctx, b.session, appID, b.cfg.GuildID, b.commands)
		if err != nil {
			b.detach()
			_ = b.session.Close()
			return err
		}
		b.logger.Info("slash commands registered", "count", len(created), "guildID", b.cfg.GuildID)
	}

	<-ctx.Done()
	return b.stop()
}

func (b *Bot) stop() error {
	b.logger.Info("stopping discord gateway")
	b.detach()
	b.mu.Lock()
	b.stopping = true
	b.mu.Unlock()
	b.wg.Wait()
	b.connected.Store(false)
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

func (b *Bot) attach() {
	b.removers = append(b.removers,
		b.session.AddHandler(b.onReady),
		b.session.AddHandler(b.onDisconnect),
		b.session.AddHandler(b.onInteraction),
		b.session.AddHandler(b.onReactionAdd),
		b.session.AddHandler(b.onReactionRemove),
	)
}

func (b *Bot) detach() {
	for _, remove := range b.removers {
		remove()
	}
	b.removers = nil
}

// track registers an in-flight handler. It reports false once stop has
// begun draining.
func (b *Bot) track() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopping {
		return false
	}
	b.wg.Add(1)
	return true
}

// Connected reports whether the gateway session is ready.
func (b *Bot) Connected() bool {
	return b.connected.Load()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.connected.Store(true)
	b.logger.Info("discord gateway connected", "username", r.User.Username, "userID", r.User.ID, "guilds", len(r.Guilds))
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	b.connected.Store(false)
	b.logger.Warn("discord gateway disconnected")
}

func (b *Bot) onInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	env, ok := DecodeInteraction(ic.Interaction)
	if !ok {
		b.logger.Debug("interaction ignored", "type", ic.Type)
		return
	}
	if !b.track() {
		b.logger.Debug("interaction dropped during shutdown", "kind", env.Kind, "customID", env.CustomID)
		return
	}
	defer b.wg.Done()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(b.ctx), b.cfg.HandlerTimeout)
	defer cancel()
	b.port.Route(ctx, env, NewResponder(s, ic.Interaction, nil))
}

func (b *Bot) onReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.port.Observe(b.ctx, DecodeReaction(model.EventReactionAdd, r.MessageReaction))
}

func (b *Bot) onReactionRemove(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
	b.port.Observe(b.ctx, DecodeReaction(model.EventReactionRemove, r.MessageReaction))
}
