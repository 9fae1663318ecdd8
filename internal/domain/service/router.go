package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/inbound"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
	"github.com/jonny/helpdesk-bot/pkg/version"
)

// RouterConfig holds session engine settings.
type RouterConfig struct {
	WizardTimeout     time.Duration
	PaginationTimeout time.Duration
	HelpPageSize      int
	// EffectTimeout bounds platform calls made outside an interaction, such
	// as anchor edits from the reaper.
	EffectTimeout time.Duration
	TicketPrefix  string
	MaxSlugLength int
}

func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		WizardTimeout:     180 * time.Second,
		PaginationTimeout: 60 * time.Second,
		HelpPageSize:      3,
		EffectTimeout:     10 * time.Second,
		TicketPrefix:      DefaultTicketPrefix,
		MaxSlugLength:     DefaultMaxSlugLength,
	}
}

// Router is the InteractionRouter: it starts commands, routes continuation
// events to their live session and answers every failure to the user.
type Router struct {
	cfg      RouterConfig
	commands *CommandTable
	platform outbound.Platform
	audit    *AuditDispatcher
	logger   *slog.Logger

	guard  AuthorizationGuard
	wizard Wizard
	pager  PaginationController

	wizards *SessionStore[model.Session]
	views   *SessionStore[model.PaginationView]
	locks   *KeyedMutex
	reaper  *TimeoutReaper
}

var _ inbound.InteractionPort = (*Router)(nil)

// NewRouter wires the session engine and registers the built-in commands.
func NewRouter(cfg RouterConfig, platform outbound.Platform, audit *AuditDispatcher, logger *slog.Logger) *Router {
	def := DefaultRouterConfig()
	if cfg.WizardTimeout <= 0 {
		cfg.WizardTimeout = def.WizardTimeout
	}
	if cfg.PaginationTimeout <= 0 {
		cfg.PaginationTimeout = def.PaginationTimeout
	}
	if cfg.HelpPageSize <= 0 {
		cfg.HelpPageSize = def.HelpPageSize
	}
	if cfg.EffectTimeout <= 0 {
		cfg.EffectTimeout = def.EffectTimeout
	}
	rt := &Router{
		cfg:      cfg,
		commands: NewCommandTable(),
		platform: platform,
		audit:    audit,
		logger:   logger,
		wizard:   NewWizard(),
		wizards:  NewSessionStore[model.Session](),
		views:    NewSessionStore[model.PaginationView](),
		locks:    NewKeyedMutex(),
		reaper:   NewTimeoutReaper(),
	}
	for _, cmd := range []Command{
		{Name: "ticket", Description: "Open a private support ticket.", Usage: "/ticket", Run: rt.startWizard},
		{Name: "help", Description: "Browse the available commands.", Usage: "/help", Run: rt.startHelp},
		{Name: "status", Description: "Show bot version and active sessions.", Usage: "/status", Run: rt.status},
	} {
		// Built-ins have distinct names and run funcs.
		_ = rt.commands.Register(cmd)
	}
	return rt
}

func (rt *Router) Commands() *CommandTable { return rt.commands }

// ActiveSessions returns the number of live wizards and help views.
func (rt *Router) ActiveSessions() (wizards, views int) {
	return rt.wizards.Len(), rt.views.Len()
}

// Route implements inbound.InteractionPort.
func (rt *Router) Route(ctx context.Context, env model.Envelope, resp outbound.Responder) {
	defer func() {
		if p := recover(); p != nil {
			rt.logger.Error("panic handling interaction",
				"kind", env.Kind,
				"customID", env.CustomID,
				"command", env.CommandName,
				"panic", p,
				"stack", string(debug.Stack()),
			)
			rt.notify(ctx, resp, NoticeGeneric)
		}
	}()

	var err error
	switch {
	case env.Kind == model.EventCommand:
		err = rt.runCommand(ctx, env, resp)
	case env.Kind.IsContinuation():
		err = rt.continueSession(ctx, env, resp)
	default:
		rt.Observe(ctx, env)
		return
	}
	if err != nil {
		rt.answer(ctx, env, resp, err)
	}
}

// Observe implements inbound.InteractionPort. No session reacts to
// reactions, so they are only logged.
func (rt *Router) Observe(_ context.Context, env model.Envelope) {
	rt.logger.Debug("event ignored",
		"kind", env.Kind,
		"messageID", env.MessageID,
		"userID", env.OriginatorID,
	)
}

func (rt *Router) answer(ctx context.Context, env model.Envelope, resp outbound.Responder, err error) {
	var notice string
	switch {
	case errors.Is(err, ErrRoutingMiss):
		rt.logger.Debug("routing miss", "messageID", env.MessageID, "customID", env.CustomID)
		notice = NoticeSessionInactive
	case errors.Is(err, ErrNotOwner):
		rt.logger.Info("rejected non-owner interaction", "messageID", env.MessageID, "userID", env.OriginatorID)
		notice = NoticeNotOwner
	default:
		rt.logger.Error("interaction failed",
			"kind", env.Kind,
			"customID", env.CustomID,
			"command", env.CommandName,
			"messageID", env.MessageID,
			"error", err,
		)
		notice = NoticeGeneric
	}
	rt.notify(ctx, resp, notice)
}

// notify sends an ephemeral notice as the initial response, or as a
// follow-up when the interaction was already acknowledged.
func (rt *Router) notify(ctx context.Context, resp outbound.Responder, text string) {
	var err error
	if resp.Acknowledged() {
		err = resp.FollowupEphemeral(ctx, text)
	} else {
		err = resp.ReplyEphemeral(ctx, text)
	}
	if err != nil {
		rt.logger.Warn("failed to send notice", "notice", text, "error", err)
	}
}

func (rt *Router) runCommand(ctx context.Context, env model.Envelope, resp outbound.Responder) error {
	cmd, ok := rt.commands.Lookup(env.CommandName)
	if !ok {
		rt.notify(ctx, resp, NoticeUnknownCommand)
		return nil
	}
	if err := cmd.Run(ctx, env, resp); err != nil {
		return fmt.Errorf("command %s: %w", cmd.Name, err)
	}
	return nil
}

func (rt *Router) continueSession(ctx context.Context, env model.Envelope, resp outbound.Responder) error {
	switch tok := model.DecodeToken(env).(type) {
	case model.WizardToken:
		return rt.continueWizard(ctx, env, resp, tok)
	case model.PageToken:
		return rt.continuePager(ctx, env, resp, tok)
	default:
		rt.notify(ctx, resp, NoticeUnknownControl)
		return nil
	}
}

// ---- wizard ----

func (rt *Router) startWizard(ctx context.Context, env model.Envelope, resp outbound.Responder) error {
	if env.GuildID == "" {
		rt.notify(ctx, resp, NoticeGuildOnly)
		return nil
	}
	s := model.NewSession(env.GuildID, env.OriginatorID, env.OriginatorName, rt.cfg.WizardTimeout)
	ref, err := resp.Reply(ctx, WizardStepView(s, nil, ""))
	if err != nil {
		return fmt.Errorf("post wizard prompt: %w", err)
	}
	if ref.MessageID == "" {
		return errors.New("post wizard prompt: anchor message id unavailable")
	}
	s = s.WithAnchor(ref.MessageID, ref.ChannelID)

	unlock := rt.locks.Lock(s.Key)
	defer unlock()
	rt.wizards.Put(s.Key, s)
	rt.reaper.Arm(s.Key, rt.cfg.WizardTimeout, func() { rt.expireWizard(s.Key) })

	rt.audit.Dispatch(model.NewAuditLog(model.AuditSessionStarted, s.Key, s.GuildID, s.OwnerID, "ticket wizard started"))
	return nil
}

func (rt *Router) continueWizard(ctx context.Context, env model.Envelope, resp outbound.Responder, tok model.WizardToken) error {
	if env.MessageID == "" {
		return ErrRoutingMiss
	}
	unlock := rt.locks.Lock(env.MessageID)
	defer unlock()

	s, ok := rt.wizards.Get(env.MessageID)
	if !ok {
		return ErrRoutingMiss
	}
	if err := rt.guard.Check(env, s.OwnerID); err != nil {
		return err
	}

	tr, err := rt.wizard.Advance(s, tok)
	if err != nil {
		if errors.Is(err, model.ErrSessionTerminal) {
			return ErrRoutingMiss
		}
		return err
	}
	if tr.Invalid != nil {
		rt.logger.Debug("wizard input rejected", "sessionKey", s.Key, "step", s.Step, "error", tr.Invalid)
	}
	return rt.apply(ctx, resp, tr)
}

// apply executes a transition's instructions. It must run under the key lock.
func (rt *Router) apply(ctx context.Context, resp outbound.Responder, tr Transition) error {
	next := tr.Session
	for _, in := range tr.Instructions {
		switch in := in.(type) {
		case OpenModal:
			if err := resp.OpenModal(ctx, in.Modal); err != nil {
				return rt.failWizard(next, fmt.Errorf("open modal: %w", err))
			}
		case Reject:
			rt.notify(ctx, resp, in.Notice)
		case RenderStep:
			view, err := rt.stepView(ctx, next, in.Notice)
			if err != nil {
				return rt.abortWizard(ctx, resp, next, classifyEffectError(err))
			}
			if err := resp.Update(ctx, view); err != nil {
				return rt.failWizard(next, fmt.Errorf("update anchor: %w", err))
			}
		case CreateTicket:
			return rt.createTicket(ctx, resp, next)
		}
	}
	rt.wizards.Put(next.Key, next)
	return nil
}

func (rt *Router) stepView(ctx context.Context, s model.Session, notice string) (outbound.View, error) {
	if s.Step != model.StepSelectingCategory {
		return WizardStepView(s, nil, notice), nil
	}
	categories, err := rt.platform.Categories(ctx, s.GuildID)
	if err != nil {
		return outbound.View{}, fmt.Errorf("list categories: %w", err)
	}
	if len(categories) == 0 {
		return outbound.View{}, outbound.ErrCategoryNotFound
	}
	return WizardStepView(s, categories, notice), nil
}

// createTicket performs the terminal effect. The category is re-resolved
// against the live platform immediately before the channel is created.
func (rt *Router) createTicket(ctx context.Context, resp outbound.Responder, s model.Session) error {
	if err := resp.DeferUpdate(ctx); err != nil {
		return rt.failWizard(s, fmt.Errorf("defer update: %w", err))
	}

	category, err := rt.platform.Category(ctx, s.GuildID, s.Collected.CategoryID)
	if err != nil {
		return rt.abortWizard(ctx, resp, s, classifyEffectError(err))
	}

	channel, err := rt.platform.CreateTicketChannel(ctx, outbound.ChannelRequest{
		GuildID:  s.GuildID,
		Name:     TicketChannelName(rt.cfg.TicketPrefix, s.Collected.Title, s.Key, rt.cfg.MaxSlugLength),
		ParentID: category.ID,
		OwnerID:  s.OwnerID,
		BotID:    rt.platform.BotUserID(),
		Topic:    s.Collected.Title,
	})
	if err != nil {
		return rt.abortWizard(ctx, resp, s, classifyEffectError(err))
	}

	done, err := s.Complete(channel.ID)
	if err != nil {
		return err
	}
	rt.finishWizard(done)

	if _, err := rt.platform.PostMessage(ctx, channel.ID, WelcomeView(done, category)); err != nil {
		rt.logger.Warn("failed to post welcome message", "sessionKey", done.Key, "channelID", channel.ID, "error", err)
	}
	if err := resp.EditOriginal(ctx, CompletedView(done, category)); err != nil {
		rt.logger.Warn("failed to render completed wizard", "sessionKey", done.Key, "error", err)
	}

	rt.logger.Info("ticket created",
		"sessionKey", done.Key,
		"guildID", done.GuildID,
		"ownerID", done.OwnerID,
		"channelID", channel.ID,
		"channelName", channel.Name,
	)
	rt.audit.Dispatch(model.NewAuditLog(model.AuditTicketCreated, done.Key, done.GuildID, done.OwnerID,
		fmt.Sprintf("ticket channel %s created", channel.Name)).
		WithChannelID(channel.ID).
		WithMetadata("category", category.Name).
		WithMetadata("title", done.Collected.Title))
	return nil
}

// abortWizard moves s to Aborted because of a failed external effect and
// renders the failure on the anchor. The effect error is reported to the
// user through the anchor, so it is not returned.
func (rt *Router) abortWizard(ctx context.Context, resp outbound.Responder, s model.Session, effErr *ExternalEffectError) error {
	aborted, err := s.Abort(effErr.Reason)
	if err != nil {
		return err
	}
	rt.finishWizard(aborted)

	view := AbortedView(aborted)
	if resp.Acknowledged() {
		err = resp.EditOriginal(ctx, view)
	} else {
		err = resp.Update(ctx, view)
	}
	if err != nil {
		rt.logger.Warn("failed to render aborted wizard", "sessionKey", aborted.Key, "error", err)
	}

	rt.logger.Warn("ticket aborted", "sessionKey", aborted.Key, "reason", effErr.Reason, "error", effErr.Err)
	rt.audit.Dispatch(model.NewAuditLog(model.AuditTicketAborted, aborted.Key, aborted.GuildID, aborted.OwnerID,
		effErr.Error()).WithMetadata("reason", string(effErr.Reason)))
	return nil
}

// failWizard aborts s after a platform I/O failure that left the interaction
// unanswered, strips the anchor and returns err for the router boundary.
func (rt *Router) failWizard(s model.Session, err error) error {
	aborted, abortErr := s.Abort(model.AbortUnknown)
	if abortErr != nil {
		return err
	}
	rt.finishWizard(aborted)
	rt.stripAnchor(outbound.MessageRef{ChannelID: aborted.AnchorChannelID, MessageID: aborted.Key}, AbortedView(aborted))
	rt.audit.Dispatch(model.NewAuditLog(model.AuditTicketAborted, aborted.Key, aborted.GuildID, aborted.OwnerID,
		err.Error()).WithMetadata("reason", string(model.AbortUnknown)))
	return err
}

func (rt *Router) finishWizard(s model.Session) {
	rt.wizards.Delete(s.Key)
	rt.reaper.Disarm(s.Key)
}

func (rt *Router) expireWizard(key string) {
	unlock := rt.locks.Lock(key)
	defer unlock()

	s, ok := rt.wizards.Get(key)
	if !ok {
		return
	}
	expired, err := s.Expire()
	if err != nil {
		return
	}
	rt.finishWizard(expired)
	rt.stripAnchor(outbound.MessageRef{ChannelID: expired.AnchorChannelID, MessageID: expired.Key}, ExpiredWizardView(expired))

	rt.logger.Info("ticket wizard expired", "sessionKey", key, "step", s.Step)
	rt.audit.Dispatch(model.NewAuditLog(model.AuditSessionExpired, key, expired.GuildID, expired.OwnerID,
		"ticket wizard expired").WithMetadata("step", string(s.Step)))
}

// ---- help pagination ----

func (rt *Router) startHelp(ctx context.Context, env model.Envelope, resp outbound.Responder) error {
	v := model.NewPaginationView(env.OriginatorID, rt.commands.HelpPages(rt.cfg.HelpPageSize), rt.cfg.PaginationTimeout)
	ref, err := resp.Reply(ctx, HelpView(v))
	if err != nil {
		return fmt.Errorf("post help: %w", err)
	}
	if ref.MessageID == "" {
		return errors.New("post help: anchor message id unavailable")
	}
	v = v.WithAnchor(ref.MessageID, ref.ChannelID)

	unlock := rt.locks.Lock(v.Key)
	defer unlock()
	rt.views.Put(v.Key, v)
	rt.reaper.Arm(v.Key, rt.cfg.PaginationTimeout, func() { rt.expirePager(v.Key) })
	return nil
}

func (rt *Router) continuePager(ctx context.Context, env model.Envelope, resp outbound.Responder, tok model.PageToken) error {
	if env.MessageID == "" {
		return ErrRoutingMiss
	}
	unlock := rt.locks.Lock(env.MessageID)
	defer unlock()

	v, ok := rt.views.Get(env.MessageID)
	if !ok {
		return ErrRoutingMiss
	}
	if err := rt.guard.Check(env, v.OwnerID); err != nil {
		return err
	}

	next, moved := rt.pager.Navigate(v, tok)
	if !moved {
		rt.logger.Debug("pagination clamped", "sessionKey", v.Key, "index", v.Index)
	}
	if err := resp.Update(ctx, HelpView(next)); err != nil {
		rt.views.Delete(v.Key)
		rt.reaper.Disarm(v.Key)
		rt.stripAnchor(outbound.MessageRef{ChannelID: v.AnchorChannelID, MessageID: v.Key}, HelpView(v).Stripped())
		return fmt.Errorf("update help page: %w", err)
	}
	rt.views.Put(next.Key, next)
	return nil
}

func (rt *Router) expirePager(key string) {
	unlock := rt.locks.Lock(key)
	defer unlock()

	v, ok := rt.views.Get(key)
	if !ok {
		return
	}
	rt.views.Delete(key)
	rt.reaper.Disarm(key)
	rt.stripAnchor(outbound.MessageRef{ChannelID: v.AnchorChannelID, MessageID: v.Key}, HelpView(v).Stripped())
	rt.logger.Debug("help view expired", "sessionKey", key, "index", v.Index)
}

// ---- misc ----

func (rt *Router) status(ctx context.Context, _ model.Envelope, resp outbound.Responder) error {
	wizards, views := rt.ActiveSessions()
	text := fmt.Sprintf(":robot_face: helpdesk-bot %s is running. Active ticket wizards: %d, help views: %d.",
		version.Version, wizards, views)
	return resp.ReplyEphemeral(ctx, text)
}

// stripAnchor edits an anchor outside of any interaction. Errors are
// swallowed: the message may already be deleted or edited.
func (rt *Router) stripAnchor(ref outbound.MessageRef, view outbound.View) {
	ctx, cancel := context.WithTimeout(context.Background(), rt.cfg.EffectTimeout)
	defer cancel()
	if err := rt.platform.EditMessage(ctx, ref, view.Stripped()); err != nil {
		rt.logger.Debug("anchor edit ignored", "messageID", ref.MessageID, "error", err)
	}
}

// Shutdown expires every live session, stripping its anchor. It does not
// wait for in-flight interactions.
func (rt *Router) Shutdown(ctx context.Context) {
	rt.reaper.StopAll()
	for _, key := range rt.wizards.Keys() {
		if ctx.Err() != nil {
			return
		}
		rt.expireWizard(key)
	}
	for _, key := range rt.views.Keys() {
		if ctx.Err() != nil {
			return
		}
		rt.expirePager(key)
	}
}
