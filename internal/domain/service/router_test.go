package service_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
	"github.com/jonny/helpdesk-bot/internal/domain/service"
)

const (
	guildID   = "guild-1"
	channelID = "support"
	ownerID   = "user-owner"
	otherID   = "user-other"
	anchorID  = "anchor-1"
)

type harness struct {
	router   *service.Router
	platform *mockPlatform
	sink     *mockSink
	audit    *service.AuditDispatcher
}

func newHarness(t *testing.T, cfg service.RouterConfig) *harness {
	t.Helper()
	platform := newMockPlatform(
		outbound.Category{ID: "cat-billing", Name: "Billing"},
		outbound.Category{ID: "cat-tech", Name: "Technical"},
	)
	sink := &mockSink{}
	audit := service.NewAuditDispatcher(0, discardLogger(), sink)
	return &harness{
		router:   service.NewRouter(cfg, platform, audit, discardLogger()),
		platform: platform,
		sink:     sink,
		audit:    audit,
	}
}

func (h *harness) route(env model.Envelope) *mockResponder {
	resp := newResponder(channelID, env.MessageID)
	h.router.Route(context.Background(), env, resp)
	return resp
}

// auditTypes is unordered: the dispatcher delivers each record on its own
// goroutine.
func (h *harness) auditTypes() []model.AuditEventType {
	h.audit.Wait()
	return h.sink.types()
}

func commandEnv(name, userID string) model.Envelope {
	return model.Envelope{
		Kind:           model.EventCommand,
		CommandName:    name,
		OriginatorID:   userID,
		OriginatorName: "Owner",
		GuildID:        guildID,
		ChannelID:      channelID,
	}
}

func buttonEnv(customID, userID string) model.Envelope {
	return model.Envelope{
		Kind:         model.EventButton,
		CustomID:     customID,
		OriginatorID: userID,
		GuildID:      guildID,
		ChannelID:    channelID,
		MessageID:    anchorID,
	}
}

func modalEnv(customID, inputID, value, userID string) model.Envelope {
	env := buttonEnv(customID, userID)
	env.Kind = model.EventModalSubmit
	env.Fields = map[string]string{inputID: value}
	return env
}

func selectEnv(value, userID string) model.Envelope {
	env := buttonEnv(model.CustomIDCategorySelect, userID)
	env.Kind = model.EventSelectMenu
	if value != "" {
		env.Values = []string{value}
	}
	return env
}

// startTicket runs /ticket with the anchor posted as anchorID.
func (h *harness) startTicket(t *testing.T) {
	t.Helper()
	resp := newResponder(channelID, anchorID)
	h.router.Route(context.Background(), commandEnv("ticket", ownerID), resp)
	if len(resp.replies) != 1 {
		t.Fatalf("expected wizard prompt, got replies=%d notices=%v", len(resp.replies), resp.notices())
	}
}

// driveToCategory completes the title and description steps.
func (h *harness) driveToCategory(t *testing.T, title string) {
	t.Helper()
	h.startTicket(t)
	h.route(buttonEnv(model.CustomIDOpenTitle, ownerID))
	h.route(modalEnv(model.CustomIDTitleModal, model.CustomIDTitleInput, title, ownerID))
	h.route(buttonEnv(model.CustomIDOpenDescription, ownerID))
	resp := h.route(modalEnv(model.CustomIDDescModal, model.CustomIDDescInput, "Charged twice", ownerID))
	if len(resp.updates) != 1 || resp.updates[0].Select == nil {
		t.Fatalf("expected category select after description, got %+v", resp.updates)
	}
}

func countType(types []model.AuditEventType, want model.AuditEventType) int {
	n := 0
	for _, typ := range types {
		if typ == want {
			n++
		}
	}
	return n
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestRouter_TicketWizard_HappyPath(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.startTicket(t)

	resp := h.route(buttonEnv(model.CustomIDOpenTitle, ownerID))
	if len(resp.modals) != 1 || resp.modals[0].CustomID != model.CustomIDTitleModal {
		t.Fatalf("expected title modal, got %+v", resp.modals)
	}

	resp = h.route(modalEnv(model.CustomIDTitleModal, model.CustomIDTitleInput, "  Billing Issue ", ownerID))
	if len(resp.updates) != 1 || !strings.Contains(resp.updates[0].Body, "Step 2 of 3") {
		t.Fatalf("expected step 2 render, got %+v", resp.updates)
	}

	resp = h.route(buttonEnv(model.CustomIDOpenDescription, ownerID))
	if len(resp.modals) != 1 || !resp.modals[0].Inputs[0].Paragraph {
		t.Fatalf("expected paragraph description modal, got %+v", resp.modals)
	}

	resp = h.route(modalEnv(model.CustomIDDescModal, model.CustomIDDescInput, "Charged twice", ownerID))
	if len(resp.updates) != 1 || resp.updates[0].Select == nil {
		t.Fatalf("expected category select, got %+v", resp.updates)
	}
	if got := len(resp.updates[0].Select.Options); got != 2 {
		t.Errorf("expected 2 category options, got %d", got)
	}

	resp = h.route(selectEnv("cat-billing", ownerID))
	if resp.deferred != 1 {
		t.Errorf("expected deferred update before channel creation, got %d", resp.deferred)
	}
	if h.platform.createdCount() != 1 {
		t.Fatalf("expected exactly one channel, got %d", h.platform.createdCount())
	}
	req := h.platform.created[0]
	if req.Name != "ticket-billing-issue" {
		t.Errorf("expected channel name ticket-billing-issue, got %q", req.Name)
	}
	if req.ParentID != "cat-billing" || req.OwnerID != ownerID || req.BotID != "bot-1" {
		t.Errorf("unexpected channel request: %+v", req)
	}
	if len(resp.edits) != 1 || resp.edits[0].Interactive() {
		t.Fatalf("expected one non-interactive completion edit, got %+v", resp.edits)
	}
	if !strings.Contains(resp.edits[0].Body, "<#ticket-chan-1>") {
		t.Errorf("expected completion to link the channel, got %q", resp.edits[0].Body)
	}
	if got := h.platform.posted["ticket-chan-1"]; len(got) != 1 {
		t.Errorf("expected one welcome message, got %d", len(got))
	}
	if h.router.Armed(anchorID) {
		t.Error("expected expiry timer to be disarmed after completion")
	}
	if w, _ := h.router.ActiveSessions(); w != 0 {
		t.Errorf("expected no live wizards, got %d", w)
	}

	types := h.auditTypes()
	if len(types) != 2 || !slices.Contains(types, model.AuditSessionStarted) || !slices.Contains(types, model.AuditTicketCreated) {
		t.Errorf("unexpected audit trail: %v", types)
	}
}

func TestRouter_Wizard_CompletedSessionIsInactive(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.driveToCategory(t, "Billing Issue")
	h.route(selectEnv("cat-billing", ownerID))

	resp := h.route(selectEnv("cat-billing", ownerID))
	if !contains(resp.notices(), service.NoticeSessionInactive) {
		t.Errorf("expected inactive notice, got %v", resp.notices())
	}
	if h.platform.createdCount() != 1 {
		t.Errorf("expected no second channel, got %d", h.platform.createdCount())
	}
}

func TestRouter_Wizard_NonOwnerRejected(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.startTicket(t)

	resp := h.route(buttonEnv(model.CustomIDOpenTitle, otherID))
	if !contains(resp.notices(), service.NoticeNotOwner) {
		t.Fatalf("expected not-owner notice, got %v", resp.notices())
	}
	if len(resp.modals) != 0 || len(resp.updates) != 0 {
		t.Error("expected non-owner to get no modal or anchor update")
	}

	resp = h.route(modalEnv(model.CustomIDTitleModal, model.CustomIDTitleInput, "Hijack", otherID))
	if !contains(resp.notices(), service.NoticeNotOwner) {
		t.Fatalf("expected not-owner notice for modal, got %v", resp.notices())
	}

	// The owner's session is unaffected.
	resp = h.route(modalEnv(model.CustomIDTitleModal, model.CustomIDTitleInput, "Mine", ownerID))
	if len(resp.updates) != 1 || !strings.Contains(resp.updates[0].Body, "Step 2 of 3") {
		t.Fatalf("expected owner to advance, got %+v notices=%v", resp.updates, resp.notices())
	}
}

func TestRouter_Wizard_EmptyTitleRerendersStep(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.startTicket(t)

	resp := h.route(modalEnv(model.CustomIDTitleModal, model.CustomIDTitleInput, "   ", ownerID))
	if len(resp.updates) != 1 {
		t.Fatalf("expected re-render, got %+v", resp.updates)
	}
	v := resp.updates[0]
	if !strings.Contains(v.Body, "Step 1 of 3") || v.Tone != outbound.ToneWarning || v.Content == "" {
		t.Errorf("expected step 1 with a warning notice, got %+v", v)
	}
}

func TestRouter_Wizard_StepAlreadyDone(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.startTicket(t)
	h.route(modalEnv(model.CustomIDTitleModal, model.CustomIDTitleInput, "Billing", ownerID))

	resp := h.route(buttonEnv(model.CustomIDOpenTitle, ownerID))
	if !contains(resp.notices(), service.NoticeStepDone) {
		t.Errorf("expected step-done notice, got %v", resp.notices())
	}
	if len(resp.modals) != 0 {
		t.Error("expected no modal for a completed step")
	}
}

func TestRouter_Wizard_SkipAheadRejected(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.startTicket(t)

	resp := h.route(selectEnv("cat-billing", ownerID))
	if !contains(resp.notices(), service.NoticeStepDone) {
		t.Errorf("expected out-of-step notice, got %v", resp.notices())
	}
	if h.platform.createdCount() != 0 {
		t.Error("expected no channel for out-of-order select")
	}
}

func TestRouter_Wizard_EmptySelectionRerenders(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.driveToCategory(t, "Billing")

	resp := h.route(selectEnv("", ownerID))
	if len(resp.updates) != 1 || resp.updates[0].Select == nil || resp.updates[0].Tone != outbound.ToneWarning {
		t.Fatalf("expected select re-render with warning, got %+v", resp.updates)
	}
	if h.platform.createdCount() != 0 {
		t.Error("expected no channel for empty selection")
	}
}

func TestRouter_Wizard_CategoryDeletedBeforeCreation(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.driveToCategory(t, "Billing")
	h.platform.removeCategory("cat-billing")

	resp := h.route(selectEnv("cat-billing", ownerID))
	if h.platform.createdCount() != 0 {
		t.Fatalf("expected zero channel creations, got %d", h.platform.createdCount())
	}
	if len(resp.edits) != 1 || resp.edits[0].Interactive() {
		t.Fatalf("expected one stripped abort edit, got %+v", resp.edits)
	}
	if !strings.Contains(resp.edits[0].Body, "no longer exists") {
		t.Errorf("expected missing-category message, got %q", resp.edits[0].Body)
	}
	if w, _ := h.router.ActiveSessions(); w != 0 {
		t.Errorf("expected aborted session to be removed, got %d live", w)
	}
	types := h.auditTypes()
	if !slices.Contains(types, model.AuditTicketAborted) {
		t.Errorf("expected ticket.aborted audit, got %v", types)
	}
}

func TestRouter_Wizard_PermissionDenied(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.driveToCategory(t, "Billing")
	h.platform.createErr = fmt.Errorf("create channel: %w", outbound.ErrMissingPermission)

	resp := h.route(selectEnv("cat-tech", ownerID))
	if len(resp.edits) != 1 || !strings.Contains(resp.edits[0].Body, "permission") {
		t.Fatalf("expected permission abort view, got %+v", resp.edits)
	}
	if len(resp.notices()) != 0 {
		t.Errorf("expected the anchor to carry the failure, got notices %v", resp.notices())
	}

	again := h.route(selectEnv("cat-tech", ownerID))
	if !contains(again.notices(), service.NoticeSessionInactive) {
		t.Errorf("expected aborted session to be inactive, got %v", again.notices())
	}
}

func TestRouter_Wizard_NoCategoriesAborts(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.platform.categories = nil
	h.startTicket(t)
	h.route(modalEnv(model.CustomIDTitleModal, model.CustomIDTitleInput, "Billing", ownerID))

	resp := h.route(modalEnv(model.CustomIDDescModal, model.CustomIDDescInput, "Details", ownerID))
	if len(resp.updates) != 1 || resp.updates[0].Interactive() || resp.updates[0].Tone != outbound.ToneError {
		t.Fatalf("expected aborted view, got %+v", resp.updates)
	}
	if w, _ := h.router.ActiveSessions(); w != 0 {
		t.Errorf("expected no live wizards, got %d", w)
	}
}

func TestRouter_Wizard_UpdateFailureAbortsSession(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.startTicket(t)

	resp := newResponder(channelID, anchorID)
	resp.updateErr = errors.New("unknown interaction")
	h.router.Route(context.Background(), modalEnv(model.CustomIDTitleModal, model.CustomIDTitleInput, "Billing", ownerID), resp)

	if !contains(resp.notices(), service.NoticeGeneric) {
		t.Errorf("expected generic notice, got %v", resp.notices())
	}
	edits := h.platform.editCalls()
	if len(edits) != 1 || edits[0].Ref.MessageID != anchorID || edits[0].View.Interactive() {
		t.Errorf("expected anchor to be stripped, got %+v", edits)
	}
	if w, _ := h.router.ActiveSessions(); w != 0 {
		t.Errorf("expected session to be removed, got %d", w)
	}
}

func TestRouter_Wizard_DeferFailureAbortsSession(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.startTicket(t)
	h.route(modalEnv(model.CustomIDTitleModal, model.CustomIDTitleInput, "Billing", ownerID))
	h.route(modalEnv(model.CustomIDDescModal, model.CustomIDDescInput, "Charged twice", ownerID))

	resp := newResponder(channelID, anchorID)
	resp.deferErr = errors.New("unknown interaction")
	h.router.Route(context.Background(), selectEnv("cat-billing", ownerID), resp)

	if !contains(resp.notices(), service.NoticeGeneric) {
		t.Errorf("expected generic notice, got %v", resp.notices())
	}
	if got := h.platform.createdCount(); got != 0 {
		t.Errorf("expected no channel after defer failure, got %d", got)
	}
	edits := h.platform.editCalls()
	if len(edits) != 1 || edits[0].Ref.MessageID != anchorID || edits[0].View.Interactive() {
		t.Errorf("expected anchor to be stripped, got %+v", edits)
	}
	if w, _ := h.router.ActiveSessions(); w != 0 {
		t.Errorf("expected session to be removed, got %d", w)
	}
	if h.router.Armed(anchorID) {
		t.Error("expected expiry timer to be disarmed")
	}
	if types := h.auditTypes(); !slices.Contains(types, model.AuditTicketAborted) {
		t.Errorf("expected ticket.aborted audit, got %v", types)
	}

	resp = h.route(selectEnv("cat-billing", ownerID))
	if !contains(resp.notices(), service.NoticeSessionInactive) {
		t.Errorf("expected inactive notice on retry, got %v", resp.notices())
	}
}

func TestRouter_Wizard_Expiry(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.startTicket(t)
	h.route(modalEnv(model.CustomIDTitleModal, model.CustomIDTitleInput, "Billing", ownerID))

	h.router.ExpireNow(anchorID)

	edits := h.platform.editCalls()
	if len(edits) != 1 {
		t.Fatalf("expected one anchor edit, got %d", len(edits))
	}
	if edits[0].View.Interactive() || edits[0].Ref != (outbound.MessageRef{ChannelID: channelID, MessageID: anchorID}) {
		t.Errorf("unexpected expiry edit: %+v", edits[0])
	}

	resp := h.route(buttonEnv(model.CustomIDOpenDescription, ownerID))
	if !contains(resp.notices(), service.NoticeSessionInactive) {
		t.Errorf("expected inactive notice after expiry, got %v", resp.notices())
	}

	// A second fire is a no-op.
	h.router.ExpireNow(anchorID)
	if got := len(h.platform.editCalls()); got != 1 {
		t.Errorf("expected expiry to edit once, got %d", got)
	}
	types := h.auditTypes()
	if !slices.Contains(types, model.AuditSessionExpired) {
		t.Errorf("expected session.expired audit, got %v", types)
	}
	if n := countType(types, model.AuditSessionExpired); n != 1 {
		t.Errorf("expected one session.expired audit, got %d", n)
	}
}

func TestRouter_Wizard_ExpiryEditFailureIgnored(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.platform.editErr = errors.New("unknown message")
	h.startTicket(t)

	h.router.ExpireNow(anchorID)
	if w, _ := h.router.ActiveSessions(); w != 0 {
		t.Errorf("expected session removed despite edit failure, got %d", w)
	}
}

func TestRouter_Wizard_ConcurrentSelectCreatesOnce(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.driveToCategory(t, "Billing")

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			h.route(selectEnv("cat-billing", ownerID))
		})
	}
	wg.Wait()

	if got := h.platform.createdCount(); got != 1 {
		t.Errorf("expected exactly one channel creation, got %d", got)
	}
}

func TestRouter_Wizard_GuildOnly(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	env := commandEnv("ticket", ownerID)
	env.GuildID = ""

	resp := h.route(env)
	if !contains(resp.notices(), service.NoticeGuildOnly) {
		t.Errorf("expected guild-only notice, got %v", resp.notices())
	}
	if w, _ := h.router.ActiveSessions(); w != 0 {
		t.Errorf("expected no session, got %d", w)
	}
}

func TestRouter_UnknownCommand(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	resp := h.route(commandEnv("nope", ownerID))
	if !contains(resp.notices(), service.NoticeUnknownCommand) {
		t.Errorf("expected unknown-command notice, got %v", resp.notices())
	}
}

func TestRouter_UnknownControl(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	resp := h.route(buttonEnv("legacy:button", ownerID))
	if !contains(resp.notices(), service.NoticeUnknownControl) {
		t.Errorf("expected unknown-control notice, got %v", resp.notices())
	}
}

func TestRouter_RoutingMiss(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	resp := h.route(buttonEnv(model.CustomIDHelpNext, ownerID))
	if !contains(resp.notices(), service.NoticeSessionInactive) {
		t.Errorf("expected inactive notice, got %v", resp.notices())
	}
}

func TestRouter_PanicIsContained(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.startTicket(t)
	h.route(modalEnv(model.CustomIDTitleModal, model.CustomIDTitleInput, "Billing", ownerID))
	h.platform.panicList = true

	resp := h.route(modalEnv(model.CustomIDDescModal, model.CustomIDDescInput, "Details", ownerID))
	if !contains(resp.notices(), service.NoticeGeneric) {
		t.Errorf("expected generic notice after panic, got %v", resp.notices())
	}
}

func TestRouter_Help_Pagination(t *testing.T) {
	cfg := service.DefaultRouterConfig()
	cfg.HelpPageSize = 1
	h := newHarness(t, cfg)

	resp := newResponder(channelID, anchorID)
	h.router.Route(context.Background(), commandEnv("help", ownerID), resp)
	if len(resp.replies) != 1 {
		t.Fatalf("expected help reply, got %v", resp.notices())
	}
	first := resp.replies[0]
	if first.Footer != "Page 1 of 3" {
		t.Errorf("expected footer 'Page 1 of 3', got %q", first.Footer)
	}
	if !first.Buttons[0].Disabled || first.Buttons[1].Disabled {
		t.Errorf("expected prev disabled and next enabled, got %+v", first.Buttons)
	}

	// Prev on the first page is clamped.
	resp = h.route(buttonEnv(model.CustomIDHelpPrev, ownerID))
	if len(resp.updates) != 1 || resp.updates[0].Footer != "Page 1 of 3" {
		t.Fatalf("expected clamp at page 1, got %+v", resp.updates)
	}

	h.route(buttonEnv(model.CustomIDHelpNext, ownerID))
	h.route(buttonEnv(model.CustomIDHelpNext, ownerID))
	resp = h.route(buttonEnv(model.CustomIDHelpNext, ownerID))
	if len(resp.updates) != 1 || resp.updates[0].Footer != "Page 3 of 3" {
		t.Fatalf("expected clamp at page 3, got %+v", resp.updates)
	}
	if !resp.updates[0].Buttons[1].Disabled {
		t.Error("expected next disabled on the last page")
	}

	resp = h.route(buttonEnv(model.CustomIDHelpPrev, otherID))
	if !contains(resp.notices(), service.NoticeNotOwner) {
		t.Errorf("expected not-owner notice, got %v", resp.notices())
	}
	if len(resp.updates) != 0 {
		t.Errorf("expected no update for a non-owner press, got %+v", resp.updates)
	}

	// The rejected press left the index on page 3.
	resp = h.route(buttonEnv(model.CustomIDHelpPrev, ownerID))
	if len(resp.updates) != 1 || resp.updates[0].Footer != "Page 2 of 3" {
		t.Fatalf("expected owner prev to land on page 2, got %+v", resp.updates)
	}
}

func TestRouter_Help_SinglePage(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	resp := newResponder(channelID, anchorID)
	h.router.Route(context.Background(), commandEnv("help", ownerID), resp)

	v := resp.replies[0]
	if v.Footer != "Page 1 of 1" || !v.Buttons[0].Disabled || !v.Buttons[1].Disabled {
		t.Errorf("expected single page with both buttons disabled, got %+v", v)
	}
	if len(v.Fields) != 3 {
		t.Errorf("expected all 3 commands on one page, got %d", len(v.Fields))
	}
}

func TestRouter_Help_Expiry(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.router.Route(context.Background(), commandEnv("help", ownerID), newResponder(channelID, anchorID))

	h.router.ExpireNow(anchorID)
	edits := h.platform.editCalls()
	if len(edits) != 1 || edits[0].View.Interactive() {
		t.Fatalf("expected stripped help anchor, got %+v", edits)
	}
	if edits[0].View.Footer != "Page 1 of 1" {
		t.Errorf("expected last page content kept, got %q", edits[0].View.Footer)
	}

	resp := h.route(buttonEnv(model.CustomIDHelpNext, ownerID))
	if !contains(resp.notices(), service.NoticeSessionInactive) {
		t.Errorf("expected inactive notice, got %v", resp.notices())
	}
}

func TestRouter_Status(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.startTicket(t)

	resp := h.route(commandEnv("status", ownerID))
	if len(resp.ephemeral) != 1 || !strings.Contains(resp.ephemeral[0], "Active ticket wizards: 1") {
		t.Errorf("unexpected status reply: %v", resp.ephemeral)
	}
}

func TestRouter_Shutdown(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	h.startTicket(t)

	h.router.Shutdown(context.Background())
	if w, v := h.router.ActiveSessions(); w != 0 || v != 0 {
		t.Errorf("expected no live sessions, got wizards=%d views=%d", w, v)
	}
	if h.router.Armed(anchorID) {
		t.Error("expected no armed timers after shutdown")
	}
	if len(h.platform.editCalls()) != 1 {
		t.Errorf("expected anchor to be stripped on shutdown")
	}
}

func TestRouter_ReactionsAreObservedOnly(t *testing.T) {
	h := newHarness(t, service.DefaultRouterConfig())
	resp := h.route(model.Envelope{Kind: model.EventReactionAdd, MessageID: anchorID, OriginatorID: ownerID})
	if resp.Acknowledged() {
		t.Error("expected reactions to produce no response")
	}
}
