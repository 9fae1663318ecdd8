package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- platform ---

type editCall struct {
	Ref  outbound.MessageRef
	View outbound.View
}

type mockPlatform struct {
	mu          sync.Mutex
	categories  []outbound.Category
	listErr     error
	categoryErr error
	createErr   error
	editErr     error
	created     []outbound.ChannelRequest
	posted      map[string][]outbound.View
	edits       []editCall
	nextChannel int
	panicList   bool
}

func newMockPlatform(categories ...outbound.Category) *mockPlatform {
	return &mockPlatform{categories: categories, posted: make(map[string][]outbound.View)}
}

func (p *mockPlatform) BotUserID() string { return "bot-1" }

func (p *mockPlatform) Categories(_ context.Context, _ string) ([]outbound.Category, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panicList {
		panic("category listing exploded")
	}
	if p.listErr != nil {
		return nil, p.listErr
	}
	return append([]outbound.Category(nil), p.categories...), nil
}

func (p *mockPlatform) Category(_ context.Context, _ string, id string) (outbound.Category, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.categoryErr != nil {
		return outbound.Category{}, p.categoryErr
	}
	for _, c := range p.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return outbound.Category{}, outbound.ErrCategoryNotFound
}

func (p *mockPlatform) CreateTicketChannel(_ context.Context, req outbound.ChannelRequest) (outbound.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return outbound.Channel{}, p.createErr
	}
	p.created = append(p.created, req)
	p.nextChannel++
	return outbound.Channel{ID: fmt.Sprintf("ticket-chan-%d", p.nextChannel), Name: req.Name}, nil
}

func (p *mockPlatform) PostMessage(_ context.Context, channelID string, view outbound.View) (outbound.MessageRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posted[channelID] = append(p.posted[channelID], view)
	return outbound.MessageRef{ChannelID: channelID, MessageID: "welcome-1"}, nil
}

func (p *mockPlatform) EditMessage(_ context.Context, ref outbound.MessageRef, view outbound.View) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edits = append(p.edits, editCall{Ref: ref, View: view})
	return p.editErr
}

func (p *mockPlatform) removeCategory(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.categories[:0]
	for _, c := range p.categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	p.categories = kept
}

func (p *mockPlatform) createdCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.created)
}

func (p *mockPlatform) editCalls() []editCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]editCall(nil), p.edits...)
}

var _ outbound.Platform = (*mockPlatform)(nil)

// --- responder ---

// mockResponder records one interaction's responses and enforces the
// acknowledge-once rule.
type mockResponder struct {
	anchor    outbound.MessageRef
	replyErr  error
	updateErr error
	modalErr  error
	deferErr  error
	acked     bool
	replies   []outbound.View
	updates   []outbound.View
	edits     []outbound.View
	modals    []outbound.Modal
	ephemeral []string
	followups []string
	deferred  int
}

func newResponder(channelID, messageID string) *mockResponder {
	return &mockResponder{anchor: outbound.MessageRef{ChannelID: channelID, MessageID: messageID}}
}

func (r *mockResponder) ack() error {
	if r.acked {
		return outbound.ErrAlreadyAcknowledged
	}
	r.acked = true
	return nil
}

func (r *mockResponder) Reply(_ context.Context, v outbound.View) (outbound.MessageRef, error) {
	if r.replyErr != nil {
		return outbound.MessageRef{}, r.replyErr
	}
	if err := r.ack(); err != nil {
		return outbound.MessageRef{}, err
	}
	r.replies = append(r.replies, v)
	return r.anchor, nil
}

func (r *mockResponder) ReplyEphemeral(_ context.Context, text string) error {
	if err := r.ack(); err != nil {
		return err
	}
	r.ephemeral = append(r.ephemeral, text)
	return nil
}

func (r *mockResponder) Update(_ context.Context, v outbound.View) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if err := r.ack(); err != nil {
		return err
	}
	r.updates = append(r.updates, v)
	return nil
}

func (r *mockResponder) OpenModal(_ context.Context, m outbound.Modal) error {
	if r.modalErr != nil {
		return r.modalErr
	}
	if err := r.ack(); err != nil {
		return err
	}
	r.modals = append(r.modals, m)
	return nil
}

func (r *mockResponder) DeferUpdate(_ context.Context) error {
	if r.deferErr != nil {
		return r.deferErr
	}
	if err := r.ack(); err != nil {
		return err
	}
	r.deferred++
	return nil
}

func (r *mockResponder) EditOriginal(_ context.Context, v outbound.View) error {
	if !r.acked {
		return errors.New("edit before acknowledge")
	}
	r.edits = append(r.edits, v)
	return nil
}

func (r *mockResponder) FollowupEphemeral(_ context.Context, text string) error {
	if !r.acked {
		return errors.New("followup before acknowledge")
	}
	r.followups = append(r.followups, text)
	return nil
}

func (r *mockResponder) Acknowledged() bool { return r.acked }

// notices returns every ephemeral text sent, initial or follow-up.
func (r *mockResponder) notices() []string {
	return append(append([]string(nil), r.ephemeral...), r.followups...)
}

var _ outbound.Responder = (*mockResponder)(nil)

// --- audit ---

type mockSink struct {
	mu      sync.Mutex
	err     error
	entries []model.AuditLog
}

func (s *mockSink) Name() string { return "mock" }

func (s *mockSink) Record(_ context.Context, e model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return s.err
}

func (s *mockSink) types() []model.AuditEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditEventType, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.EventType)
	}
	return out
}

var _ outbound.AuditSink = (*mockSink)(nil)
