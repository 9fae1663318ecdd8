package discordbot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jonny/helpdesk-bot/internal/adapter/inbound/discordbot/template"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

const originalRetryDelay = 250 * time.Millisecond

// InteractionAPI is the subset of *discordgo.Session used to answer an
// interaction after its initial response.
type InteractionAPI interface {
	InteractionRespond(i *discordgo.Interaction, r *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponse(i *discordgo.Interaction, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseEdit(i *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// InitialFunc delivers the one initial response of an interaction.
type InitialFunc func(ctx context.Context, r *discordgo.InteractionResponse) error

// RESTInitial delivers the initial response through the REST callback
// endpoint, as the gateway transport requires.
func RESTInitial(api InteractionAPI, i *discordgo.Interaction) InitialFunc {
	return func(ctx context.Context, r *discordgo.InteractionResponse) error {
		return api.InteractionRespond(i, r, discordgo.WithContext(ctx))
	}
}

// Responder implements outbound.Responder for one Discord interaction.
type Responder struct {
	api         InteractionAPI
	interaction *discordgo.Interaction
	initial     InitialFunc

	mu    sync.Mutex
	acked bool
}

var _ outbound.Responder = (*Responder)(nil)

func NewResponder(api InteractionAPI, i *discordgo.Interaction, initial InitialFunc) *Responder {
	if initial == nil {
		initial = RESTInitial(api, i)
	}
	return &Responder{api: api, interaction: i, initial: initial}
}

func (r *Responder) respond(ctx context.Context, resp *discordgo.InteractionResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.acked {
		return outbound.ErrAlreadyAcknowledged
	}
	if err := r.initial(ctx, resp); err != nil {
		return err
	}
	r.acked = true
	return nil
}

// Reply posts a public message and returns its ref so it can anchor a
// session.
func (r *Responder) Reply(ctx context.Context, v outbound.View) (outbound.MessageRef, error) {
	err := r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: template.BuildResponseData(v),
	})
	if err != nil {
		return outbound.MessageRef{}, fmt.Errorf("reply: %w", err)
	}
	msg, err := r.fetchOriginal(ctx)
	if err != nil {
		return outbound.MessageRef{}, fmt.Errorf("fetch original response: %w", err)
	}
	return outbound.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

// fetchOriginal retries once when Discord has not yet created the message
// for a just-written initial response.
func (r *Responder) fetchOriginal(ctx context.Context) (*discordgo.Message, error) {
	msg, err := r.api.InteractionResponse(r.interaction, discordgo.WithContext(ctx))
	if err == nil || !isNotYetCreated(err) {
		return msg, err
	}
	t := time.NewTimer(originalRetryDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
		return nil, err
	}
	return r.api.InteractionResponse(r.interaction, discordgo.WithContext(ctx))
}

func isNotYetCreated(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	switch restErr.Message.Code {
	case discordgo.ErrCodeUnknownWebhook, discordgo.ErrCodeUnknownMessage:
		return true
	}
	return false
}

func (r *Responder) ReplyEphemeral(ctx context.Context, text string) error {
	err := r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		return fmt.Errorf("ephemeral reply: %w", err)
	}
	return nil
}

// Update edits the message the component belongs to.
func (r *Responder) Update(ctx context.Context, v outbound.View) error {
	err := r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: template.BuildResponseData(v),
	})
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return nil
}

func (r *Responder) OpenModal(ctx context.Context, m outbound.Modal) error {
	if err := r.respond(ctx, template.BuildModal(m)); err != nil {
		return fmt.Errorf("open modal: %w", err)
	}
	return nil
}

func (r *Responder) DeferUpdate(ctx context.Context) error {
	err := r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		return fmt.Errorf("defer update: %w", err)
	}
	return nil
}

var errNotAcknowledged = errors.New("interaction not acknowledged yet")

func (r *Responder) EditOriginal(ctx context.Context, v outbound.View) error {
	if !r.Acknowledged() {
		return errNotAcknowledged
	}
	if _, err := r.api.InteractionResponseEdit(r.interaction, template.BuildWebhookEdit(v), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("edit original response: %w", err)
	}
	return nil
}

func (r *Responder) FollowupEphemeral(ctx context.Context, text string) error {
	if !r.Acknowledged() {
		return errNotAcknowledged
	}
	_, err := r.api.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ephemeral followup: %w", err)
	}
	return nil
}

func (r *Responder) Acknowledged() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acked
}
