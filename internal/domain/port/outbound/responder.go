package outbound

import (
	"context"
	"errors"
)

// ErrAlreadyAcknowledged is returned when a second initial response is
// attempted for the same interaction.
var ErrAlreadyAcknowledged = errors.New("interaction already acknowledged")

// MessageRef locates a posted message.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Responder answers exactly one inbound interaction. Reply, ReplyEphemeral,
// Update, OpenModal and DeferUpdate are initial responses: exactly one of
// them may succeed per interaction. EditOriginal and FollowupEphemeral may
// follow any number of times.
type Responder interface {
	// Reply posts a public message and returns its location. The returned
	// message becomes the anchor for sessions started by this interaction.
	Reply(ctx context.Context, view View) (MessageRef, error)
	ReplyEphemeral(ctx context.Context, text string) error
	// Update edits the message the triggering component is attached to.
	Update(ctx context.Context, view View) error
	OpenModal(ctx context.Context, modal Modal) error
	// DeferUpdate acknowledges a component event and promises a later
	// EditOriginal.
	DeferUpdate(ctx context.Context) error

	EditOriginal(ctx context.Context, view View) error
	FollowupEphemeral(ctx context.Context, text string) error

	Acknowledged() bool
}
