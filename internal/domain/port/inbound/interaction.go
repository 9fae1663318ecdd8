package inbound

import (
	"context"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

// InteractionPort handles events from messaging platforms. Route must
// acknowledge every interaction exactly once through the responder; it never
// returns an error because every failure is answered to the user.
type InteractionPort interface {
	Route(ctx context.Context, env model.Envelope, resp outbound.Responder)
	// Observe receives events that need no acknowledgement, such as reactions.
	Observe(ctx context.Context, env model.Envelope)
}
