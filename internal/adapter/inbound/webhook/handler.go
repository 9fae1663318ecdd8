package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jonny/helpdesk-bot/internal/adapter/inbound/discordbot"
	"github.com/jonny/helpdesk-bot/internal/adapter/inbound/webhook/middleware"
	"github.com/jonny/helpdesk-bot/internal/domain/port/inbound"
)

// Discord fails an interaction that is not answered within three seconds.
const defaultAckTimeout = 2500 * time.Millisecond

var errAckWindowClosed = errors.New("interaction acknowledgement window closed")

// HandlerConfig tunes the interactions endpoint.
type HandlerConfig struct {
	// AckTimeout bounds how long the HTTP response waits for the first
	// acknowledgement.
	AckTimeout time.Duration
	// HandlerTimeout bounds the whole interaction, including follow-ups sent
	// after the HTTP response.
	HandlerTimeout time.Duration
}

// Handler receives Discord interactions delivered as HTTP POSTs. The router's
// first acknowledgement becomes the HTTP response body; later edits and
// follow-ups go through REST.
type Handler struct {
	cfg    HandlerConfig
	api    discordbot.InteractionAPI
	port   inbound.InteractionPort
	logger *slog.Logger
}

func NewHandler(cfg HandlerConfig, api discordbot.InteractionAPI, port inbound.InteractionPort, logger *slog.Logger) *Handler {
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}
	return &Handler{cfg: cfg, api: api, port: port, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, ok := middleware.RawBody(r.Context())
	if !ok {
		var err error
		if body, err = io.ReadAll(r.Body); err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
	}
	var interaction discordgo.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		http.Error(w, "invalid interaction payload", http.StatusBadRequest)
		return
	}

	if interaction.Type == discordgo.InteractionPing {
		writeJSON(w, &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})
		return
	}

	env, ok := discordbot.DecodeInteraction(&interaction)
	if !ok {
		http.Error(w, "unsupported interaction type", http.StatusBadRequest)
		return
	}

	first := make(chan *discordgo.InteractionResponse)
	written := make(chan error, 1)
	gone := make(chan struct{})
	done := make(chan struct{})
	defer close(gone)

	initial := func(ctx context.Context, resp *discordgo.InteractionResponse) error {
		select {
		case first <- resp:
		case <-gone:
			return errAckWindowClosed
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case err := <-written:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// The interaction outlives the HTTP request: edits and follow-ups are
	// sent after the response has been written.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.cfg.HandlerTimeout)
	go func() {
		defer cancel()
		defer close(done)
		h.port.Route(ctx, env, discordbot.NewResponder(h.api, &interaction, initial))
	}()

	timer := time.NewTimer(h.cfg.AckTimeout)
	defer timer.Stop()

	select {
	case resp := <-first:
		err := writeJSON(w, resp)
		if err == nil {
			err = http.NewResponseController(w).Flush()
			if errors.Is(err, http.ErrNotSupported) {
				err = nil
			}
		}
		// Released only once the handler returns, so the responder does not
		// fetch the original message while the response is still open.
		defer func() { written <- err }()
	case <-done:
		h.logger.Error("interaction finished without acknowledgement", "kind", env.Kind, "customID", env.CustomID)
		http.Error(w, "interaction not acknowledged", http.StatusInternalServerError)
	case <-timer.C:
		h.logger.Warn("interaction acknowledgement timed out", "kind", env.Kind, "customID", env.CustomID, "timeout", h.cfg.AckTimeout)
		http.Error(w, "acknowledgement timed out", http.StatusServiceUnavailable)
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(v)
}

// HealthHandler returns an http.HandlerFunc for the /health endpoint.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = writeJSON(w, map[string]string{"status": "ok"})
	}
}
