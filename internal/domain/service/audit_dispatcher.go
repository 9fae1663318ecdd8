package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

// AuditDispatcher fans audit records out to every sink in the background.
// Sink failures are logged and never reach the caller.
type AuditDispatcher struct {
	sinks   []outbound.AuditSink
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewAuditDispatcher(timeout time.Duration, logger *slog.Logger, sinks ...outbound.AuditSink) *AuditDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AuditDispatcher{sinks: sinks, timeout: timeout, logger: logger}
}

// Dispatch returns immediately.
func (d *AuditDispatcher) Dispatch(entry model.AuditLog) {
	for _, sink := range d.sinks {
		d.wg.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := sink.Record(ctx, entry); err != nil {
				d.logger.Warn("audit sink failed",
					"sink", sink.Name(),
					"eventType", entry.EventType,
					"sessionKey", entry.SessionKey,
					"error", err,
				)
			}
		})
	}
}

// Wait blocks until every in-flight dispatch has finished.
func (d *AuditDispatcher) Wait() {
	d.wg.Wait()
}
