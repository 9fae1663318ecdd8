package notification

import (
	"context"
	"log/slog"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

// LogSink writes every audit record as one structured log line, so that a
// log collector can pick them up without any other sink configured.
type LogSink struct {
	logger *slog.Logger
}

var _ outbound.AuditSink = (*LogSink)(nil)

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "audit")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Record(ctx context.Context, l model.AuditLog) error {
	attrs := []any{
		"auditID", l.ID,
		"eventType", l.EventType,
		"sessionKey", l.SessionKey,
		"guildID", l.GuildID,
		"actor", l.Actor,
		"description", l.Description,
	}
	if l.ChannelID != "" {
		attrs = append(attrs, "channelID", l.ChannelID)
	}
	for k, v := range l.Metadata {
		attrs = append(attrs, "meta."+k, v)
	}
	s.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}
