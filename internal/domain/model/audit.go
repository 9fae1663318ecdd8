package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditEventType string

const (
	AuditSessionStarted AuditEventType = "session.started"
	AuditTicketCreated  AuditEventType = "ticket.created"
	AuditTicketAborted  AuditEventType = "ticket.aborted"
	AuditSessionExpired AuditEventType = "session.expired"
)

type AuditLog struct {
	ID          string            `json:"id"`
	EventType   AuditEventType    `json:"event_type"`
	SessionKey  string            `json:"session_key"`
	GuildID     string            `json:"guild_id"`
	Actor       string            `json:"actor"`
	ChannelID   string            `json:"channel_id"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
}

func NewAuditLog(eventType AuditEventType, sessionKey, guildID, actor, description string) AuditLog {
	return AuditLog{
		ID:          uuid.NewString(),
		EventType:   eventType,
		SessionKey:  sessionKey,
		GuildID:     guildID,
		Actor:       actor,
		Description: description,
		Metadata:    make(map[string]string),
		CreatedAt:   time.Now().UTC(),
	}
}

func (a AuditLog) WithChannelID(channelID string) AuditLog {
	a.ChannelID = channelID
	return a
}

func (a AuditLog) WithMetadata(key, value string) AuditLog {
	meta := make(map[string]string, len(a.Metadata)+1)
	for k, v := range a.Metadata {
		meta[k] = v
	}
	meta[key] = value
	a.Metadata = meta
	return a
}
