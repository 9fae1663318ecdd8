package outbound

import (
	"context"
	"time"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
)

type PageRequest struct {
	Page    int
	Size    int
	OrderBy string
	Desc    bool
}

type PageResult[T any] struct {
	Items      []T
	TotalCount int64
	Page       int
	Size       int
}

type AuditFilter struct {
	EventType string
	GuildID   string
	Actor     string
	Since     *time.Time
	Until     *time.Time
}

// AuditSink receives audit records for external collection.
type AuditSink interface {
	Name() string
	Record(ctx context.Context, log model.AuditLog) error
}

// AuditRepository is a queryable audit sink.
type AuditRepository interface {
	AuditSink
	List(ctx context.Context, filter AuditFilter, page PageRequest) (PageResult[model.AuditLog], error)
	// Trail returns one session's records, oldest first.
	Trail(ctx context.Context, sessionKey string) ([]model.AuditLog, error)
}
