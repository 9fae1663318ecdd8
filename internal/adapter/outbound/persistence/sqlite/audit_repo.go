package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

// AuditRepo implements outbound.AuditRepository using SQLite.
type AuditRepo struct {
	db *sql.DB
}

var _ outbound.AuditRepository = (*AuditRepo)(nil)

func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{db: store.DB}
}

func (r *AuditRepo) Name() string { return "sqlite" }

// Record inserts a new audit log row.
func (r *AuditRepo) Record(ctx context.Context, log model.AuditLog) error {
	meta, err := marshalStringMap(log.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling audit metadata: %w", err)
	}

	const q = `INSERT INTO audit_logs
		(id, event_type, session_key, guild_id, actor, channel_id, description, metadata, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)`

	_, err = r.db.ExecContext(ctx, q,
		log.ID, string(log.EventType),
		log.SessionKey, log.GuildID,
		log.Actor, log.ChannelID, log.Description,
		meta, log.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}

var allowedAuditOrderColumns = map[string]bool{
	"created_at": true, "event_type": true, "actor": true, "guild_id": true,
}

// List returns a paginated, filtered list of audit logs.
func (r *AuditRepo) List(ctx context.Context, filter outbound.AuditFilter, page outbound.PageRequest) (outbound.PageResult[model.AuditLog], error) {
	where, args := buildAuditWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs"+where, args...).Scan(&total); err != nil {
		return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("counting audit logs: %w", err)
	}

	orderCol := "created_at"
	if page.OrderBy != "" {
		if !allowedAuditOrderColumns[page.OrderBy] {
			return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("invalid order column: %q", page.OrderBy)
		}
		orderCol = page.OrderBy
	}
	dir := "ASC"
	if page.Desc {
		dir = "DESC"
	}
	size := page.Size
	if size <= 0 {
		size = 20
	}
	offset := max(page.Page, 0) * size

	dataQ := fmt.Sprintf(`SELECT id, event_type, session_key, guild_id, actor, channel_id, description, metadata, created_at
		FROM audit_logs%s ORDER BY %s %s, id %s LIMIT ? OFFSET ?`, where, orderCol, dir, dir)

	rows, err := r.db.QueryContext(ctx, dataQ, append(args, size, offset)...)
	if err != nil {
		return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("listing audit logs: %w", err)
	}
	defer rows.Close()

	items := []model.AuditLog{}
	for rows.Next() {
		l, err := scanAuditLog(rows)
		if err != nil {
			return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("scanning audit log: %w", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("iterating audit logs: %w", err)
	}

	return outbound.PageResult[model.AuditLog]{
		Items:      items,
		TotalCount: total,
		Page:       page.Page,
		Size:       size,
	}, nil
}

// Trail returns every record of one session in the order it happened.
func (r *AuditRepo) Trail(ctx context.Context, sessionKey string) ([]model.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, event_type, session_key, guild_id, actor, channel_id, description, metadata, created_at
		FROM audit_logs WHERE session_key = ? ORDER BY created_at ASC, id ASC`, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("querying session trail: %w", err)
	}
	defer rows.Close()

	trail := []model.AuditLog{}
	for rows.Next() {
		l, err := scanAuditLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning audit log: %w", err)
		}
		trail = append(trail, l)
	}
	return trail, rows.Err()
}

// Prune deletes records created before cutoff and returns how many were
// removed.
func (r *AuditRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM audit_logs WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning audit logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning audit logs: %w", err)
	}
	return n, nil
}

type auditScanner interface {
	Scan(dest ...any) error
}

func scanAuditLog(s auditScanner) (model.AuditLog, error) {
	var l model.AuditLog
	var eventType, metaJSON string

	err := s.Scan(
		&l.ID, &eventType, &l.SessionKey, &l.GuildID,
		&l.Actor, &l.ChannelID, &l.Description,
		&metaJSON, &l.CreatedAt,
	)
	if err != nil {
		return model.AuditLog{}, err
	}
	l.EventType = model.AuditEventType(eventType)
	if err := json.Unmarshal([]byte(metaJSON), &l.Metadata); err != nil {
		l.Metadata = make(map[string]string)
	}
	return l, nil
}

func buildAuditWhere(f outbound.AuditFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.EventType != "" {
		clauses = append(clauses, "event_type = ?")
		args = append(args, f.EventType)
	}
	if f.GuildID != "" {
		clauses = append(clauses, "guild_id = ?")
		args = append(args, f.GuildID)
	}
	if f.Actor != "" {
		clauses = append(clauses, "actor = ?")
		args = append(args, f.Actor)
	}
	if f.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}
	if f.Until != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, f.Until.UTC())
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func marshalStringMap(m map[string]string) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
