package opsapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
	"github.com/jonny/helpdesk-bot/pkg/apierror"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type auditPage struct {
	Items      []model.AuditLog `json:"items"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
}

// AuditHandler lists audit records, newest first.
//
// Query parameters: page (0-based), size, event_type, guild, actor, since and
// until (RFC 3339).
func AuditHandler(repo outbound.AuditRepository, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, page, apiErr := parseAuditQuery(r)
		if apiErr != nil {
			apierror.Write(w, apiErr)
			return
		}

		res, err := repo.List(r.Context(), filter, page)
		if err != nil {
			logger.Error("listing audit logs failed", "error", err)
			apierror.Write(w, apierror.From(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(auditPage{
			Items:      res.Items,
			TotalCount: res.TotalCount,
			Page:       res.Page,
			Size:       res.Size,
		})
	}
}

// SessionTrailHandler returns every record of the session in the {key} path
// segment, oldest first.
func SessionTrailHandler(repo outbound.AuditRepository, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")
		trail, err := repo.Trail(r.Context(), key)
		if err != nil {
			logger.Error("loading session trail failed", "sessionKey", key, "error", err)
			apierror.Write(w, apierror.From(err))
			return
		}
		if len(trail) == 0 {
			apierror.Write(w, apierror.NotFound("session "+key))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(trail)
	}
}

func parseAuditQuery(r *http.Request) (outbound.AuditFilter, outbound.PageRequest, *apierror.Error) {
	q := r.URL.Query()
	page := outbound.PageRequest{Size: defaultPageSize, OrderBy: "created_at", Desc: true}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return outbound.AuditFilter{}, page, apierror.BadRequest("page must be a non-negative integer")
		}
		page.Page = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageSize {
			return outbound.AuditFilter{}, page, apierror.WithDetail(http.StatusBadRequest,
				"invalid size", "size must be between 1 and "+strconv.Itoa(maxPageSize))
		}
		page.Size = n
	}

	filter := outbound.AuditFilter{
		EventType: q.Get("event_type"),
		GuildID:   q.Get("guild"),
		Actor:     q.Get("actor"),
	}
	for name, dst := range map[string]**time.Time{"since": &filter.Since, "until": &filter.Until} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return outbound.AuditFilter{}, page, apierror.BadRequest(name + " must be an RFC 3339 timestamp")
		}
		*dst = &t
	}
	return filter, page, nil
}
