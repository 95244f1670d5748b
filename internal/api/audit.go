package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kevann/nosteq-core/internal/audit"
)

// auditChanSize is the buffer of the async audit channel. Entries beyond it
// are dropped so a slow disk never blocks a request.
const auditChanSize = 256

// auditLog enqueues an entry for the drain goroutine.
func (s *Server) auditLog(action, entityType, entityID, actorID string, details map[string]any) {
	if s.auditRepo == nil {
		return
	}

	entry := &audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Source:     audit.SourceAPI,
		Details:    details,
	}

	select {
	case s.auditCh <- entry:
	default:
		s.logger.Warn("audit channel full, dropping entry",
			"action", action,
			"entity_type", entityType,
		)
	}
}

// drainAuditLog writes queued entries serially until ctx is cancelled, then
// flushes what is left.
func (s *Server) drainAuditLog(ctx context.Context) {
	write := func(e *audit.Entry) {
		if err := s.auditRepo.Create(context.Background(), e); err != nil {
			s.logger.Error("audit write failed", "action", e.Action, "entity_type", e.EntityType, "error", err)
		}
	}

	for {
		select {
		case e := <-s.auditCh:
			write(e)
		case <-ctx.Done():
			for {
				select {
				case e := <-s.auditCh:
					write(e)
				default:
					return
				}
			}
		}
	}
}

// handleListAuditLogs returns audit entries, most recent first.
//
// Query parameters: action, entity_type, entity_id, actor_id, limit
// (default 50, max 200), offset.
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeUnavailable(w, "audit trail not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		ActorID:    q.Get("actor_id"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("list audit entries failed", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
