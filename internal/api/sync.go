package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/kevann/nosteq-core/internal/audit"
	"github.com/kevann/nosteq-core/internal/inventory"
	"github.com/kevann/nosteq-core/internal/syncer"
)

// handleSyncStatus returns the last sync result and the stored snapshot
// metadata. Either may be null on a fresh install.
func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"last":     nil,
		"snapshot": nil,
	}
	if s.syncer != nil {
		if last := s.syncer.Last(); last != nil {
			resp["last"] = last
		}
	}

	if s.store != nil {
		meta, err := s.store.Metadata(r.Context())
		switch {
		case errors.Is(err, inventory.ErrNoSnapshot):
		case err != nil:
			s.logger.Error("load snapshot metadata failed", "error", err)
			writeInternalError(w, "failed to load snapshot metadata")
			return
		default:
			resp["snapshot"] = meta
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleSync runs a full sync and returns its result. The cycle runs to
// completion even if the client goes away.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		writeUnavailable(w, "sync is not configured")
		return
	}

	actor := profileFromContext(r.Context()).ID
	res, err := s.syncer.SyncOnce(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, syncer.ErrSyncInProgress):
		writeConflict(w, "a sync is already running")
		return
	case err != nil:
		s.logger.Warn("manual sync failed", "error", err, "requested_by", actor)
		s.auditLog(audit.ActionSync, audit.EntityInventory, "", actor, map[string]any{
			"result": syncer.ResultFailed,
			"error":  err.Error(),
		})
		writeUpstreamError(w, "sync failed: "+err.Error())
		return
	}

	s.logger.Info("manual sync completed",
		"run_id", res.RunID,
		"result", res.Result,
		"saved", res.Saved,
		"requested_by", actor,
	)
	s.auditLog(audit.ActionSync, audit.EntityInventory, res.RunID, actor, map[string]any{
		"result": res.Result,
		"saved":  res.Saved,
	})
	writeJSON(w, http.StatusOK, res)
}
