package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/devparam-core/internal/audit"
)

// handleListAudit returns the parameter audit trail, most recent first.
//
// Query parameters: device, action, group_id, param, limit, offset.
// group_id and param accept decimal or 0x-prefixed hex.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit store not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Device: q.Get("device"),
		Action: q.Get("action"),
	}

	if v := q.Get("group_id"); v != "" {
		id, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			writeBadRequest(w, "invalid group_id")
			return
		}
		filter.GroupID = &id
	}
	if v := q.Get("param"); v != "" {
		p, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			writeBadRequest(w, "invalid param")
			return
		}
		filter.Param = &p
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
		s.logger.Error("audit list failed", "error", err)
		writeInternalError(w, "failed to query audit trail")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
