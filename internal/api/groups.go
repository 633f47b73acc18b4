package api

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/devparam-core/internal/group"
)

// groupResponse is the JSON shape of a group.
type groupResponse struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name,omitempty"`
	Hierarchy string `json:"hierarchy"`
	OwnerUID  int    `json:"owner_uid"`
	OwnerGID  int    `json:"owner_gid"`
	Mode      string `json:"mode"`
}

func toGroupResponse(g *group.Group) groupResponse {
	return groupResponse{
		ID:        g.ID(),
		Name:      g.Name(),
		Hierarchy: string(g.Hierarchy()),
		OwnerUID:  g.OwnerUID(),
		OwnerGID:  g.OwnerGID(),
		Mode:      "0" + strconv.FormatUint(uint64(g.Mode().Perm()), 8),
	}
}

// groupFromRequest resolves the {id} URL parameter to a live group.
func (s *Server) groupFromRequest(w http.ResponseWriter, r *http.Request) (*group.Group, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid group id")
		return nil, false
	}
	g, ok := s.groups.Lookup(id)
	if !ok {
		writeNotFound(w, "group not found")
		return nil, false
	}
	return g, true
}

// handleListGroups returns all live groups.
func (s *Server) handleListGroups(w http.ResponseWriter, _ *http.Request) {
	groups := s.groups.List()
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": out,
		"total":  len(out),
	})
}

// createGroupRequest is the request body for POST /groups.
type createGroupRequest struct {
	Name      string `json:"name"`
	Hierarchy string `json:"hierarchy,omitempty"`
	OwnerUID  int    `json:"owner_uid"`
	OwnerGID  int    `json:"owner_gid"`
	Mode      string `json:"mode,omitempty"` // octal string, e.g. "0644"
}

// handleCreateGroup creates a group.
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	spec := group.Spec{
		Name:      req.Name,
		Hierarchy: group.Hierarchy(req.Hierarchy),
		OwnerUID:  req.OwnerUID,
		OwnerGID:  req.OwnerGID,
	}
	if req.Mode != "" {
		mode, err := strconv.ParseUint(req.Mode, 8, 32)
		if err != nil || mode > 0o777 {
			writeBadRequest(w, "mode must be an octal permission string")
			return
		}
		spec.Mode = fs.FileMode(mode)
	}
	switch spec.Hierarchy {
	case "", group.HierarchyUnified, group.HierarchyLegacy:
	default:
		writeBadRequest(w, "hierarchy must be \"unified\" or \"legacy\"")
		return
	}

	g := s.groups.Create(spec)
	writeJSON(w, http.StatusCreated, toGroupResponse(g))
}

// handleGetGroup returns a single group.
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, ok := s.groupFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(g))
}

// handleDestroyGroup destroys a group. Parameter records attached to it
// are freed through the destruction broadcast before this returns.
func (s *Server) handleDestroyGroup(w http.ResponseWriter, r *http.Request) {
	g, ok := s.groupFromRequest(w, r)
	if !ok {
		return
	}
	s.groups.Destroy(g)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        g.ID(),
		"destroyed": true,
	})
}

// handleOpenHandle opens a handle on a group. Parameter requests refer to
// groups by handle, never by raw id, so a recycled id cannot be confused
// with the group it used to name.
func (s *Server) handleOpenHandle(w http.ResponseWriter, r *http.Request) {
	g, ok := s.groupFromRequest(w, r)
	if !ok {
		return
	}
	h, err := s.groups.OpenHandle(g)
	if err != nil {
		writeNotFound(w, "group not found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"handle":   h,
		"group_id": g.ID(),
	})
}

// handleCloseHandle releases a handle.
func (s *Server) handleCloseHandle(w http.ResponseWriter, r *http.Request) {
	h, err := strconv.Atoi(chi.URLParam(r, "handle"))
	if err != nil {
		writeBadRequest(w, "invalid handle")
		return
	}
	s.groups.CloseHandle(h)
	writeJSON(w, http.StatusOK, map[string]any{
		"handle": h,
		"closed": true,
	})
}

// handleGroupRuntime returns the parameter values the driver runtime
// currently observes for the group, defaults included. This is the
// accessor view: it reflects what scheduling actually uses, not just
// what was explicitly configured.
func (s *Server) handleGroupRuntime(w http.ResponseWriter, r *http.Request) {
	g, ok := s.groupFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"group_id":        g.ID(),
		"priority_offset": s.accessor.CurrentPriorityOffset(g),
		"display_boost":   s.accessor.CurrentDisplayBoost(g),
	})
}
