package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/nerrad567/devparam-core/internal/command"
)

// setParamRequest is the request body for PUT /params.
type setParamRequest struct {
	Handle int    `json:"handle"`
	Param  uint64 `json:"param"`
	Value  int64  `json:"value"`
	Flags  uint32 `json:"flags,omitempty"`
}

// handleSetParam runs a set-parameter command through the validation
// pipeline and records the outcome in the event sinks on success.
func (s *Server) handleSetParam(w http.ResponseWriter, r *http.Request) {
	var req setParamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	caller := callerFrom(r)
	g, err := s.validator.SetParam(caller, command.SetRequest{
		Handle: req.Handle,
		Param:  req.Param,
		Value:  req.Value,
		Flags:  req.Flags,
	})
	if err != nil {
		writeParamError(w, err)
		return
	}

	// Recording is best-effort and must not fail the request, so sink
	// errors are swallowed inside the recorder. The validator returned
	// the group it mutated, so a handle closed or group destroyed since
	// cannot make the event vanish.
	s.recorder.ParamSet(g.ID(), g.Name(), req.Param, req.Value, int64(caller.UID))

	writeJSON(w, http.StatusOK, map[string]any{
		"handle": req.Handle,
		"param":  req.Param,
		"value":  req.Value,
	})
}

// handleGetParam reads a parameter through the validation pipeline.
// The handle and param query values accept decimal or 0x-prefixed hex.
func (s *Server) handleGetParam(w http.ResponseWriter, r *http.Request) {
	handle, err := strconv.Atoi(r.URL.Query().Get("handle"))
	if err != nil {
		writeBadRequest(w, "handle query parameter is required")
		return
	}
	paramID, err := strconv.ParseUint(r.URL.Query().Get("param"), 0, 64)
	if err != nil {
		writeBadRequest(w, "param query parameter is required")
		return
	}

	value, err := s.validator.GetParam(callerFrom(r), command.GetRequest{
		Handle: handle,
		Param:  paramID,
	})
	if err != nil {
		writeParamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"handle": handle,
		"param":  paramID,
		"value":  value,
	})
}
