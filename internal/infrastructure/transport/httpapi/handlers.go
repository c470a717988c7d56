package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/kodflow/daemon/internal/application/controlapi"
)

// selectorRequest is the wire shape for start/stop/status requests,
// mirroring controlapi.Selector's `ids|tags|all` argument shape.
type selectorRequest struct {
	IDs  []string `json:"ids,omitempty"`
	Tags []string `json:"tags,omitempty"`
	All  bool     `json:"all,omitempty"`
}

func (r selectorRequest) toSelector() controlapi.Selector {
	return controlapi.Selector{IDs: r.IDs, Tags: r.Tags, All: r.All}
}

func decodeSelector(r *http.Request) (controlapi.Selector, error) {
	if r.ContentLength == 0 {
		return controlapi.Selector{All: true}, nil
	}
	var req selectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return controlapi.Selector{}, err
	}
	return req.toSelector(), nil
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}
	sel, err := decodeSelector(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.api.Start(sel))
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}
	sel, err := decodeSelector(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.api.Stop(sel))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sel := controlapi.Selector{}
	if r.Method == http.MethodPost {
		var err error
		sel, err = decodeSelector(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	} else if ids := r.URL.Query()["id"]; len(ids) > 0 {
		sel.IDs = ids
	}
	writeJSON(w, http.StatusOK, s.api.Status(sel))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}
	result, err := s.api.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDaemonStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}
	s.api.DaemonStop()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "shutting down"})
}

// cleanupRequest names the orphaned ServiceIDs a cleanup(ids) call targets.
type cleanupRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleOrphans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.api.Orphans())
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}
	var req cleanupRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.api.Cleanup(req.IDs))
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("service")
	if name == "" {
		writeError(w, http.StatusBadRequest, errMissingService)
		return
	}
	path, err := s.api.Logs(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}
