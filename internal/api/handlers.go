package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/storemap-cli/internal/cluster"
	"github.com/sells-group/storemap-cli/internal/export"
	"github.com/sells-group/storemap-cli/internal/model"
	"github.com/sells-group/storemap-cli/internal/store"
)

// clusterRequest is the POST /cluster body.
type clusterRequest struct {
	Stores    []model.Store `json:"stores"`
	EpsMeters float64       `json:"eps_meters"`
	MinPoints int           `json:"min_points"`
	Source    string        `json:"source"`
	Save      bool          `json:"save"`
}

// clusterResponse wraps a run result, with the persisted run id when the
// caller asked to save.
type clusterResponse struct {
	RunID  string          `json:"run_id,omitempty"`
	Result *cluster.Result `json:"result"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	var req clusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Callers send arbitrary size strings; keep the breakdown on the
	// closed class set.
	for i := range req.Stores {
		if !model.ValidSize(req.Stores[i].Size) {
			req.Stores[i].Size = model.SizeUnknown
		}
	}

	eps := req.EpsMeters
	if eps == 0 {
		eps = s.defaults.EpsMeters
	}
	minPts := req.MinPoints
	if minPts == 0 {
		minPts = s.defaults.MinPoints
	}

	p := cluster.NewPipeline(cluster.WithPipelineWorkers(s.defaults.Workers))
	result, err := p.Run(req.Stores, eps, minPts)
	if err != nil {
		switch {
		case eris.Is(err, cluster.ErrEmptyInput), eris.Is(err, cluster.ErrInvalidParameter):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			zap.L().Error("cluster request failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "clustering failed")
		}
		return
	}

	resp := clusterResponse{Result: result}
	if req.Save {
		if s.store == nil {
			writeError(w, http.StatusServiceUnavailable, "run persistence not configured")
			return
		}
		source := req.Source
		if source == "" {
			source = "api"
		}
		run, err := s.store.CreateRun(r.Context(), source, eps, minPts, len(req.Stores), result)
		if err != nil {
			zap.L().Error("save run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "save run failed")
			return
		}
		resp.RunID = run.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run persistence not configured")
		return
	}

	filter := store.RunFilter{Source: r.URL.Query().Get("source")}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []model.ClusterRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.fetchRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run persistence not configured")
		return
	}

	err := s.store.DeleteRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		zap.L().Error("delete run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "delete run failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRunGeoJSON(w http.ResponseWriter, r *http.Request) {
	run, ok := s.fetchRun(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := export.WriteGeoJSON(w, export.RunFeatureCollection(*run)); err != nil {
		zap.L().Error("encode geojson failed", zap.Error(err))
	}
}

// fetchRun loads the run named by the id URL param, writing the error
// response itself when the load fails.
func (s *Server) fetchRun(w http.ResponseWriter, r *http.Request) (*model.ClusterRun, bool) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run persistence not configured")
		return nil, false
	}

	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return nil, false
		}
		zap.L().Error("get run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed")
		return nil, false
	}
	return run, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
