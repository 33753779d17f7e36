package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
	"github.com/dgallion1/chunkdown/internal/compare"
	"github.com/dgallion1/chunkdown/internal/splitter"
)

// maxCompareRuns bounds the configurations accepted by one compare request.
const maxCompareRuns = 32

type compareRun struct {
	Name    string          `json:"name,omitempty"`
	Options json.RawMessage `json:"options"`
}

type compareRequest struct {
	Text string       `json:"text"`
	Runs []compareRun `json:"runs"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.Runs) == 0 {
		jsonError(w, "at least one run is required", http.StatusBadRequest)
		return
	}
	if len(req.Runs) > maxCompareRuns {
		jsonError(w, fmt.Sprintf("at most %d runs are allowed", maxCompareRuns), http.StatusBadRequest)
		return
	}

	runs := make([]compare.Run, len(req.Runs))
	for i, run := range req.Runs {
		var opts splitter.Options = s.defaultOptions()
		if len(run.Options) > 0 {
			var err error
			if opts, err = splitter.Decode(run.Options); err != nil {
				jsonError(w, fmt.Sprintf("run %d: %v", i, err), http.StatusBadRequest)
				return
			}
		}
		runs[i] = compare.Run{Name: run.Name, Options: opts}
	}

	results, err := s.runner.Compare(r.Context(), req.Text, runs)
	if err != nil {
		if errors.Is(err, chunkdown.ErrConfig) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Error("compare failed", "runs", len(runs), "error", err)
		jsonError(w, "compare failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	for i := range results {
		if results[i].Chunks == nil && results[i].Error == "" {
			results[i].Chunks = []chunkdown.Chunk{}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
