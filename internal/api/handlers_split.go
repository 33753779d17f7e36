package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
	"github.com/dgallion1/chunkdown/internal/mdast"
	"github.com/dgallion1/chunkdown/internal/splitter"
)

type splitRequest struct {
	Text    string          `json:"text"`
	Options json.RawMessage `json:"options,omitempty"`
}

type splitResponse struct {
	Kind       splitter.Kind     `json:"kind"`
	Chunks     []chunkdown.Chunk `json:"chunks"`
	ChunkCount int               `json:"chunk_count"`
	DurationUs int64             `json:"duration_us"`
	Filename   string            `json:"filename,omitempty"`
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	opts, err := s.options(req.Options)
	if err != nil {
		splitError(w, err)
		return
	}
	resp, err := s.split(req.Text, opts)
	if err != nil {
		splitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// split runs one splitter and records its latency.
func (s *Server) split(text string, opts splitter.Options) (*splitResponse, error) {
	sp, err := splitter.New(opts)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	chunks, err := sp.Split(text)
	elapsed := time.Since(start)
	if err != nil {
		s.log.Warn("split failed", "kind", sp.Kind(), "bytes", len(text), "error", err)
		return nil, err
	}
	if s.stats != nil {
		s.stats.Record(sp.Kind(), elapsed)
	}
	if chunks == nil {
		chunks = []chunkdown.Chunk{}
	}
	return &splitResponse{
		Kind:       sp.Kind(),
		Chunks:     chunks,
		ChunkCount: len(chunks),
		DurationUs: elapsed.Microseconds(),
	}, nil
}

// options decodes a request's splitter options. Without any, the configured
// markdown defaults apply.
func (s *Server) options(raw json.RawMessage) (splitter.Options, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return s.defaultOptions(), nil
	}
	return splitter.Decode(raw)
}

func (s *Server) defaultOptions() splitter.MarkdownOptions {
	c := s.cfg.ChunkConfig()
	return splitter.MarkdownOptions{ChunkSize: c.ChunkSize, MaxOverflowRatio: c.MaxOverflowRatio, Fallback: c.Fallback}
}

// decodeJSON reads a size-limited JSON body into v. It writes the error
// response and returns false on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("request body exceeds %d bytes", tooBig.Limit), http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// splitError maps splitter errors onto HTTP statuses.
func splitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chunkdown.ErrConfig):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, mdast.ErrParse):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		jsonError(w, "split failed: "+err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
