package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
	"github.com/dgallion1/chunkdown/internal/source"
	"github.com/dgallion1/chunkdown/internal/splitter"
)

// handleSplitUpload converts an uploaded document to markdown and splits it.
// Options come from an "options" JSON field, or from chunk_size,
// max_overflow_ratio and fallback fields layered over the configured defaults.
func (s *Server) handleSplitUpload(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("upload exceeds %d bytes", s.cfg.Server.MaxBodyBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !source.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	if header.Size > s.cfg.Server.MaxBodyBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.Server.MaxBodyBytes), http.StatusRequestEntityTooLarge)
		return
	}

	opts, err := s.formOptions(r)
	if err != nil {
		splitError(w, err)
		return
	}

	md, err := source.Load(file, filename, source.Options{PDFFallbackPdftotext: s.cfg.Source.PDFFallbackPdftotext})
	if err != nil {
		s.log.Warn("load failed", "filename", filename, "error", err)
		jsonError(w, "failed to load document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp, err := s.split(md, opts)
	if err != nil {
		splitError(w, err)
		return
	}
	resp.Filename = filename
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) formOptions(r *http.Request) (splitter.Options, error) {
	if raw := r.FormValue("options"); raw != "" {
		return splitter.Decode([]byte(raw))
	}

	opts := s.defaultOptions()
	if v := r.FormValue("chunk_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk_size: %v", chunkdown.ErrConfig, err)
		}
		opts.ChunkSize = n
	}
	if v := r.FormValue("max_overflow_ratio"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: max_overflow_ratio: %v", chunkdown.ErrConfig, err)
		}
		opts.MaxOverflowRatio = f
	}
	if v := r.FormValue("fallback"); v != "" {
		opts.Fallback = chunkdown.Fallback(v)
	}
	return opts, nil
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
