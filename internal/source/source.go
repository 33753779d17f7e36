// Package source turns documents of various formats into markdown that the
// splitters can work on.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Loader converts raw document bytes into markdown.
type Loader interface {
	Load(r io.Reader, filename string) (string, error)
}

// Options tunes loaders that have knobs.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions that can be loaded.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate loader for a filename.
func ForFile(filename string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextLoader{}, nil
	case ".md", ".markdown":
		return &MarkdownLoader{}, nil
	case ".csv":
		return &CSVLoader{}, nil
	case ".html", ".htm":
		return &HTMLLoader{}, nil
	case ".pdf":
		return &PDFLoader{}, nil
	case ".docx":
		return &DOCXLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// LoadFile reads path with the loader its extension selects.
func LoadFile(path string, opts Options) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	md, err := Load(f, filepath.Base(path), opts)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	return md, nil
}

// Load converts r to markdown with the loader filename's extension selects.
func Load(r io.Reader, filename string, opts Options) (string, error) {
	l, err := ForFile(filename)
	if err != nil {
		return "", err
	}
	if p, ok := l.(*PDFLoader); ok {
		p.FallbackPdftotext = opts.PDFFallbackPdftotext
	}
	return l.Load(r, filename)
}

// spool copies r to a temp file for libraries that need a ReaderAt and a
// size. The caller must run cleanup.
func spool(r io.Reader, pattern string) (f *os.File, size int64, cleanup func(), err error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup = func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	size, err = io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return nil, 0, nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, 0, nil, fmt.Errorf("seek temp file: %w", err)
	}
	return tmp, size, cleanup, nil
}
