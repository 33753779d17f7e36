package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/chunkdown/internal/compare"
	"github.com/dgallion1/chunkdown/internal/config"
	"github.com/dgallion1/chunkdown/internal/mdast"
)

const doc = "# A\n\ncontent1\n\n# B\n\ncontent2"

func testConfig() config.Config {
	return config.Config{
		Chunking: config.ChunkingConfig{ChunkSize: 1000, MaxOverflowRatio: 1.5, Fallback: "boundary"},
		Server:   config.ServerConfig{ListenAddr: ":0", MaxBodyBytes: 1 << 20},
		Compare:  config.CompareConfig{Concurrency: 2, StatsWindow: time.Hour},
		Logging:  config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats := compare.NewStats(cfg.Compare.StatsWindow)
	runner := compare.NewRunner(cfg.Compare.Concurrency, stats, log)
	return NewServer(runner, stats, log, cfg)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func splitBody(t *testing.T, text string, opts any) string {
	t.Helper()
	body := map[string]any{"text": text}
	if opts != nil {
		body["options"] = opts
	}
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIKey = "secret"
	s := newTestServer(t, cfg)

	rec := doJSON(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIKey = "secret"
	s := newTestServer(t, cfg)
	body := splitBody(t, doc, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/split", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/split", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/split", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSplit_WithOptions(t *testing.T) {
	s := newTestServer(t, testConfig())
	opts := map[string]any{"kind": "markdown", "chunk_size": 10, "max_overflow_ratio": 1.5}

	rec := doJSON(t, s, http.MethodPost, "/api/split", splitBody(t, doc, opts))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp splitResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "markdown", string(resp.Kind))
	assert.Equal(t, 2, resp.ChunkCount)
	require.Len(t, resp.Chunks, 2)
	assert.Equal(t, "# A\n\ncontent1", resp.Chunks[0].Text)
	assert.Equal(t, "# B\n\ncontent2", resp.Chunks[1].Text)
	assert.Equal(t, 0, resp.Chunks[0].Start)
}

func TestSplit_DefaultsFromConfig(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := doJSON(t, s, http.MethodPost, "/api/split", splitBody(t, doc, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp splitResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Chunks, 1)
	assert.Equal(t, doc, resp.Chunks[0].Text)
}

func TestSplit_OtherKinds(t *testing.T) {
	s := newTestServer(t, testConfig())
	opts := map[string]any{"kind": "character", "chunk_size": 10}

	rec := doJSON(t, s, http.MethodPost, "/api/split", splitBody(t, doc, opts))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp splitResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "character", string(resp.Kind))
	assert.Len(t, resp.Chunks, 3)
}

func TestSplit_EmptyTextHasEmptyChunkList(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := doJSON(t, s, http.MethodPost, "/api/split", `{"text":"  \n"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"chunks":[]`)
	assert.Contains(t, rec.Body.String(), `"chunk_count":0`)
}

func TestSplit_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := map[string]struct {
		body string
		code int
	}{
		"malformed json":    {`{"text":`, http.StatusBadRequest},
		"unknown field":     {`{"text":"x","size":3}`, http.StatusBadRequest},
		"bad ratio":         {splitBody(t, doc, map[string]any{"kind": "markdown", "chunk_size": 10, "max_overflow_ratio": 0.5}), http.StatusBadRequest},
		"unknown kind":      {splitBody(t, doc, map[string]any{"kind": "semantic"}), http.StatusBadRequest},
		"foreign field":     {splitBody(t, doc, map[string]any{"kind": "markdown", "overlap": 2}), http.StatusBadRequest},
		"too deep to parse": {splitBody(t, strings.Repeat(">", mdast.MaxNesting+50)+" x", nil), http.StatusUnprocessableEntity},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/split", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())

			var resp map[string]string
			decodeBody(t, rec, &resp)
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestSplit_BodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxBodyBytes = 64
	s := newTestServer(t, cfg)

	rec := doJSON(t, s, http.MethodPost, "/api/split", splitBody(t, strings.Repeat("word ", 100), nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCompareAndStats(t *testing.T) {
	s := newTestServer(t, testConfig())
	body := `{"text":` + mustJSON(t, doc) + `,"runs":[
		{"name":"md","options":{"kind":"markdown","chunk_size":10,"max_overflow_ratio":1.5}},
		{"options":{"kind":"paragraph","chunk_size":1000}},
		{"name":"defaults"}
	]}`

	rec := doJSON(t, s, http.MethodPost, "/api/compare", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Results []compare.Result `json:"results"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "md", resp.Results[0].Name)
	assert.Len(t, resp.Results[0].Chunks, 2)
	assert.Equal(t, "paragraph-1", resp.Results[1].Name)
	assert.Len(t, resp.Results[1].Chunks, 1)
	assert.Equal(t, "defaults", resp.Results[2].Name)
	assert.Equal(t, "markdown", string(resp.Results[2].Kind))

	rec = doJSON(t, s, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Window string                      `json:"window"`
		Stats  map[string]compare.Snapshot `json:"stats"`
	}
	decodeBody(t, rec, &stats)
	assert.Equal(t, "1h0m0s", stats.Window)
	assert.Equal(t, 2, stats.Stats["markdown"].Count)
	assert.Equal(t, 1, stats.Stats["paragraph"].Count)
}

func TestCompare_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := doJSON(t, s, http.MethodPost, "/api/compare", `{"text":"x","runs":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/compare", `{"text":"x","runs":[{"options":{"kind":"character","chunk_size":4,"overlap":4}}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "run 0")
}

func TestCompare_PerRunFailure(t *testing.T) {
	s := newTestServer(t, testConfig())
	deep := strings.Repeat(">", mdast.MaxNesting+50) + " x"
	body := `{"text":` + mustJSON(t, deep) + `,"runs":[{"name":"md"},{"name":"chars","options":{"kind":"character","chunk_size":500}}]}`

	rec := doJSON(t, s, http.MethodPost, "/api/compare", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []compare.Result `json:"results"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Results, 2)
	assert.NotEmpty(t, resp.Results[0].Error)
	assert.Empty(t, resp.Results[1].Error)
	assert.NotEmpty(t, resp.Results[1].Chunks)
}

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/split/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSplitUpload(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := uploadRequest(t, "../../notes/doc.md", doc, map[string]string{"chunk_size": "10"})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp splitResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "doc.md", resp.Filename)
	require.Len(t, resp.Chunks, 2)
	assert.Equal(t, "# B\n\ncontent2", resp.Chunks[1].Text)
}

func TestSplitUpload_OptionsField(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := uploadRequest(t, "data.csv", "a,b\n1,2\n", map[string]string{"options": `{"kind":"paragraph","chunk_size":500}`})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp splitResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "paragraph", string(resp.Kind))
	require.NotEmpty(t, resp.Chunks)
	assert.Contains(t, resp.Chunks[0].Text, "| a | b |")
}

func TestSplitUpload_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := map[string]struct {
		filename string
		fields   map[string]string
		code     int
	}{
		"unsupported type": {"run.exe", nil, http.StatusBadRequest},
		"bad chunk size":   {"doc.md", map[string]string{"chunk_size": "big"}, http.StatusBadRequest},
		"bad ratio":        {"doc.md", map[string]string{"max_overflow_ratio": "0.2"}, http.StatusBadRequest},
		"bad fallback":     {"doc.md", map[string]string{"fallback": "smart"}, http.StatusBadRequest},
		"unreadable pdf":   {"doc.pdf", nil, http.StatusUnprocessableEntity},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Source.PDFFallbackPdftotext = false
			s := newTestServer(t, cfg)
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, uploadRequest(t, tc.filename, doc, tc.fields))
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/split/upload", strings.NewReader("not a form"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"doc.md":           "doc.md",
		"../../etc/passwd": "passwd",
		`dir\evil.md`:      "dir_evil.md",
		"":                 "unnamed",
		"a..b.txt":         "a_b.txt",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}

func TestStatsUnavailable(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(compare.NewRunner(1, nil, log), nil, log, testConfig())

	rec := doJSON(t, s, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
