package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/p-n-ai/pai-notes/internal/api"
	"github.com/p-n-ai/pai-notes/internal/document"
	"github.com/p-n-ai/pai-notes/internal/mathrender"
	"github.com/p-n-ai/pai-notes/internal/notes"
)

func newTestMux(t *testing.T, opts ...api.Option) *http.ServeMux {
	t.Helper()
	c, err := notes.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	h := api.New(
		notes.NewResolver(c, notes.ResolverConfig{}),
		mathrender.NewRenderer(mathrender.RendererConfig{}),
		opts...,
	)
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func do(t *testing.T, mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestNotes(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantNoteID string
		wantTable  string
	}{
		{"default grade", "/v1/notes?topic=Vectors", http.StatusOK, "vectors-o-level", "general"},
		{"form level", "/v1/notes?topic=Vectors&grade=O-Level&form=Form+4", http.StatusOK, "vectors-form-4", "form"},
		{"advanced", "/v1/notes?topic=Vectors&grade=A-Level", http.StatusOK, "vectors-a-level", "advanced"},
		{"alias", "/v1/notes?topic=Vector+Geometry", http.StatusOK, "vectors-o-level", "alias"},
		{"unknown topic", "/v1/notes?topic=Nonexistent", http.StatusNotFound, "", ""},
		{"missing topic", "/v1/notes", http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodGet, tt.target, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var doc document.Document
			if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if doc.NoteID != tt.wantNoteID {
				t.Errorf("NoteID = %q, want %q", doc.NoteID, tt.wantNoteID)
			}
			if got := rec.Header().Get("X-Notes-Table"); got != tt.wantTable {
				t.Errorf("X-Notes-Table = %q, want %q", got, tt.wantTable)
			}
		})
	}
}

func TestNotes_NotFoundBody(t *testing.T) {
	mux := newTestMux(t)
	rec := do(t, mux, http.MethodGet, "/v1/notes?topic=Nonexistent", "")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"notes not available"}` {
		t.Errorf("body = %s", got)
	}
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func (m *memCache) Get(_ context.Context, key string, v any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, v)
}

func (m *memCache) Set(_ context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func TestNotes_Cached(t *testing.T) {
	mc := &memCache{data: map[string][]byte{}}
	mux := newTestMux(t, api.WithCache(mc, func(parts ...string) string {
		return strings.Join(parts, "|")
	}))

	first := do(t, mux, http.MethodGet, "/v1/notes?topic=Vectors", "")
	second := do(t, mux, http.MethodGet, "/v1/notes?topic=Vector+Geometry", "")

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("status = %d, %d, want 200", first.Code, second.Code)
	}
	if mc.sets != 1 {
		t.Errorf("cache sets = %d, want 1", mc.sets)
	}
	if mc.gets != 2 {
		t.Errorf("cache gets = %d, want 2", mc.gets)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached document differs from the rendered one")
	}
}

func TestExists(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		topic string
		want  bool
	}{
		{"Vectors", true},
		{"Konsep Mol", true},
		{"Chemical Equations", false},
		{"Nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			rec := do(t, mux, http.MethodGet, "/v1/notes/exists?topic="+strings.ReplaceAll(tt.topic, " ", "+"), "")
			var body struct {
				Exists bool `json:"exists"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.Exists != tt.want {
				t.Errorf("exists = %v, want %v", body.Exists, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/v1/parse", `{"content":"Factor $x^2$ now"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Segments []struct {
			Kind  string `json:"kind"`
			Value string `json:"value"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Segments) != 3 {
		t.Fatalf("len(segments) = %d, want 3", len(body.Segments))
	}
	if body.Segments[1].Kind != "inline_math" || body.Segments[1].Value != "x^2" {
		t.Errorf("segments[1] = %+v", body.Segments[1])
	}

	if rec := do(t, mux, http.MethodPost, "/v1/parse", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", rec.Code)
	}
}

func TestRender(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		name         string
		body         string
		wantStatus   int
		wantRendered bool
	}{
		{"inline", `{"expr":"x^2"}`, http.StatusOK, true},
		{"display", `{"expr":"\\frac{1}{2}","mode":"display"}`, http.StatusOK, true},
		{"fallback", `{"expr":"\\unknowncmd"}`, http.StatusOK, false},
		{"bad mode", `{"expr":"x","mode":"sideways"}`, http.StatusBadRequest, false},
		{"bad json", `{`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPost, "/v1/render", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var node mathrender.Node
			if err := json.Unmarshal(rec.Body.Bytes(), &node); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if node.Rendered != tt.wantRendered {
				t.Errorf("Rendered = %v, want %v (%+v)", node.Rendered, tt.wantRendered, node)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/v1/index", "")
	var body struct {
		Version string             `json:"version"`
		Notes   int                `json:"notes"`
		Entries []notes.IndexEntry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Version == "" {
		t.Error("version is empty")
	}
	if body.Notes != 7 {
		t.Errorf("notes = %d, want 7", body.Notes)
	}
	if len(body.Entries) == 0 {
		t.Error("entries is empty")
	}
}
