// Package api serves resolved and rendered notes over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/p-n-ai/pai-notes/internal/content"
	"github.com/p-n-ai/pai-notes/internal/document"
	"github.com/p-n-ai/pai-notes/internal/mathrender"
	"github.com/p-n-ai/pai-notes/internal/notes"
)

const maxBodyBytes = 1 << 20

// errNotAvailable is the message shown when no table has a topic.
const errNotAvailable = "notes not available"

// DocCache stores rendered documents. *cache.Cache implements it.
type DocCache interface {
	Get(ctx context.Context, key string, v any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

// Handler serves the notes API.
type Handler struct {
	resolver *notes.Resolver
	renderer *mathrender.Renderer
	docs     DocCache
	keyFn    func(parts ...string) string
}

// Option configures a Handler.
type Option func(*Handler)

// WithCache caches rendered documents in docs under keys built by keyFn.
func WithCache(docs DocCache, keyFn func(parts ...string) string) Option {
	return func(h *Handler) {
		h.docs = docs
		h.keyFn = keyFn
	}
}

// New creates a handler.
func New(res *notes.Resolver, r *mathrender.Renderer, opts ...Option) *Handler {
	h := &Handler{resolver: res, renderer: r}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/notes", h.handleNotes)
	mux.HandleFunc("GET /v1/notes/exists", h.handleExists)
	mux.HandleFunc("GET /v1/notes/stream", h.handleStream)
	mux.HandleFunc("GET /v1/index", h.handleIndex)
	mux.HandleFunc("POST /v1/parse", h.handleParse)
	mux.HandleFunc("POST /v1/render", h.handleRender)
}

func queryFrom(r *http.Request) notes.Query {
	q := r.URL.Query()
	return notes.Query{
		Topic:      q.Get("topic"),
		GradeLevel: q.Get("grade"),
		FormLevel:  q.Get("form"),
	}
}

func (h *Handler) handleNotes(w http.ResponseWriter, r *http.Request) {
	q := queryFrom(r)
	if q.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	if q.GradeLevel == "" {
		q.GradeLevel = h.resolver.DefaultGrade()
	}

	m, ok := h.resolver.Lookup(r.Context(), q)
	if !ok {
		writeError(w, http.StatusNotFound, errNotAvailable)
		return
	}

	doc := h.document(r.Context(), m.Notes)
	w.Header().Set("X-Notes-Table", string(m.Table))
	writeJSON(w, http.StatusOK, doc)
}

// document renders n, going through the cache when one is configured. Cache
// failures are logged and never fail the request.
func (h *Handler) document(ctx context.Context, n *notes.TopicNotes) document.Document {
	if h.docs == nil {
		return document.Build(n, h.renderer)
	}

	key := h.keyFn(h.resolver.Catalog().Version(), n.ID, strconv.Itoa(h.renderer.MaxExprLen()))
	var doc document.Document
	hit, err := h.docs.Get(ctx, key, &doc)
	if err != nil {
		slog.Warn("document cache read failed", "note_id", n.ID, "error", err)
	}
	if hit {
		return doc
	}

	doc = document.Build(n, h.renderer)
	if err := h.docs.Set(ctx, key, doc); err != nil {
		slog.Warn("document cache write failed", "note_id", n.ID, "error", err)
	}
	return doc
}

func (h *Handler) handleExists(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"topic":  topic,
		"exists": h.resolver.HasNotes(topic),
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	c := h.resolver.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"version": c.Version(),
		"notes":   c.Len(),
		"entries": c.Index(),
	})
}

type parseRequest struct {
	Content string `json:"content"`
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !readJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"segments": content.ParseAll(req.Content),
	})
}

type renderRequest struct {
	Expr string `json:"expr"`
	Mode string `json:"mode"`
}

func (h *Handler) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !readJSON(w, r, &req) {
		return
	}
	mode, err := mathrender.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.renderer.Render(req.Expr, mode))
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
