package api

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-notes/internal/document"
)

// handleStream sends a note block by block over a websocket, one JSON event
// per message. The client only reads.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	q := queryFrom(r)
	if q.GradeLevel == "" {
		q.GradeLevel = h.resolver.DefaultGrade()
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	m, ok := h.resolver.Lookup(ctx, q)
	if !ok {
		conn.Close(websocket.StatusPolicyViolation, errNotAvailable)
		return
	}

	sent := 0
	for ev := range document.Stream(m.Notes, h.renderer) {
		if err := wsjson.Write(ctx, conn, ev); err != nil {
			slog.Debug("notes stream aborted",
				"note_id", m.Notes.ID,
				"sent", sent,
				"error", err,
			)
			return
		}
		sent++
	}

	slog.Debug("notes streamed", "note_id", m.Notes.ID, "events", sent)
	conn.Close(websocket.StatusNormalClosure, "")
}
