// Package mathrender typesets TeX math expressions into display text.
//
// Rendering is isolated per expression: an expression that cannot be
// typeset yields a fallback Node holding its source, and the failure is
// only logged. Callers never see an error.
package mathrender

import (
	"fmt"
	"log/slog"
	"unicode/utf8"
)

const defaultMaxExprLen = 4096

// Mode selects inline or display layout.
type Mode int

const (
	Inline Mode = iota
	Block
)

func (m Mode) String() string {
	if m == Block {
		return "block"
	}
	return "inline"
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	mode, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseMode converts "inline" or "block" to a Mode. The empty string is inline.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "inline":
		return Inline, nil
	case "block", "display":
		return Block, nil
	}
	return Inline, fmt.Errorf("unknown math mode %q", s)
}

// Node is a rendered expression. When Rendered is false, Text holds the
// unmodified source and Err describes why typesetting failed.
type Node struct {
	Mode     Mode   `json:"mode"`
	Source   string `json:"source"`
	Text     string `json:"text"`
	Rendered bool   `json:"rendered"`
	Err      string `json:"error,omitempty"`
}

// RendererConfig holds renderer limits.
type RendererConfig struct {
	MaxExprLen int // longest expression typeset, in runes (default 4096)
}

// Renderer typesets expressions. It keeps no state between calls and is
// safe for concurrent use.
type Renderer struct {
	maxExprLen int
}

// NewRenderer creates a renderer.
func NewRenderer(cfg RendererConfig) *Renderer {
	maxLen := cfg.MaxExprLen
	if maxLen <= 0 {
		maxLen = defaultMaxExprLen
	}
	return &Renderer{maxExprLen: maxLen}
}

// MaxExprLen returns the longest expression the renderer typesets.
func (r *Renderer) MaxExprLen() int {
	return r.maxExprLen
}

// Render typesets one expression. It always returns a node.
func (r *Renderer) Render(expr string, mode Mode) (node Node) {
	node = Node{Mode: mode, Source: expr}

	defer func() {
		if rec := recover(); rec != nil {
			node = fallback(node, fmt.Errorf("typesetting panicked: %v", rec))
		}
	}()

	if n := utf8.RuneCountInString(expr); n > r.maxExprLen {
		return fallback(node, fmt.Errorf("expression has %d runes, limit is %d", n, r.maxExprLen))
	}

	text, err := typeset(expr)
	if err != nil {
		return fallback(node, err)
	}
	node.Text = text
	node.Rendered = true
	return node
}

func fallback(n Node, err error) Node {
	slog.Debug("math render failed",
		"mode", n.Mode.String(),
		"source", n.Source,
		"error", err,
	)
	n.Text = n.Source
	n.Rendered = false
	n.Err = err.Error()
	return n
}
