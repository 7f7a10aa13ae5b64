package termview

import (
	"fmt"
	"strings"

	"github.com/p-n-ai/pai-notes/internal/document"
	"github.com/p-n-ai/pai-notes/internal/mathrender"
)

const (
	markerOpen     = "▾"
	markerClosed   = "▸"
	markerFallback = "⚠"
)

// Render draws doc. Sections that exp reports as collapsed show only their
// title. A width of 0 leaves lines unwrapped.
func Render(doc document.Document, exp *document.Expansion, theme Theme, width int) string {
	st := theme.styles(width)
	var b strings.Builder

	b.WriteString(st.title.Render(doc.Topic))
	b.WriteString(" ")
	b.WriteString(st.muted.Render(fmt.Sprintf("(%s, %s)", doc.GradeLevel, doc.Subject)))
	b.WriteString("\n\n")
	if len(doc.Summary) > 0 {
		b.WriteString(markdown(rich(doc.Summary, st), st))
		b.WriteString("\n")
	}

	for i, sec := range doc.Sections {
		b.WriteString("\n")
		if !exp.IsExpanded(i) {
			b.WriteString(st.collapsed.Render(fmt.Sprintf("%s %d. %s", markerClosed, i+1, sec.Title)))
			b.WriteString("\n")
			continue
		}
		b.WriteString(st.heading.Render(fmt.Sprintf("%s %d. %s", markerOpen, i+1, sec.Title)))
		b.WriteString("\n")
		b.WriteString(indent(markdown(rich(sec.Content, st), st), "  "))
		b.WriteString("\n")
		for j, ex := range sec.Examples {
			b.WriteString(indent(example(j, ex, st), "  "))
		}
	}

	list(&b, "Key points", doc.KeyPoints, st)
	list(&b, "Exam tips", doc.ExamTips, st)
	list(&b, "Diagrams", doc.VisualDescriptions, st)

	return st.frame.Render(strings.TrimRight(b.String(), "\n"))
}

func example(n int, ex document.Example, st styles) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(st.bold.Render(fmt.Sprintf("Example %d:", n+1)))
	b.WriteString(" ")
	b.WriteString(rich(ex.Question, st))
	b.WriteString("\n")
	for k, step := range ex.Steps {
		fmt.Fprintf(&b, "  %d. %s\n", k+1, rich(step, st))
	}
	if len(ex.FinalAnswer) > 0 {
		b.WriteString("  ")
		b.WriteString(st.bold.Render("Answer:"))
		b.WriteString(" ")
		b.WriteString(rich(ex.FinalAnswer, st))
		b.WriteString("\n")
	}
	return b.String()
}

func list(b *strings.Builder, title string, items []document.Rich, st styles) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(st.heading.Render(title))
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString("  • ")
		b.WriteString(rich(it, st))
		b.WriteString("\n")
	}
}

// rich draws text blocks with inline emphasis and math blocks in the math
// style. Display math gets a line of its own.
func rich(r document.Rich, st styles) string {
	var b strings.Builder
	for _, blk := range r {
		if blk.Math == nil {
			b.WriteString(emphasis(blk.Text, st))
			continue
		}
		m := mathText(*blk.Math, st)
		if blk.Math.Mode != mathrender.Block {
			b.WriteString(m)
			continue
		}
		if s := b.String(); s != "" && !strings.HasSuffix(s, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("    ")
		b.WriteString(m)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func mathText(n mathrender.Node, st styles) string {
	if n.Rendered {
		return st.math.Render(n.Text)
	}
	return st.fallback.Render(markerFallback + " " + n.Source)
}

// emphasis renders **bold** spans. An unpaired marker is left as is.
func emphasis(s string, st styles) string {
	parts := strings.Split(s, "**")
	if len(parts) < 3 {
		return s
	}
	var b strings.Builder
	for i, p := range parts {
		switch {
		case i%2 == 0:
			b.WriteString(p)
		case i == len(parts)-1:
			b.WriteString("**")
			b.WriteString(p)
		default:
			b.WriteString(st.bold.Render(p))
		}
	}
	return b.String()
}

// markdown applies line-level markup: # headings and - or * bullets.
func markdown(s string, st styles) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		switch {
		case strings.HasPrefix(trimmed, "#"):
			lines[i] = st.heading.Render(strings.TrimSpace(strings.TrimLeft(trimmed, "#")))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			lines[i] = "• " + trimmed[2:]
		}
	}
	return strings.Join(lines, "\n")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
