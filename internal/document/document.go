// Package document turns resolved notes into displayable documents.
package document

import (
	"strings"

	"github.com/p-n-ai/pai-notes/internal/content"
	"github.com/p-n-ai/pai-notes/internal/mathrender"
	"github.com/p-n-ai/pai-notes/internal/notes"
)

// BlockKind tags a Block.
type BlockKind string

const (
	BlockText BlockKind = "text"
	BlockMath BlockKind = "math"
)

// Block is one displayable piece of a paragraph.
type Block struct {
	Kind BlockKind        `json:"kind"`
	Text string           `json:"text,omitempty"`
	Math *mathrender.Node `json:"math,omitempty"`
}

// Rich is a parsed and rendered piece of note text.
type Rich []Block

// Example is a rendered worked example.
type Example struct {
	Question    Rich   `json:"question"`
	Steps       []Rich `json:"steps"`
	FinalAnswer Rich   `json:"final_answer"`
}

// Section is a rendered note section.
type Section struct {
	Title    string    `json:"title"`
	Content  Rich      `json:"content"`
	Examples []Example `json:"examples"`
}

// Document is a fully rendered note, ready for display.
type Document struct {
	NoteID             string    `json:"note_id"`
	Topic              string    `json:"topic"`
	Subject            string    `json:"subject"`
	GradeLevel         string    `json:"grade_level"`
	Summary            Rich      `json:"summary"`
	Sections           []Section `json:"sections"`
	KeyPoints          []Rich    `json:"key_points"`
	ExamTips           []Rich    `json:"exam_tips"`
	VisualDescriptions []Rich    `json:"visual_descriptions"`
	Unrendered         int       `json:"unrendered_math"`
}

// Build renders every part of n. Math that cannot be typeset is kept as a
// fallback block and counted in Unrendered; nothing in a note stops the rest
// of it from rendering.
func Build(n *notes.TopicNotes, r *mathrender.Renderer) Document {
	b := builder{r: r}
	doc := Document{
		NoteID:             n.ID,
		Topic:              n.Topic,
		Subject:            string(n.Subject),
		GradeLevel:         n.GradeLevel,
		Summary:            b.rich(n.Summary),
		Sections:           make([]Section, 0, len(n.Sections)),
		KeyPoints:          b.list(n.KeyPoints),
		ExamTips:           b.list(n.ExamTips),
		VisualDescriptions: b.list(n.VisualDescriptions),
	}
	for _, s := range n.Sections {
		doc.Sections = append(doc.Sections, b.section(s))
	}
	doc.Unrendered = b.failed
	return doc
}

// RenderText parses raw and renders its math.
func RenderText(raw string, r *mathrender.Renderer) Rich {
	b := builder{r: r}
	return b.rich(raw)
}

// RenderSegment renders one parsed segment.
func RenderSegment(seg content.Segment, r *mathrender.Renderer) Block {
	switch seg.Kind {
	case content.KindInlineMath:
		node := r.Render(seg.Value, mathrender.Inline)
		return Block{Kind: BlockMath, Math: &node}
	case content.KindBlockMath:
		node := r.Render(seg.Value, mathrender.Block)
		return Block{Kind: BlockMath, Math: &node}
	default:
		return Block{Kind: BlockText, Text: seg.Value}
	}
}

type builder struct {
	r      *mathrender.Renderer
	failed int
}

func (b *builder) rich(raw string) Rich {
	out := Rich{}
	for seg := range content.Parse(raw) {
		blk := RenderSegment(seg, b.r)
		if blk.Math != nil && !blk.Math.Rendered {
			b.failed++
		}
		out = append(out, blk)
	}
	return out
}

func (b *builder) list(items []string) []Rich {
	out := make([]Rich, 0, len(items))
	for _, it := range items {
		out = append(out, b.rich(it))
	}
	return out
}

func (b *builder) section(s notes.Section) Section {
	sec := Section{
		Title:    s.Title,
		Content:  b.rich(s.Content),
		Examples: make([]Example, 0, len(s.WorkedExamples)),
	}
	for _, we := range s.WorkedExamples {
		sec.Examples = append(sec.Examples, Example{
			Question:    b.rich(we.Question),
			Steps:       b.list(we.Steps),
			FinalAnswer: b.rich(we.FinalAnswer),
		})
	}
	return sec
}

// Plain flattens rendered text, using the typeset form of math.
func (r Rich) Plain() string {
	var sb strings.Builder
	for _, blk := range r {
		if blk.Math != nil {
			sb.WriteString(blk.Math.Text)
			continue
		}
		sb.WriteString(blk.Text)
	}
	return sb.String()
}
