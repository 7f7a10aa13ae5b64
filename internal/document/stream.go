package document

import (
	"iter"

	"github.com/p-n-ai/pai-notes/internal/content"
	"github.com/p-n-ai/pai-notes/internal/mathrender"
	"github.com/p-n-ai/pai-notes/internal/notes"
)

// Part names where in a note an event's block belongs.
type Part string

const (
	PartSummary  Part = "summary"
	PartSection  Part = "section"
	PartContent  Part = "content"
	PartQuestion Part = "question"
	PartStep     Part = "step"
	PartAnswer   Part = "final_answer"
	PartKeyPoint Part = "key_point"
	PartExamTip  Part = "exam_tip"
	PartVisual   Part = "visual_description"
)

// Event is one step of a streamed document. Section events carry the title
// and open a section; other events carry one rendered block. Example, Step
// and Item are set only on the parts they index, so 0 is a real index.
type Event struct {
	Part    Part   `json:"part"`
	Section int    `json:"section"`
	Example *int   `json:"example,omitempty"`
	Step    *int   `json:"step,omitempty"`
	Item    *int   `json:"item,omitempty"`
	Title   string `json:"title,omitempty"`
	Block   *Block `json:"block,omitempty"`
}

// Stream renders n incrementally. Each block is parsed and typeset only when
// the consumer asks for it. Section indices start at 0; the summary and the
// key point, exam tip and diagram lists use -1.
func Stream(n *notes.TopicNotes, r *mathrender.Renderer) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		emit := func(ev Event, raw string) bool {
			for seg := range content.Parse(raw) {
				blk := RenderSegment(seg, r)
				ev.Block = &blk
				if !yield(ev) {
					return false
				}
			}
			return true
		}

		if !emit(Event{Part: PartSummary, Section: -1}, n.Summary) {
			return
		}
		for i, s := range n.Sections {
			if !yield(Event{Part: PartSection, Section: i, Title: s.Title}) {
				return
			}
			if !emit(Event{Part: PartContent, Section: i}, s.Content) {
				return
			}
			for j, we := range s.WorkedExamples {
				if !emit(Event{Part: PartQuestion, Section: i, Example: index(j)}, we.Question) {
					return
				}
				for k, step := range we.Steps {
					if !emit(Event{Part: PartStep, Section: i, Example: index(j), Step: index(k)}, step) {
						return
					}
				}
				if !emit(Event{Part: PartAnswer, Section: i, Example: index(j)}, we.FinalAnswer) {
					return
				}
			}
		}

		lists := []struct {
			part  Part
			items []string
		}{
			{PartKeyPoint, n.KeyPoints},
			{PartExamTip, n.ExamTips},
			{PartVisual, n.VisualDescriptions},
		}
		for _, l := range lists {
			for i, item := range l.items {
				if !emit(Event{Part: l.part, Section: -1, Item: index(i)}, item) {
					return
				}
			}
		}
	}
}

func index(i int) *int {
	return &i
}
