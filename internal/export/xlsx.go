// Package export writes catalog reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-notes/internal/document"
	"github.com/p-n-ai/pai-notes/internal/mathrender"
	"github.com/p-n-ai/pai-notes/internal/notes"
)

// Sheet names.
const (
	SheetTopics = "Topics"
	SheetNotes  = "Notes"
)

var (
	topicsHeader = []any{"Table", "Scope", "Topic", "Note ID", "Subject"}
	notesHeader  = []any{"Note ID", "Topic", "Subject", "Grade", "Sections", "Worked examples", "Math", "Unrendered math"}
)

// Stats summarises one rendered note.
type Stats struct {
	Sections   int
	Examples   int
	Math       int
	Unrendered int
}

// NoteStats renders n and counts its parts.
func NoteStats(n *notes.TopicNotes, r *mathrender.Renderer) Stats {
	doc := document.Build(n, r)
	s := Stats{Sections: len(doc.Sections), Unrendered: doc.Unrendered}

	count := func(rich document.Rich) {
		for _, b := range rich {
			if b.Math != nil {
				s.Math++
			}
		}
	}
	count(doc.Summary)
	for _, sec := range doc.Sections {
		count(sec.Content)
		s.Examples += len(sec.Examples)
		for _, ex := range sec.Examples {
			count(ex.Question)
			for _, st := range ex.Steps {
				count(st)
			}
			count(ex.FinalAnswer)
		}
	}
	for _, list := range [][]document.Rich{doc.KeyPoints, doc.ExamTips, doc.VisualDescriptions} {
		for _, it := range list {
			count(it)
		}
	}
	return s
}

// Workbook builds a workbook with the catalog index and per-note stats. The
// caller closes the returned file.
func Workbook(c *notes.Catalog, r *mathrender.Renderer) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetTopics); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet %s: %w", SheetTopics, err)
	}
	if _, err := f.NewSheet(SheetNotes); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sheet %s: %w", SheetNotes, err)
	}

	if err := writeTopics(f, c); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeNotes(f, c, r); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteXLSX writes the workbook for c to w.
func WriteXLSX(w io.Writer, c *notes.Catalog, r *mathrender.Renderer) error {
	f, err := Workbook(c, r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeTopics(f *excelize.File, c *notes.Catalog) error {
	rows := [][]any{topicsHeader}
	for _, e := range c.Index() {
		rows = append(rows, []any{string(e.Table), e.Scope, e.Topic, e.NoteID, string(e.Subject)})
	}
	return writeSheet(f, SheetTopics, rows, []float64{10, 12, 28, 30, 14})
}

func writeNotes(f *excelize.File, c *notes.Catalog, r *mathrender.Renderer) error {
	rows := [][]any{notesHeader}
	for _, n := range c.Notes() {
		s := NoteStats(n, r)
		rows = append(rows, []any{
			n.ID, n.Topic, string(n.Subject), n.GradeLevel,
			s.Sections, s.Examples, s.Math, s.Unrendered,
		})
	}
	return writeSheet(f, SheetNotes, rows, []float64{30, 28, 14, 10, 10, 16, 8, 16})
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, widths []float64) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("sizing %s column %s: %w", sheet, col, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
