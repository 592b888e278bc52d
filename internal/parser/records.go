package parser

import (
	"strings"

	"github.com/dgallion1/outline/internal/outline"
)

// recordWriter collects headings and the text blocks that follow them from
// formats that have a notion of heading level, then hands them to the
// outline tree builder.
type recordWriter struct {
	records  []outline.Record
	prologue string
	text     strings.Builder
}

func (w *recordWriter) heading(level int, title string) {
	w.flush()
	w.records = append(w.records, outline.Record{Depth: level, Title: title})
}

// paragraph appends a text block to the current heading's body.
func (w *recordWriter) paragraph(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if w.text.Len() > 0 {
		w.text.WriteString("\n\n")
	}
	w.text.WriteString(t)
}

func (w *recordWriter) flush() {
	if w.text.Len() == 0 {
		return
	}
	body := w.text.String() + "\n"
	w.text.Reset()

	if len(w.records) == 0 {
		w.prologue += body
		return
	}
	w.records[len(w.records)-1].Body += body
}

// document builds the tree. Text before the first heading is kept only when
// there are no headings at all, as a single untitled section.
func (w *recordWriter) document() (*outline.Document, error) {
	w.flush()
	if len(w.records) == 0 && w.prologue != "" {
		w.records = []outline.Record{{Depth: 1, Body: w.prologue}}
	}
	return outline.Build(w.records)
}
