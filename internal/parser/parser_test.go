package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/outline/internal/outline"
)

func TestForFile_Dispatch(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"notes.org", "*parser.OutlineParser"},
		{"NOTES.OUTLINE", "*parser.OutlineParser"},
		{"todo.txt", "*parser.OutlineParser"},
		{"readme.md", "*parser.MarkdownParser"},
		{"notes.markdown", "*parser.MarkdownParser"},
		{"data.csv", "*parser.CSVParser"},
		{"page.htm", "*parser.HTMLParser"},
		{"report.pdf", "*parser.PDFParser"},
		{"memo.docx", "*parser.DOCXParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.filename, err)
		}
		if got := fmt.Sprintf("%T", p); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.filename, tt.want, got)
		}
	}

	if _, err := ForFile("image.png", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestForFile_PassesOptions(t *testing.T) {
	op, err := outline.New(outline.WithMarker('#'))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := ForFile("x.org", Options{Outline: op})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.(*OutlineParser).Outline != op {
		t.Error("expected outline parser to be passed through")
	}

	p, err = ForFile("x.pdf", Options{FallbackPdftotext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.(*PDFParser).FallbackPdftotext {
		t.Error("expected pdftotext fallback to be enabled")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.ORG") {
		t.Error("expected .ORG to be supported")
	}
	if IsSupportedExtension("a.exe") {
		t.Error("expected .exe to be unsupported")
	}
}

func TestOutlineParser_DefaultMarker(t *testing.T) {
	p := &OutlineParser{}
	tree, err := p.Parse(strings.NewReader("intro\n* a\nbody\n** b\n"), "notes.org")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(tree.Sections))
	}
	a := tree.Sections[0]
	if a.Body != "body\n" {
		t.Errorf("expected %q, got %q", "body\n", a.Body)
	}
	if len(a.Children) != 1 || a.Children[0].Title != "b" {
		t.Errorf("expected child b, got %+v", a.Children)
	}
}

func TestOutlineParser_CustomMarker(t *testing.T) {
	op, err := outline.New(outline.WithMarker('='))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := &OutlineParser{Outline: op}
	tree, err := p.Parse(strings.NewReader("= a\n== b\n* c\n"), "x.outline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Count() != 2 {
		t.Errorf("expected 2 sections, got %d", tree.Count())
	}
}

func TestHTMLParser_HeadingHierarchy(t *testing.T) {
	input := `<html><head><title>Doc</title><style>p{}</style></head><body>
<nav><p>skip me</p></nav>
<h1>Guide</h1>
<p>Welcome.</p>
<h3>Deep</h3>
<p>Deep text.</p>
<h2>Usage</h2>
<ul><li>one</li><li>two</li></ul>
<h1>Appendix</h1>
</body></html>`

	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader(input), "guide.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Sections) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d", len(tree.Sections))
	}
	guide := tree.Sections[0]
	if guide.Title != "Guide" || guide.Body != "Welcome.\n" {
		t.Errorf("unexpected guide section %q %q", guide.Title, guide.Body)
	}
	if len(guide.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(guide.Children))
	}
	if guide.Children[0].Depth != 3 || guide.Children[1].Depth != 2 {
		t.Errorf("expected depths 3 and 2, got %d and %d", guide.Children[0].Depth, guide.Children[1].Depth)
	}
	if guide.Children[1].Body != "one\n\ntwo\n" {
		t.Errorf("expected %q, got %q", "one\n\ntwo\n", guide.Children[1].Body)
	}
	if strings.Contains(guide.Body, "skip me") {
		t.Error("expected nav content to be skipped")
	}
}

func TestHTMLParser_NoHeadings(t *testing.T) {
	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader("<p>alpha</p><p>beta</p>"), "x.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(tree.Sections))
	}
	if tree.Sections[0].Body != "alpha\n\nbeta\n" {
		t.Errorf("expected %q, got %q", "alpha\n\nbeta\n", tree.Sections[0].Body)
	}
}

func TestHeadingLevel(t *testing.T) {
	tests := map[string]int{"h1": 1, "h6": 6, "h7": 0, "hr": 0, "p": 0, "h10": 0}
	for tag, want := range tests {
		if got := headingLevel(tag); got != want {
			t.Errorf("headingLevel(%q) = %d, want %d", tag, got, want)
		}
	}
}

func TestCSVParser_Batches(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,qty\n")
	for i := 0; i < 25; i++ {
		b.WriteString("item,1\n")
	}
	p := &CSVParser{}
	tree, err := p.Parse(strings.NewReader(b.String()), "data.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(tree.Sections))
	}
	if tree.Sections[0].Title != "Rows 2-21" {
		t.Errorf("expected %q, got %q", "Rows 2-21", tree.Sections[0].Title)
	}
	if tree.Sections[1].Title != "Rows 22-26" {
		t.Errorf("expected %q, got %q", "Rows 22-26", tree.Sections[1].Title)
	}
	if !strings.HasPrefix(tree.Sections[0].Body, "Headers: name, qty\n\nname: item, qty: 1\n") {
		t.Errorf("unexpected body %q", tree.Sections[0].Body)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	p := &CSVParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Sections) != 0 {
		t.Errorf("expected 0 sections, got %d", len(tree.Sections))
	}
}

func TestPageRecords(t *testing.T) {
	records := pageRecords("first page\f\f  third page  \n")
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Title != "Page 1" || records[1].Title != "Page 3" {
		t.Errorf("unexpected titles %q, %q", records[0].Title, records[1].Title)
	}
	if records[1].Body != "third page\n" {
		t.Errorf("expected %q, got %q", "third page\n", records[1].Body)
	}
}

func TestRecordWriter_RejectsZeroLevel(t *testing.T) {
	var w recordWriter
	w.heading(0, "bad")
	_, err := w.document()
	if !errors.Is(err, outline.ErrMalformedHeading) {
		t.Errorf("expected ErrMalformedHeading, got %v", err)
	}
}
