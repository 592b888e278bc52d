package outline

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultMarker is the heading marker used by the package-level functions.
const DefaultMarker byte = '*'

// Parser parses outline markup for one marker character. A Parser is
// immutable and safe for concurrent use.
type Parser struct {
	marker  byte
	heading *regexp.Regexp
}

// Option configures a Parser.
type Option func(*Parser)

// WithMarker sets the heading marker character, e.g. '#' for markdown-style
// outlines.
func WithMarker(m byte) Option {
	return func(p *Parser) {
		p.marker = m
	}
}

// New returns a Parser. The marker must be a printable ASCII character that
// is not whitespace.
func New(opts ...Option) (*Parser, error) {
	p := &Parser{marker: DefaultMarker}
	for _, opt := range opts {
		opt(p)
	}
	if p.marker <= ' ' || p.marker >= utf8.RuneSelf || p.marker == 0x7f {
		return nil, fmt.Errorf("invalid heading marker %q", p.marker)
	}
	// A heading starts a line with one or more markers and one whitespace
	// character. \s is [\t\n\f\r ], the same set isSpace accepts.
	p.heading = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(string(rune(p.marker))) + `+\s`)
	return p, nil
}

// Marker returns the heading marker character.
func (p *Parser) Marker() byte {
	return p.marker
}

// Parse parses a whole document. Text before the first heading is dropped.
// A document without headings yields an empty Document.
func (p *Parser) Parse(text string) (*Document, error) {
	b := newBuilder()
	for _, sp := range p.Segment(text) {
		block := text[sp.Start:sp.End]
		depth, title, body, ok := p.splitBlock(block)
		if !ok {
			return nil, malformed(sp.Start, block)
		}
		if err := b.add(Record{Depth: depth, Title: title, Body: body}); err != nil {
			return nil, err
		}
	}
	return b.doc, nil
}

// ParseReader reads r to the end and parses it. A leading byte order mark is
// removed so that a heading on the first line is still recognized.
func (p *Parser) ParseReader(r io.Reader) (*Document, error) {
	tr := transform.NewReader(r, unicode.BOMOverride(encoding.Nop.NewDecoder()))
	data, err := io.ReadAll(tr)
	if err != nil {
		return nil, fmt.Errorf("read outline: %w", err)
	}
	return p.Parse(string(data))
}

// ParseFile parses the file at path.
func (p *Parser) ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open outline: %w", err)
	}
	defer f.Close()

	doc, err := p.ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

var defaultParser = mustNew()

func mustNew(opts ...Option) *Parser {
	p, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse parses text using the '*' marker.
func Parse(text string) (*Document, error) {
	return defaultParser.Parse(text)
}

// ParseReader parses everything read from r using the '*' marker.
func ParseReader(r io.Reader) (*Document, error) {
	return defaultParser.ParseReader(r)
}

// ParseFile parses the file at path using the '*' marker.
func ParseFile(path string) (*Document, error) {
	return defaultParser.ParseFile(path)
}

// ParseHeadingLine parses a single heading line using the '*' marker.
func ParseHeadingLine(line string) (depth int, title string, err error) {
	return defaultParser.ParseHeadingLine(line)
}

// Render writes doc back as '*' outline markup.
func Render(doc *Document) string {
	return defaultParser.Render(doc)
}
