package parser

import (
	"io"

	"github.com/dgallion1/outline/internal/outline"
)

// OutlineParser handles outline markup (.org, .outline and .txt files).
type OutlineParser struct {
	Outline *outline.Parser
}

func (p *OutlineParser) Parse(r io.Reader, filename string) (*outline.Document, error) {
	if p.Outline == nil {
		return outline.ParseReader(r)
	}
	return p.Outline.ParseReader(r)
}
