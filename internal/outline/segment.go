package outline

// Span is the byte range [Start, End) of one heading block.
type Span struct {
	Start int
	End   int
}

// Segment returns the heading blocks of text in order. Each block runs from a
// heading line start to the next heading line start, the last one to the end
// of text. Nothing is returned for text before the first heading.
func (p *Parser) Segment(text string) []Span {
	locs := p.heading.FindAllStringIndex(text, -1)
	spans := make([]Span, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		spans[i] = Span{Start: loc[0], End: end}
	}
	return spans
}
