package outline

import "strings"

// Render writes doc as outline markup, one heading line per section followed
// by its body, depth-first. Headings are written with a single space after
// the markers. A newline is added after a body that lacks one so the next
// heading starts its own line. Bodies are written verbatim, so a body line
// that itself looks like a heading is re-read as one.
func (p *Parser) Render(doc *Document) string {
	var b strings.Builder
	marker := string(rune(p.marker))
	pendingNewline := false
	doc.Walk(func(_ []*Section, s *Section) bool {
		if pendingNewline {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat(marker, s.Depth))
		b.WriteByte(' ')
		b.WriteString(s.Title)
		b.WriteByte('\n')
		b.WriteString(s.Body)
		pendingNewline = s.Body != "" && !strings.HasSuffix(s.Body, "\n")
		return true
	})
	return b.String()
}
