package outline

import "strings"

// ParseHeadingLine returns the depth and title of a heading line. Anything
// after the first newline is ignored.
func (p *Parser) ParseHeadingLine(line string) (depth int, title string, err error) {
	depth, title, _, ok := p.splitBlock(line)
	if !ok {
		return 0, "", malformed(-1, line)
	}
	return depth, title, nil
}

// splitBlock splits a heading block into the marker run length, the title
// and the body. Title and body are exact substrings of block.
func (p *Parser) splitBlock(block string) (depth int, title, body string, ok bool) {
	for depth < len(block) && block[depth] == p.marker {
		depth++
	}
	if depth == 0 || depth == len(block) || !isSpace(block[depth]) {
		return 0, "", "", false
	}

	start := depth + 1
	nl := strings.IndexByte(block, '\n')
	switch {
	case nl < 0:
		title = block[start:]
	case nl < start:
		// The whitespace after the markers was the newline itself.
		body = block[nl+1:]
	default:
		title = block[start:nl]
		body = block[nl+1:]
	}
	return depth, title, body, true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}
