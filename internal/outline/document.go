// Package outline parses outline markup, where lines starting with a run of
// marker characters are headings whose run length sets their depth, into a
// tree of sections.
package outline

// Document is the root of a parsed outline.
type Document struct {
	Sections []*Section `json:"sections" yaml:"sections"` // Top-level sections, in source order
}

// Section is one heading and the text up to the next heading.
type Section struct {
	Depth    int        `json:"depth" yaml:"depth"`                           // Marker run length, always >= 1
	Title    string     `json:"title" yaml:"title"`                           // Heading text after the first whitespace
	Body     string     `json:"body" yaml:"body"`                             // Verbatim lines below the heading
	Children []*Section `json:"children,omitempty" yaml:"children,omitempty"` // Deeper sections, in source order
}

// Walk visits every section depth-first in source order. path holds the
// ancestors of s, outermost first. Returning false skips s's children.
func (d *Document) Walk(fn func(path []*Section, s *Section) bool) {
	var path []*Section
	var visit func(s *Section)
	visit = func(s *Section) {
		if !fn(path, s) {
			return
		}
		path = append(path, s)
		for _, c := range s.Children {
			visit(c)
		}
		path = path[:len(path)-1]
	}
	for _, s := range d.Sections {
		visit(s)
	}
}

// Count returns the number of sections in the whole tree.
func (d *Document) Count() int {
	n := 0
	d.Walk(func(_ []*Section, _ *Section) bool {
		n++
		return true
	})
	return n
}

// MaxDepth returns the largest heading depth in the tree, or 0 when empty.
func (d *Document) MaxDepth() int {
	deepest := 0
	d.Walk(func(_ []*Section, s *Section) bool {
		if s.Depth > deepest {
			deepest = s.Depth
		}
		return true
	})
	return deepest
}
