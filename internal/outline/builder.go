package outline

import "fmt"

// Record is one parsed heading block waiting to be placed in the tree.
type Record struct {
	Depth int
	Title string
	Body  string
}

// Build nests records into a Document by depth. Each record becomes a child
// of the nearest preceding open section with a smaller depth, or a new
// top-level section when there is none. A record with depth below 1 fails
// the whole build.
func Build(records []Record) (*Document, error) {
	b := newBuilder()
	for i, r := range records {
		if err := b.add(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return b.doc, nil
}

// builder holds the rightmost path of the tree under construction.
type builder struct {
	doc   *Document
	stack []*Section // Open sections, shallowest first
}

func newBuilder() *builder {
	return &builder{doc: &Document{Sections: []*Section{}}}
}

func (b *builder) add(r Record) error {
	if r.Depth < 1 {
		return &MalformedHeadingError{Offset: -1, Line: r.Title}
	}
	node := &Section{Depth: r.Depth, Title: r.Title, Body: r.Body}

	// Pop until we find a parent with lower depth.
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].Depth >= node.Depth {
		b.stack = b.stack[:len(b.stack)-1]
	}

	if len(b.stack) == 0 {
		b.doc.Sections = append(b.doc.Sections, node)
	} else {
		parent := b.stack[len(b.stack)-1]
		parent.Children = append(parent.Children, node)
	}
	b.stack = append(b.stack, node)
	return nil
}
