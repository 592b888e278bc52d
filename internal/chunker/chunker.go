package chunker

import (
	"strings"

	"github.com/dgallion1/outline/internal/outline"
)

// Chunk is a sized piece of one section's body with its heading path.
type Chunk struct {
	Text       string   `json:"text" yaml:"text"`
	Index      int      `json:"index" yaml:"index"`                               // Sequence number within the document
	Breadcrumb []string `json:"breadcrumb,omitempty" yaml:"breadcrumb,omitempty"` // Titles from the top-level section down
	Depth      int      `json:"depth" yaml:"depth"`                               // Depth of the section the text came from
}

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = d.ChunkOverlap
	}
	if c.MinChunk <= 0 {
		c.MinChunk = d.MinChunk
	}
	return c
}

// ChunkDocument walks doc depth-first and splits every section body into
// chunks of about cfg.ChunkSize tokens. Zero size and min chunk take their
// defaults, as does a negative overlap. Zero overlap disables it.
func ChunkDocument(doc *outline.Document, cfg Config) []Chunk {
	cfg = cfg.withDefaults()

	var chunks []Chunk
	doc.Walk(func(path []*outline.Section, s *outline.Section) bool {
		text := strings.TrimSpace(s.Body)
		if text == "" {
			return true
		}

		parts := []string{text}
		if EstimateTokens(text) > cfg.ChunkSize {
			parts = splitText(text, cfg.ChunkSize, cfg.ChunkOverlap)
		}

		bc := breadcrumb(path, s)
		for _, part := range parts {
			if EstimateTokens(part) < cfg.MinChunk {
				continue
			}
			chunks = append(chunks, Chunk{
				Text:       part,
				Index:      len(chunks),
				Breadcrumb: bc,
				Depth:      s.Depth,
			})
		}
		return true
	})
	return chunks
}

// breadcrumb returns the non-empty titles from the root down to s.
func breadcrumb(path []*outline.Section, s *outline.Section) []string {
	var bc []string
	for _, p := range append(path[:len(path):len(path)], s) {
		if p.Title != "" {
			bc = append(bc, p.Title)
		}
	}
	return bc
}

// packer greedily joins pieces into chunks of about target tokens. Each new
// chunk starts with the last overlap tokens of the previous one.
type packer struct {
	target  int
	overlap int
	sep     string

	out    []string
	cur    strings.Builder
	tokens int
}

func (p *packer) add(piece string) {
	n := EstimateTokens(piece)
	if p.tokens+n > p.target && p.tokens > 0 {
		prev := p.cur.String()
		p.out = append(p.out, prev)
		p.cur.Reset()
		p.tokens = 0
		if carry := overlapText(prev, p.overlap); carry != "" {
			p.cur.WriteString(carry)
			p.tokens = EstimateTokens(carry)
		}
	}
	if p.cur.Len() > 0 {
		p.cur.WriteString(p.sep)
	}
	p.cur.WriteString(piece)
	p.tokens += n
}

// flush emits the pending chunk without carrying overlap.
func (p *packer) flush() {
	if p.tokens > 0 {
		p.out = append(p.out, p.cur.String())
	}
	p.cur.Reset()
	p.tokens = 0
}

func (p *packer) result() []string {
	p.flush()
	return p.out
}

// splitText breaks text into chunks by paragraph, falling back to sentences
// for paragraphs that exceed the target on their own.
func splitText(text string, targetTokens, overlapTokens int) []string {
	pk := &packer{target: targetTokens, overlap: overlapTokens, sep: "\n\n"}
	for _, para := range splitByParagraphs(text) {
		if EstimateTokens(para) > targetTokens {
			pk.flush()
			pk.out = append(pk.out, splitBySentences(para, targetTokens, overlapTokens)...)
			continue
		}
		pk.add(para)
	}
	return pk.result()
}

func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	pk := &packer{target: targetTokens, overlap: overlapTokens, sep: " "}
	for _, sent := range splitSentences(text) {
		pk.add(sent)
	}
	return pk.result()
}

// splitByParagraphs splits on blank lines.
func splitByParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences ends a sentence at '.', '!' or '?' followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// overlapText returns roughly the last targetTokens tokens of text.
func overlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	// Approximate: 1.33 tokens per word.
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}
