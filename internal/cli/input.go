package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/outline/internal/outline"
	"github.com/dgallion1/outline/internal/parser"
)

// stdinName is the filename used to pick a parser for "-"; standard input
// is always read as outline markup.
const stdinName = "stdin.org"

// load parses the document named by arg, or standard input for "-".
func (a *app) load(arg string) (*outline.Document, error) {
	var r io.Reader
	filename := arg
	if arg == "-" {
		r = a.stdin
		filename = stdinName
	} else {
		f, err := os.Open(arg)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	p, err := parser.ForFile(filename, parser.Options{
		Outline:           a.outline,
		FallbackPdftotext: a.cfg.PDFFallbackPdftotext,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := p.Parse(r, filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", arg, err)
	}
	a.log.Debug("parsed document",
		"file", arg,
		"sections", doc.Count(),
		"max_depth", doc.MaxDepth(),
		"duration", time.Since(start),
	)
	return doc, nil
}
