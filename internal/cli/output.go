package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/outline/internal/chunker"
	"github.com/dgallion1/outline/internal/outline"
	"github.com/itchyny/gojq"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	formatTree  = "tree"
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// pickFormat returns requested, or the terminal or pipe default when empty.
func pickFormat(w io.Writer, requested, onTerminal string) string {
	if requested != "" {
		return requested
	}
	if isTerminal(w) {
		return onTerminal
	}
	return formatJSON
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeJQ runs a jq expression over the JSON form of v and writes each
// result as JSON.
func writeJQ(w io.Writer, expr string, v any) error {
	query, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("parse jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("compile jq expression: %w", err)
	}

	// gojq only understands plain JSON values.
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return err
	}

	iter := code.Run(input)
	for {
		out, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := out.(error); ok {
			return fmt.Errorf("jq: %w", err)
		}
		if err := writeJSON(w, out); err != nil {
			return err
		}
	}
}

var depthColors = []lipgloss.Color{"12", "10", "11", "13", "14", "9"}

// writeTree draws the section tree with box-drawing branches. Colors are
// only emitted when w is a color terminal.
func writeTree(w io.Writer, doc *outline.Document, marker byte) {
	r := lipgloss.NewRenderer(w)
	dim := r.NewStyle().Faint(true)

	if len(doc.Sections) == 0 {
		fmt.Fprintln(w, dim.Render("(no sections)"))
		return
	}

	var walk func(sections []*outline.Section, prefix string)
	walk = func(sections []*outline.Section, prefix string) {
		for i, s := range sections {
			branch, indent := "├── ", "│   "
			if i == len(sections)-1 {
				branch, indent = "└── ", "    "
			}

			title := s.Title
			if title == "" {
				title = "(untitled)"
			}
			style := r.NewStyle().
				Bold(s.Depth == 1).
				Foreground(depthColors[(s.Depth-1)%len(depthColors)])
			line := prefix + branch + style.Render(strings.Repeat(string(rune(marker)), s.Depth)+" "+title)
			if n := lineCount(s.Body); n > 0 {
				line += " " + dim.Render(fmt.Sprintf("(%d lines)", n))
			}
			fmt.Fprintln(w, line)

			walk(s.Children, prefix+indent)
		}
	}
	walk(doc.Sections, "")
}

func lineCount(body string) int {
	n := strings.Count(body, "\n")
	if body != "" && !strings.HasSuffix(body, "\n") {
		n++
	}
	return n
}

func writeChunkTable(w io.Writer, chunks []chunker.Chunk) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tDEPTH\tTOKENS\tBREADCRUMB")
	for _, c := range chunks {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", c.Index, c.Depth, chunker.EstimateTokens(c.Text), strings.Join(c.Breadcrumb, " > "))
	}
	return tw.Flush()
}
