// Package cli implements the outline command-line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/outline/internal/config"
	"github.com/dgallion1/outline/internal/outline"
	"github.com/spf13/cobra"
)

// version is set at build time.
var version = "dev"

// app carries flags and loaded state shared by all subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	debug      bool
	marker     string

	cfg     config.Config
	log     *slog.Logger
	outline *outline.Parser
}

// NewRootCmd builds the command tree reading from stdin and writing to
// stdout and stderr.
func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "outline",
		Short: "Parse outline documents into section trees",
		Long: `outline reads documents whose headings are lines starting with a run of
marker characters ("* Title", "** Subtitle") and turns them into a tree of
sections nested by depth. Markdown, HTML, DOCX, PDF and CSV files are
imported into the same tree.

Environment Variables:
  OUTLINE_MARKER   Heading marker character (default "*")
  OUTLINE_API_KEY  Bearer token required by "outline serve"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/.config/outline/config.yaml)")
	pf.BoolVar(&a.debug, "debug", false, "enable debug logging")
	pf.StringVar(&a.marker, "marker", "", `heading marker character (default "*")`)

	root.AddCommand(
		newParseCmd(a),
		newChunkCmd(a),
		newFmtCmd(a),
		newServeCmd(a),
	)
	return root
}

// Execute runs the root command against the process streams.
func Execute() error {
	root := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func (a *app) setup() error {
	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	path := a.configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg := config.Load()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.marker != "" {
		cfg.Marker = a.marker
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	op, err := outline.New(outline.WithMarker(cfg.MarkerByte()))
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.outline = op
	a.log.Debug("configuration loaded", "config", path, "marker", cfg.Marker)
	return nil
}
