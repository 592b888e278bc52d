package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/outline/internal/api"
	"github.com/dgallion1/outline/internal/chunker"
	"github.com/dgallion1/outline/internal/pipeline"
	"github.com/spf13/cobra"
)

func newParseCmd(a *app) *cobra.Command {
	var output, jqExpr string

	cmd := &cobra.Command{
		Use:   "parse FILE|-",
		Short: "Print the section tree of a document",
		Example: `  outline parse notes.org
  outline parse -o yaml README.md
  cat notes.org | outline parse - --jq '.sections[].title'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jqExpr != "" {
				return writeJQ(out, jqExpr, doc)
			}

			switch format := pickFormat(out, output, formatTree); format {
			case formatTree:
				writeTree(out, doc, a.outline.Marker())
				return nil
			case formatJSON:
				return writeJSON(out, doc)
			case formatYAML:
				return writeYAML(out, doc)
			default:
				return fmt.Errorf("unknown output format %q (want tree, json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: tree, json, yaml (default tree on a terminal, json otherwise)")
	cmd.Flags().StringVar(&jqExpr, "jq", "", "filter the JSON output with a jq expression")
	return cmd
}

func newChunkCmd(a *app) *cobra.Command {
	var (
		output            string
		size, overlap, mn int
	)

	cmd := &cobra.Command{
		Use:   "chunk FILE|-",
		Short: "Split section bodies into token-sized chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(args[0])
			if err != nil {
				return err
			}

			cfg := chunker.Config{
				ChunkSize:    a.cfg.DefaultChunkSize,
				ChunkOverlap: a.cfg.DefaultChunkOverlap,
				MinChunk:     a.cfg.DefaultMinChunk,
			}
			if cmd.Flags().Changed("size") {
				cfg.ChunkSize = size
			}
			if cmd.Flags().Changed("overlap") {
				cfg.ChunkOverlap = overlap
			}
			if cmd.Flags().Changed("min") {
				cfg.MinChunk = mn
			}
			chunks := chunker.ChunkDocument(doc, cfg)
			if chunks == nil {
				chunks = []chunker.Chunk{}
			}

			out := cmd.OutOrStdout()
			switch format := pickFormat(out, output, formatTable); format {
			case formatTable:
				return writeChunkTable(out, chunks)
			case formatJSON:
				return writeJSON(out, chunks)
			case formatYAML:
				return writeYAML(out, chunks)
			default:
				return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json, yaml (default table on a terminal, json otherwise)")
	cmd.Flags().IntVar(&size, "size", 0, "target chunk size in tokens")
	cmd.Flags().IntVar(&overlap, "overlap", 0, "overlap between chunks in tokens (0 disables)")
	cmd.Flags().IntVar(&mn, "min", 0, "minimum chunk size in tokens")
	return cmd
}

func newFmtCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fmt FILE|-",
		Short: "Rewrite a document as outline markup",
		Long: `fmt parses a document and writes it back as outline markup with a single
space after every heading marker run. Imported formats such as Markdown are
converted to outline markup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), a.outline.Render(doc))
			return err
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP parsing API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if port != "" {
				cfg.Port = port
			}
			log := slog.New(slog.NewJSONHandler(cmd.OutOrStdout(), nil))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			jobs := pipeline.NewOrchestrator(cfg, a.outline, log)
			jobs.Start(ctx)
			defer jobs.Stop()

			srv := api.NewServer(a.outline, jobs, log, cfg)
			return api.ListenAndServe(ctx, srv, cfg, log)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default from PORT or config, 8090)")
	return cmd
}
