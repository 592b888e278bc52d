package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/outline/internal/chunker"
	"github.com/dgallion1/outline/internal/outline"
	"github.com/dgallion1/outline/internal/parser"
)

// Worker parses and chunks one job at a time.
type Worker struct {
	outline     *outline.Parser
	pdfFallback bool
	log         *slog.Logger
	stats       *Stats
}

func NewWorker(op *outline.Parser, pdfFallback bool, log *slog.Logger, stats *Stats) *Worker {
	return &Worker{
		outline:     op,
		pdfFallback: pdfFallback,
		log:         log,
		stats:       stats,
	}
}

// Process runs a job to completion or failure.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)
	start := time.Now()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	op := w.outline
	if job.Marker != 0 && job.Marker != op.Marker() {
		var err error
		if op, err = outline.New(outline.WithMarker(job.Marker)); err != nil {
			log.Error("invalid marker", "error", err)
			job.Fail("parsing", err)
			return
		}
	}

	p, err := parser.ForFile(job.Filename, parser.Options{
		Outline:           op,
		FallbackPdftotext: w.pdfFallback,
	})
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.Fail("parsing", err)
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail("parsing", fmt.Errorf("parse: %w", err))
		return
	}
	job.setDocument(doc)

	if err := ctx.Err(); err != nil {
		job.Fail("parsing", err)
		return
	}

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	chunks := chunker.ChunkDocument(doc, job.Chunking)

	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(elapsed)
	}
	job.complete(chunks)
	log.Info("job completed",
		"sections", doc.Count(),
		"chunks", len(chunks),
		"duration", elapsed,
	)
}
