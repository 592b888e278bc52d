package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dgallion1/outline/internal/api"
	"github.com/dgallion1/outline/internal/config"
	"github.com/dgallion1/outline/internal/outline"
	"github.com/dgallion1/outline/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	op, err := outline.New(outline.WithMarker(cfg.MarkerByte()))
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	jobs := pipeline.NewOrchestrator(cfg, op, log)
	jobs.Start(ctx)
	defer jobs.Stop()

	srv := api.NewServer(op, jobs, log, cfg)
	if err := api.ListenAndServe(ctx, srv, cfg, log); err != nil {
		log.Error("server error", "error", err)
		jobs.Stop()
		os.Exit(1)
	}
}
