package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"starlift/internal/config"
	"starlift/internal/exporter"
	"starlift/internal/fetch"
	"starlift/internal/llm"
	_ "starlift/internal/llm/providers"
	"starlift/internal/logging"
	"starlift/internal/pipeline"
	"starlift/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeLogging(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Adapters); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting harvester", map[string]interface{}{
		"fetch_engine": cfg.Fetch.Engine,
		"output_dir":   cfg.Export.OutputDir,
	})

	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(); err != nil {
		logger.Error("Failed to start extraction manager", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer llmManager.Stop()

	fetcherFactory := fetch.NewFactory(cfg)
	fetcher, err := fetcherFactory.CreateFetcher(cfg.Fetch.Engine)
	if err != nil {
		logger.Error("Failed to create fetcher", map[string]interface{}{
			"engine": cfg.Fetch.Engine,
			"error":  err.Error(),
		})
		os.Exit(1)
	}
	defer fetcher.Cleanup()

	pool := workers.NewWorkerPool(cfg, fetcher)
	if err := pool.Start(); err != nil {
		logger.Error("Failed to start worker pool", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer pool.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutdown signal received, cancelling run")
		cancel()
	}()

	orchestrator := pipeline.NewOrchestrator(cfg, fetcher, pool, llmManager)
	store, results := orchestrator.Run(ctx)

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}

	tables := pipeline.Assemble(store)
	paths, err := exporter.ExportCSV(cfg, tables)
	if err != nil {
		logger.Error("Export failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	stats := pool.GetStats()
	logger.Info("Harvest complete", map[string]interface{}{
		"tables":         len(paths),
		"failed_sources": failed,
		"detail_fetches": stats.JobsProcessed,
	})
}
