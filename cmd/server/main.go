package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"doclens/internal/config"
	"doclens/internal/extract"
	"doclens/internal/handler"
	"doclens/internal/provider"
	"doclens/internal/retrieval"
	"doclens/internal/router"
	"doclens/internal/service"
	"doclens/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	zlog := logger.Get()

	// Providers are built once and shared read-only across requests.
	registry := provider.NewRegistry(cfg)

	ocrProvider, err := registry.OCR(cfg.OCR.Engine)
	if err != nil {
		return fmt.Errorf("failed to resolve ocr engine: %w", err)
	}
	rasterProvider, err := registry.Raster(cfg.Raster.Engine)
	if err != nil {
		return fmt.Errorf("failed to resolve raster engine: %w", err)
	}

	// Pipeline stages
	extractor := extract.NewPDFExtractor(cfg.Extract.ScannedThreshold)
	fallback := extract.NewOCRFallback(rasterProvider, ocrProvider, cfg.OCR.Concurrency)
	retriever := retrieval.NewBuilder(registry.Embedder(), cfg.Retrieval)

	// Services
	completionSvc := service.NewCompletionService(zlog)
	processSvc := service.NewProcessService(
		extractor,
		fallback,
		registry,
		retriever,
		completionSvc,
		cfg.Retrieval.TopK,
		zlog,
	)

	// Handlers
	processH := handler.NewProcessHandler(processSvc, cfg.Server.MaxFileSizeMB)
	generateH := handler.NewGenerateHandler(registry, completionSvc)
	healthH := handler.NewHealthHandler()

	// Setup router
	r := router.Setup(cfg, zlog, processH, generateH, healthH)

	zlog.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
