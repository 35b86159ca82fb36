// Screen translator server - captures a screen region, OCRs it, and
// translates new text continuously.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/screen-translator/platform/internal/capture"
	"github.com/screen-translator/platform/internal/config"
	"github.com/screen-translator/platform/internal/history"
	"github.com/screen-translator/platform/internal/loop"
	"github.com/screen-translator/platform/internal/ocr"
	"github.com/screen-translator/platform/internal/ocr/aggregate"
	"github.com/screen-translator/platform/internal/server"
	"github.com/screen-translator/platform/internal/translate"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg := config.Load()

	region := capture.Region{X: cfg.CaptureX, Y: cfg.CaptureY, Width: cfg.CaptureWidth, Height: cfg.CaptureHeight}
	if !region.Valid() {
		slog.Error("invalid capture region", "region", region)
		os.Exit(1)
	}
	capt := capture.New(region)
	defer capt.Close()

	ocrManager := buildOCRManager(cfg)
	trManager := buildTranslateManager(cfg)

	hist, err := history.Open(cfg.HistoryPath, cfg.HistoryMax, logger)
	if err != nil {
		slog.Error("failed to open history store", "path", cfg.HistoryPath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = hist.Close() }()

	pipeline := loop.New(loop.Config{
		Interval:         cfg.CaptureInterval,
		OCRTimeout:       cfg.OCRTimeout,
		TranslateTimeout: cfg.TranslateTimeout,
		OCRLang:          cfg.TesseractLang,
		SourceLang:       cfg.SourceLang,
		TargetLang:       cfg.TargetLang,
		HashSkipDistance: cfg.HashSkipDistance,
		ErrorBudget:      cfg.ErrorBudget,
		ErrorWindow:      cfg.ErrorWindow,
	}, capt, ocrManager, trManager, hist, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.New(ctx, ocrManager, trManager, hist, pipeline)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("screen translator starting",
			"http", cfg.HTTPAddr,
			"region", region,
			"ocr", ocrManager.CurrentEngine(),
			"translation", trManager.CurrentEngine())
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancel()
	pipeline.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	slog.Info("shutdown complete")
}

// buildOCRManager registers every OCR engine that constructs cleanly.
// Engines that fail their probe are logged and skipped; at least one
// must survive.
func buildOCRManager(cfg *config.Config) *ocr.Manager {
	var engines []ocr.Engine

	if eng, err := ocr.NewTesseract(cfg.TesseractLang); err != nil {
		slog.Warn("tesseract unavailable", "error", err)
	} else {
		engines = append(engines, eng)
	}
	if eng, err := ocr.NewEasyOCR(cfg.EasyOCRAddr); err != nil {
		slog.Warn("easyocr unavailable", "error", err)
	} else {
		engines = append(engines, eng)
	}
	if eng, err := ocr.NewGeminiOCR(cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		slog.Warn("gemini ocr unavailable", "error", err)
	} else {
		engines = append(engines, eng)
	}

	m, err := ocr.NewManager(engines, ocr.ManagerOptions{
		CacheSize: cfg.OCRCacheSize,
		CacheTTL:  cfg.OCRCacheTTL,
		JoinWith:  aggregate.ParseJoinPolicy(cfg.LineJoin),
	}, slog.Default())
	if err != nil {
		slog.Error("no OCR engines available", "error", err)
		os.Exit(1)
	}
	if m.CurrentEngine() != cfg.OCREngine {
		if err := m.SetEngine(cfg.OCREngine); err != nil {
			slog.Warn("configured OCR engine unavailable, using default",
				"configured", cfg.OCREngine, "using", m.CurrentEngine())
		}
	}
	return m
}

// buildTranslateManager registers every translation engine that
// constructs cleanly.
func buildTranslateManager(cfg *config.Config) *translate.Manager {
	var engines []translate.Engine

	if eng, err := translate.NewLocalAPI(cfg.LocalTranslateURL); err != nil {
		slog.Warn("local translate unavailable", "error", err)
	} else {
		engines = append(engines, eng)
	}
	if eng, err := translate.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		slog.Warn("gemini translate unavailable", "error", err)
	} else {
		engines = append(engines, eng)
	}
	engines = append(engines, translate.NewGoogleWeb())

	m, err := translate.NewManager(engines, slog.Default())
	if err != nil {
		slog.Error("no translation engines available", "error", err)
		os.Exit(1)
	}
	if m.CurrentEngine() != cfg.TranslationEngine {
		if err := m.SetEngine(cfg.TranslationEngine); err != nil {
			slog.Warn("configured translation engine unavailable, using default",
				"configured", cfg.TranslationEngine, "using", m.CurrentEngine())
		}
	}
	return m
}
