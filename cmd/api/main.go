package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/appointment-parser/cmd/mainconfig"
	"github.com/wolfman30/appointment-parser/internal/api/router"
	"github.com/wolfman30/appointment-parser/internal/appointment"
	appconfig "github.com/wolfman30/appointment-parser/internal/config"
	"github.com/wolfman30/appointment-parser/internal/extract"
	"github.com/wolfman30/appointment-parser/internal/observability/metrics"
	"github.com/wolfman30/appointment-parser/internal/ocr"
	"github.com/wolfman30/appointment-parser/pkg/logging"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting appointment-parser API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.Timezone,
	)

	// LLM clients: Bedrock primary, Gemini fallback, both optional. With
	// neither configured the extractor degrades to its local regex pass.
	llmClient := buildLLMClient(cfg, logger)
	primary := extract.NewLLMExtractor(llmClient, llmModelID(cfg), cfg.LLMTimeout, logger)

	ocrClient := ocr.NewClient(cfg.OCRBaseURL, cfg.OCRSpaceAPIKey, cfg.OCREngine,
		ocr.WithHTTPClient(&http.Client{Timeout: cfg.OCRTimeout}),
		ocr.WithLogger(logger),
	)

	pipelineMetrics := metrics.NewPipelineMetrics(nil)

	svc := appointment.NewService(ocrClient, primary, cfg.Timezone, logger,
		appointment.WithMetrics(pipelineMetrics))
	handler := appointment.NewHandler(svc, cfg.MaxUploadBytes, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		AppointmentHandler: handler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// OCR can ladder through several provider calls, so the write timeout
	// has to cover the whole pipeline, not one round-trip.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildLLMClient assembles the primary/fallback model client from whatever
// providers are configured. Returns nil when none are.
func buildLLMClient(cfg *appconfig.Config, logger *logging.Logger) extract.LLMClient {
	var bedrock extract.LLMClient
	if cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
		if err != nil {
			logger.Error("failed to load AWS config, skipping Bedrock", "error", err)
		} else {
			bedrock = extract.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
			logger.Info("bedrock client configured", "model", cfg.BedrockModelID)
		}
	}

	var gemini extract.LLMClient
	if cfg.GeminiAPIKey != "" {
		g, err := extract.NewGeminiLLMClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to init Gemini client", "error", err)
		} else {
			gemini = g
			logger.Info("gemini client configured", "model", cfg.GeminiModelID)
		}
	}

	switch {
	case bedrock != nil && gemini != nil:
		return extract.NewFallbackLLMClient(bedrock, gemini, logger.Logger)
	case bedrock != nil:
		return bedrock
	case gemini != nil:
		return gemini
	default:
		logger.Warn("no LLM provider configured, extractor will use local regex pass")
		return nil
	}
}

func llmModelID(cfg *appconfig.Config) string {
	if cfg.BedrockModelID != "" {
		return cfg.BedrockModelID
	}
	return cfg.GeminiModelID
}
