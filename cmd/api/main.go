package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"data-analyst-agent/config"
	_ "data-analyst-agent/docs" // Swagger docs
	analysisHTTP "data-analyst-agent/internal/analysis/delivery/http"
	"data-analyst-agent/internal/agent/executor"
	"data-analyst-agent/internal/agent/orchestrator"
	"data-analyst-agent/internal/agent/planner"
	"data-analyst-agent/internal/httpserver"
	"data-analyst-agent/internal/middleware"
	"data-analyst-agent/internal/observability"
	"data-analyst-agent/internal/session"
	"data-analyst-agent/pkg/compute"
	"data-analyst-agent/pkg/deepseek"
	"data-analyst-agent/pkg/gemini"
	"data-analyst-agent/pkg/llmprovider"
	"data-analyst-agent/pkg/log"
	"data-analyst-agent/pkg/qwen"
)

// @title       Data Analyst Agent API
// @description Conversational data analysis over uploaded CSV/XLSX/XLS files, planned by an LLM and executed against a computation backend.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Data Analyst Agent...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	// 3. LLM providers
	var providers []llmprovider.Provider
	for _, pc := range cfg.LLM.Providers {
		if !pc.Enabled {
			continue
		}
		switch pc.Name {
		case "gemini":
			client, gErr := gemini.New(gemini.Config{
				APIKey: pc.APIKey,
				Model:  pc.Model,
				APIURL: pc.BaseURL,
			})
			if gErr != nil {
				logger.Warnf(ctx, "Skipping gemini provider: %v", gErr)
				continue
			}
			providers = append(providers, llmprovider.NewGeminiAdapter(client))
		case "deepseek":
			client, dErr := deepseek.New(deepseek.Config{
				APIKey:  pc.APIKey,
				Model:   pc.Model,
				BaseURL: pc.BaseURL,
			})
			if dErr != nil {
				logger.Warnf(ctx, "Skipping deepseek provider: %v", dErr)
				continue
			}
			providers = append(providers, llmprovider.NewDeepSeekAdapter(client))
		case "qwen":
			client, qErr := qwen.New(qwen.Config{
				APIKey:  pc.APIKey,
				Model:   pc.Model,
				BaseURL: pc.BaseURL,
			})
			if qErr != nil {
				logger.Warnf(ctx, "Skipping qwen provider: %v", qErr)
				continue
			}
			providers = append(providers, llmprovider.NewQwenAdapter(client))
		default:
			logger.Warnf(ctx, "Unknown LLM provider %q, skipping", pc.Name)
		}
	}
	if len(providers) == 0 {
		logger.Error(ctx, "No usable LLM providers configured")
		return
	}
	llmManager := llmprovider.NewManager(providers, &llmprovider.Config{
		FallbackEnabled: cfg.LLM.FallbackEnabled,
		RetryAttempts:   cfg.LLM.RetryAttempts,
		RetryDelay:      cfg.LLM.RetryDelay,
		MaxTotalTimeout: cfg.LLM.MaxTotalTimeout,
	}, logger)

	// 4. Computation backend
	backend, err := compute.New(compute.Config{
		BaseURL:     cfg.Compute.BaseURL,
		ArtifactDir: cfg.Compute.ArtifactDir,
		HTTPClient:  &http.Client{Timeout: cfg.Compute.Timeout},
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize compute backend: ", err)
		return
	}

	// 5. Observability
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// 6. Agent pipeline, shared across sessions
	plannerAgent := planner.New(llmManager, logger)
	executorAgent := executor.New(backend, logger)

	sessions := session.New(logger, metrics, func() *orchestrator.Orchestrator {
		return orchestrator.New(logger, plannerAgent, executorAgent, metrics, orchestrator.Config{
			MaxDatasetBytes: cfg.Dataset.MaxBytes,
			SampleValues:    cfg.Dataset.SampleValues,
			PlanTimeout:     cfg.Session.PlanTimeout,
			ExecTimeout:     cfg.Session.ExecTimeout,
		})
	}, session.Config{
		MaxSessions: cfg.Session.MaxSessions,
		TTL:         cfg.Session.TTL,
	})

	// 7. HTTP delivery
	analysisHandler := analysisHTTP.New(logger, sessions, cfg.Dataset.MaxBytes)
	mw := middleware.New(logger, cfg.Session.RateLimitPerMin)

	httpServer, err := httpserver.New(logger, httpserver.Config{
		Port:            cfg.HTTPServer.Port,
		Mode:            cfg.HTTPServer.Mode,
		Environment:     cfg.Environment.Name,
		Middleware:      mw,
		AnalysisHandler: analysisHandler,
		Registry:        registry,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 8. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
