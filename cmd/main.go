package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/parley/internal/adapters/http/api"
	"github.com/okian/parley/internal/adapters/reply"
	"github.com/okian/parley/internal/adapters/semantic"
	"github.com/okian/parley/internal/adapters/speech"
	app "github.com/okian/parley/internal/app"
	"github.com/okian/parley/internal/config"
	"github.com/okian/parley/pkg/logger"
	"github.com/okian/parley/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	replMode := flag.Bool("repl", false, "run an interactive conversation in the terminal instead of the HTTP server")
	flag.Parse()

	if err := run(*replMode); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(replMode bool) error {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// custom system metrics are collected instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("gemini_api_key is required (set PARLEY_GEMINI_API_KEY)")
	}
	if cfg.GeminiModel == "" {
		return fmt.Errorf("gemini_model is required")
	}

	// Build the generation-backed collaborators.
	analyzer, err := semantic.NewAnalyzer(ctx, cfg.GeminiAPIKey, semantic.WithModel(cfg.GeminiModel))
	if err != nil {
		return fmt.Errorf("failed to create semantic analyzer: %w", err)
	}
	replier, err := reply.NewGenerator(ctx, cfg.GeminiAPIKey,
		reply.WithModel(cfg.GeminiModel),
		reply.WithTemperature(cfg.ReplyTemperature),
		reply.WithMaxTokens(cfg.ReplyMaxTokens),
	)
	if err != nil {
		return fmt.Errorf("failed to create reply generator: %w", err)
	}

	opts := []app.Option{
		app.WithLogger(loggerInstance),
		app.WithSemantic(analyzer),
		app.WithReplier(replier),
		app.WithDataDir(cfg.DataDir),
		app.WithSaveSessions(cfg.SaveSessions),
		app.WithMemoSize(cfg.MemoSize),
		app.WithArchiveQueueSize(cfg.ArchiveQueueSize),
		app.WithArchiveWriterCount(cfg.ArchiveWriterCount),
		app.WithSnippetWindow(cfg.SnippetWindow),
		app.WithContextMaxTurns(cfg.ContextMaxTurns),
		app.WithTargetScore(cfg.TargetScore),
		app.WithMaxUserTurns(cfg.MaxUserTurns),
		app.WithTimeLimit(time.Duration(cfg.SessionTimeLimitMin) * time.Minute),
	}

	// Transcription is optional; without a key the endpoint reports unavailable.
	if cfg.AssemblyAIAPIKey != "" {
		transcriber, err := speech.NewTranscriber(cfg.AssemblyAIAPIKey,
			speech.WithRetryAttempts(cfg.SpeechRetryAttempts),
			speech.WithRetryBackoff(time.Duration(cfg.SpeechRetryBackoffMS)*time.Millisecond),
		)
		if err != nil {
			return fmt.Errorf("failed to create transcriber: %w", err)
		}
		opts = append(opts, app.WithTranscriber(transcriber))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	if replMode {
		return runREPL(ctx, svc)
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the persisted-session gauge as a side effect.
			svc.GetStats()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
