// Docqd is a document question-answering daemon.
//
// This binary starts the docqd HTTP server with full service
// initialization: vector store, embeddings, the language model client,
// and the question pipeline.
//
// Configuration is loaded from ~/.config/docqd/config.yaml and
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start server with defaults
//	docqd
//
//	# Point at a specific config file
//	docqd -config /etc/docqd/config.yaml
//
//	# Configure via environment
//	SERVER_HTTP_PORT=9191 VECTORSTORE_PROVIDER=qdrant docqd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docqd/internal/config"
	"github.com/fyrsmithlabs/docqd/internal/embeddings"
	httpserver "github.com/fyrsmithlabs/docqd/internal/http"
	"github.com/fyrsmithlabs/docqd/internal/llm"
	"github.com/fyrsmithlabs/docqd/internal/logging"
	"github.com/fyrsmithlabs/docqd/internal/passage"
	"github.com/fyrsmithlabs/docqd/internal/qa"
	"github.com/fyrsmithlabs/docqd/internal/retrieval"
	"github.com/fyrsmithlabs/docqd/internal/telemetry"
	"github.com/fyrsmithlabs/docqd/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/docqd/config.yaml)")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  docqd           Start the docqd daemon\n")
			fmt.Fprintf(os.Stderr, "  docqd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("docqd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the docqd server and blocks until context cancellation.
//
// Initialization order:
//  1. Load and validate configuration
//  2. Initialize logger
//  3. Create embedding service and vector store
//  4. Create the language model client
//  5. Wire the question pipeline
//  6. Start the HTTP server
//  7. Graceful shutdown on context cancellation
func run(ctx context.Context, configPath string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	logger.Info("starting docqd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("vectorstore", cfg.VectorStore.Provider),
		zap.String("answer_mode", cfg.Answer.Mode),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	embedder, err := embeddings.NewService(cfg.Embeddings)
	if err != nil {
		return fmt.Errorf("failed to initialize embeddings: %w", err)
	}

	store, err := vectorstore.NewStore(cfg.VectorStore, embedder, logger.Named("vectorstore"))
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("vector store close failed", zap.Error(err))
		}
	}()

	model, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize model client: %w", err)
	}

	normalizer, err := passage.NewNormalizer(cfg.Passage)
	if err != nil {
		return fmt.Errorf("failed to initialize passage normalizer: %w", err)
	}

	mode := cfg.Mode()
	pipeline := qa.NewPipeline(
		retrieval.NewRetriever(store, cfg.Retrieval, logger.Named("retrieval")),
		normalizer,
		qa.NewComposer(model, mode),
		qa.NewParser(mode),
		logger.Named("qa"),
	)

	srv, err := httpserver.NewServer(pipeline, logger.Named("http"), &httpserver.Config{
		Host:           "0.0.0.0",
		Port:           cfg.Server.Port,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return <-errCh
}
