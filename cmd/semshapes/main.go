package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/joho/godotenv"
	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"

	"semshapes/internal/api"
	"semshapes/internal/config"
	"semshapes/internal/domain"
	"semshapes/internal/embedding"
	"semshapes/internal/projection"
	"semshapes/internal/service"
	"semshapes/internal/vectorstore/memory"
	"semshapes/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var addr string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/semshapes/config.yaml if not provided)")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides config and SEMSHAPES_ADDR)")
	flag.Parse()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	config.ApplyEnv(cfg)
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if cfg.Diagnostics.Gops {
		startGops()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	table := embedding.LoadOrFallback(ctx, embedding.LoadConfig{
		Path:   cfg.Model.Path,
		Format: cfg.Model.Format,
		Table:  cfg.Model.Table,
		Limit:  cfg.Model.Limit,
	})

	// Assemble components
	var index domain.VectorIndex
	switch cfg.Index.Type {
	case "memory", "":
		index = memory.NewStorage()
	case "qdrant":
		if cfg.Index.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		index = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Index.Qdrant.URL,
			APIKey:     cfg.Index.Qdrant.APIKey,
			Collection: cfg.Index.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Index.Qdrant.TimeoutSecs) * time.Second,
			BatchSize:  cfg.Index.Qdrant.BatchSize,
			Recreate:   cfg.Index.Qdrant.Recreate,
		})
	default:
		log.Fatalf("unknown index: %s", cfg.Index.Type)
	}

	tsne := cfg.Projection.TSNE
	engine, err := service.NewEngine(table,
		service.WithIndex(index),
		service.WithTSNE(projection.TSNEConfig{
			Perplexity:   tsne.Perplexity,
			Iterations:   tsne.Iterations,
			LearningRate: tsne.LearningRate,
			Seed:         tsne.Seed,
		}),
	)
	if err != nil {
		log.Fatalf("engine init failed: %v", err)
	}

	handler := api.New(engine, api.Options{
		Defaults: api.Defaults{
			SimilarN:    cfg.Query.SimilarN,
			ArithmeticN: cfg.Query.ArithmeticN,
			VocabLimit:  cfg.Query.VocabLimit,
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := cfg.Server
	httpServer := &http.Server{
		Addr:              srv.Addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(srv.ReadHeaderTimeoutS) * time.Second,
		ReadTimeout:       time.Duration(srv.ReadTimeoutSecs) * time.Second,
		WriteTimeout:      time.Duration(srv.WriteTimeoutSecs) * time.Second,
		IdleTimeout:       time.Duration(srv.IdleTimeoutSecs) * time.Second,
	}

	log.Printf("semshapes listening on %s", httpServer.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %v", sig)
	case err := <-errCh:
		log.Fatalf("http server: %v", err)
	}
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), time.Duration(srv.ShutdownTimeoutS)*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	log.Printf("semshapes stopped")
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

func startGops() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}
