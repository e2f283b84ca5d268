// Command lifegraph-web runs the LifeGraph HTTP server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/scrypster/lifegraph/internal/config"
	"github.com/scrypster/lifegraph/internal/engine"
	"github.com/scrypster/lifegraph/internal/llm"
	"github.com/scrypster/lifegraph/internal/server"
	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/internal/storage/postgres"
	"github.com/scrypster/lifegraph/internal/storage/sqlite"
)

func main() {
	envFile := flag.String("env", ".env", "Path to .env file (optional)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load %s: %v", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Overlay DB-persisted user settings once the store is up.
	if dbStore, ok := store.(interface{ GetDB() *sql.DB }); ok {
		if dbCfg, err := config.LoadFromDB(dbStore.GetDB()); err == nil {
			cfg = dbCfg
		} else {
			log.Printf("Warning: could not load user settings: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generator, embedder := buildModelClients(cfg)

	var worker *engine.TaggingWorker
	numWorkers := cfg.Worker.NumWorkers
	if cfg.Storage.Engine == "sqlite" {
		// Single writer avoids database-locked errors under load.
		numWorkers = 1
	}
	worker = engine.NewTaggingWorker(store, store, generator, embedder, engine.TaggingWorkerConfig{
		NumWorkers: numWorkers,
		QueueSize:  cfg.Worker.QueueSize,
		MaxRetries: cfg.Worker.MaxRetries,
	})
	worker.Start()

	addr, _, err := server.Start(ctx, cfg, store, server.Options{
		Worker:    worker,
		Generator: generator,
	})
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("LifeGraph running at http://%s (storage: %s)", addr, cfg.Storage.Engine)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	worker.Stop()
	cancel()
	time.Sleep(1 * time.Second)
}

// openStore selects the storage backend from configuration.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Engine {
	case "postgres":
		return postgres.New(cfg.Storage.PostgresDSN)
	default:
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, err
		}
		return sqlite.New(cfg.Storage.DataPath + "/lifegraph.db")
	}
}

// buildModelClients constructs the LLM clients. Both may be nil, which turns
// the AI features off without affecting the rest of the API.
func buildModelClients(cfg *config.Config) (llm.TextGenerator, llm.EmbeddingGenerator) {
	provider := llm.ProviderConfig{Provider: cfg.LLM.Provider}
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.OpenAIAPIKey == "" {
			log.Println("Warning: LIFEGRAPH_OPENAI_API_KEY not set; AI features disabled")
			return nil, nil
		}
		provider.APIKey = cfg.LLM.OpenAIAPIKey
		provider.Model = cfg.LLM.OpenAIModel
	case "anthropic":
		if cfg.LLM.AnthropicAPIKey == "" {
			log.Println("Warning: LIFEGRAPH_ANTHROPIC_API_KEY not set; AI features disabled")
			return nil, nil
		}
		provider.APIKey = cfg.LLM.AnthropicAPIKey
		provider.Model = cfg.LLM.AnthropicModel
	default:
		provider.BaseURL = cfg.LLM.OllamaURL
		provider.Model = cfg.LLM.OllamaModel
		provider.EmbeddingModel = cfg.LLM.OllamaEmbeddingModel
	}

	generator, err := llm.NewTextGenerator(provider)
	if err != nil {
		log.Printf("Warning: %v; AI features disabled", err)
		return nil, nil
	}
	embedder, err := llm.NewEmbeddingGenerator(provider)
	if err != nil {
		log.Printf("Warning: embeddings unavailable: %v", err)
		embedder = nil
	}
	return generator, embedder
}
