package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davmoreno/lucia/internal/agent"
	"github.com/davmoreno/lucia/internal/catalog"
	"github.com/davmoreno/lucia/internal/completion"
	"github.com/davmoreno/lucia/internal/config"
	"github.com/davmoreno/lucia/internal/finance"
	"github.com/davmoreno/lucia/internal/format"
	"github.com/davmoreno/lucia/internal/httpapi"
	"github.com/davmoreno/lucia/internal/knowledge"
	"github.com/davmoreno/lucia/internal/memory"
	"github.com/davmoreno/lucia/internal/observability"
	"github.com/davmoreno/lucia/internal/tools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	window := observability.NewTurnWindow(256)

	ctx := context.Background()
	store, err := memory.NewStore(ctx, cfg.RedisURL, cfg.DatabaseURL, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("session store init failed: %v", err)
	}
	defer store.Close()

	inventory, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Printf("catalog unavailable (%v), inventory tools will answer empty", err)
		inventory = catalog.Empty()
	} else {
		log.Printf("catalog loaded: %d cars from %s", inventory.Size(), cfg.CatalogPath)
	}

	knowledgeOpts := []knowledge.Option{
		knowledge.WithTimeout(cfg.KnowledgeTimeout),
		knowledge.WithFallbackObserver(metrics.KnowledgeFallbacks.Inc),
	}
	completionCfg := completion.Config{
		Mode:    cfg.CompletionMode,
		BaseURL: cfg.CompletionBaseURL,
		APIKey:  cfg.CompletionAPIKey,
		Model:   cfg.CompletionModel,
		Timeout: cfg.CompletionTimeout,
	}
	if cfg.QdrantURL != "" && cfg.CompletionAPIKey != "" {
		embedder := completion.NewOpenAIEmbedder(completionCfg, cfg.EmbeddingModel)
		retriever, err := knowledge.NewQdrantRetriever(knowledge.QdrantConfig{
			URL:        cfg.QdrantURL,
			Collection: cfg.QdrantCollection,
			APIKey:     cfg.QdrantAPIKey,
			MinScore:   float32(cfg.KnowledgeMinScore),
		}, embedder)
		if err != nil {
			log.Printf("qdrant unavailable (%v), using curated knowledge only", err)
		} else {
			defer retriever.Close()
			knowledgeOpts = append(knowledgeOpts, knowledge.WithRetriever(retriever))
			log.Printf("knowledge retriever: qdrant collection %q", cfg.QdrantCollection)
		}
	}
	knowledgeStore, err := knowledge.NewStore(knowledge.FallbackChunks(), knowledgeOpts...)
	if err != nil {
		log.Fatalf("knowledge store init failed: %v", err)
	}

	client, err := completion.NewClient(completionCfg)
	if err != nil {
		log.Fatalf("completion client init failed: %v", err)
	}

	engine := finance.NewEngine(cfg.AnnualRate)
	var descriptors []tools.Descriptor
	descriptors = append(descriptors, tools.CarTools(inventory)...)
	descriptors = append(descriptors, tools.FinancingTools(engine)...)
	descriptors = append(descriptors, tools.InfoTools(knowledgeStore)...)
	registry, err := tools.NewRegistry(descriptors...)
	if err != nil {
		log.Fatalf("tool registry init failed: %v", err)
	}
	log.Printf("tool catalog: %v", registry.Names())

	orchestrator := agent.New(client, registry, store,
		format.New(cfg.ResponseMaxChars), metrics, window, log.Default(),
		agent.Config{
			HistoryWindow:     cfg.HistoryWindow,
			MaxToolIterations: cfg.MaxToolIterations,
		})

	api := httpapi.New(cfg, orchestrator, window, log.Default())
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	if inmem, ok := store.(*memory.InMemoryStore); ok {
		inmem.StartJanitor(runCtx, time.Minute)
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
