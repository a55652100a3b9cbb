package main

import (
	"fmt"
	"log"

	"rcman/internal/config"
	"rcman/internal/enrich"
	"rcman/internal/enrich/gemini"
	_ "rcman/internal/enrich/openai"
	"rcman/internal/ingest"
	"rcman/internal/port"
	"rcman/internal/repository/postgres"
	"rcman/internal/router"
	"rcman/internal/service"
	s3storage "rcman/internal/storage/s3"
	"rcman/internal/vector"
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

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	analysisRepo := postgres.NewAnalysisRepo(db)
	chunkRepo := postgres.NewChunkRepo(db)

	var storage port.ObjectStorage
	if cfg.S3.Enabled() {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	enrichSvc, err := buildEnrichService(&cfg.Enrich)
	if err != nil {
		return err
	}

	var indexer *vector.Indexer
	if cfg.Vector.Enabled && cfg.Embedding.APIKey != "" {
		embedder := gemini.NewEmbedder(&cfg.Embedding)
		indexer = vector.NewIndexer(embedder, chunkRepo, &cfg.Vector)
	}

	pipeline := ingest.NewPipeline(&cfg.Extract)
	analysisSvc := service.NewAnalysisService(
		analysisRepo,
		chunkRepo,
		pipeline,
		enrichSvc,
		indexer,
		storage,
		cfg.S3.Bucket,
		cfg.Server.MaxUploadMB<<20,
	)

	r := router.New(cfg, db, analysisSvc)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// buildEnrichService assembles the enrichment chain from the configured
// providers. With no providers configured it returns nil and the server
// serves heuristic-only analyses.
func buildEnrichService(cfg *config.EnrichConfig) (*enrich.Service, error) {
	var enrichers []port.Enricher
	var names []string
	for _, pc := range []*config.EnrichProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig()} {
		if pc == nil {
			continue
		}
		e, err := enrich.NewEnricher(pc)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize enrichment provider %q: %w", pc.Provider, err)
		}
		enrichers = append(enrichers, e)
		names = append(names, pc.Provider)
	}

	switch len(enrichers) {
	case 0:
		log.Printf("no enrichment providers configured; serving heuristic analyses only")
		return nil, nil
	case 1:
		return enrich.NewService(enrichers[0], cfg.MaxChars), nil
	default:
		return enrich.NewService(enrich.NewFallbackEnricher(enrichers, names), cfg.MaxChars), nil
	}
}
