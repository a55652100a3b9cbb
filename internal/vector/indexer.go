package vector

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"rcman/internal/config"
	"rcman/internal/domain"
	"rcman/internal/port"
)

// Indexer embeds analysis chunks and stores them for similarity search.
type Indexer struct {
	embedder     port.Embedder
	chunks       port.ChunkRepository
	chunkSize    int
	chunkOverlap int
}

// NewIndexer creates an Indexer. cfg may be nil for defaults.
func NewIndexer(embedder port.Embedder, chunks port.ChunkRepository, cfg *config.VectorConfig) *Indexer {
	idx := &Indexer{
		embedder:     embedder,
		chunks:       chunks,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
	}
	if cfg != nil {
		if cfg.ChunkSize > 0 {
			idx.chunkSize = cfg.ChunkSize
		}
		if cfg.ChunkOverlap > 0 {
			idx.chunkOverlap = cfg.ChunkOverlap
		}
	}
	return idx
}

// IndexAnalysis embeds and stores all chunks of an analysis. Errors are
// logged and returned; callers treat them as non-fatal.
func (i *Indexer) IndexAnalysis(ctx context.Context, a *domain.Analysis) error {
	chunks := BuildChunks(a, i.chunkSize, i.chunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for j, chunk := range chunks {
		texts[j] = chunk.Content
	}

	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		log.Printf("vector.Indexer: embedding %d chunks failed: %v", len(chunks), err)
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		log.Printf("vector.Indexer: embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
		return fmt.Errorf("embedding chunks: got %d vectors for %d inputs", len(vectors), len(chunks))
	}

	for j := range chunks {
		chunks[j].ID = uuid.New()
		chunks[j].Embedding = vectors[j]
	}

	if err := i.chunks.InsertChunks(ctx, chunks); err != nil {
		log.Printf("vector.Indexer: storing %d chunks failed: %v", len(chunks), err)
		return fmt.Errorf("storing chunks: %w", err)
	}

	log.Printf("vector.Indexer: stored %d chunks for analysis %s", len(chunks), a.ID)
	return nil
}

// Search embeds the query and returns the closest chunks of one analysis.
func (i *Indexer) Search(ctx context.Context, analysisID uuid.UUID, query string, limit int) ([]domain.ChunkMatch, error) {
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 5
	}

	vectors, err := i.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return i.chunks.Search(ctx, analysisID, vectors[0], limit)
}
