package port

import (
	"context"

	"github.com/google/uuid"

	"rcman/internal/domain"
)

// AnalysisRepository defines the contract for analysis persistence.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *domain.Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)
	List(ctx context.Context, offset, limit int) ([]domain.AnalysisSummary, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChunkRepository defines the contract for vector chunk persistence.
type ChunkRepository interface {
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error
	Search(ctx context.Context, analysisID uuid.UUID, embedding []float32, limit int) ([]domain.ChunkMatch, error)
	DeleteByAnalysis(ctx context.Context, analysisID uuid.UUID) error
}
