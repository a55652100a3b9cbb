package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"rcman/internal/domain"
	"rcman/internal/port"
)

type chunkRepo struct {
	db *sqlx.DB
}

// NewChunkRepo creates a new PostgreSQL-backed ChunkRepository on top of the
// pgvector extension.
func NewChunkRepo(db *sqlx.DB) port.ChunkRepository {
	return &chunkRepo{db: db}
}

func (r *chunkRepo) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("chunkRepo.InsertChunks begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO analysis_chunks (
		id, analysis_id, kind, department, risk_level, content, embedding
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, chunk := range chunks {
		_, err := tx.ExecContext(ctx, query,
			chunk.ID, chunk.AnalysisID, chunk.Kind, chunk.Department,
			chunk.RiskLevel, chunk.Content, pgvector.NewVector(chunk.Embedding))
		if err != nil {
			return fmt.Errorf("chunkRepo.InsertChunks: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("chunkRepo.InsertChunks commit: %w", err)
	}
	return nil
}

func (r *chunkRepo) Search(ctx context.Context, analysisID uuid.UUID, embedding []float32, limit int) ([]domain.ChunkMatch, error) {
	query := `SELECT id, analysis_id, kind, department, risk_level, content,
		embedding <=> $2 AS distance
		FROM analysis_chunks
		WHERE analysis_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3`

	rows, err := r.db.QueryxContext(ctx, query, analysisID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("chunkRepo.Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []domain.ChunkMatch
	for rows.Next() {
		var m domain.ChunkMatch
		err := rows.Scan(&m.ID, &m.AnalysisID, &m.Kind, &m.Department,
			&m.RiskLevel, &m.Content, &m.Distance)
		if err != nil {
			return nil, fmt.Errorf("chunkRepo.Search scan: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chunkRepo.Search rows: %w", err)
	}
	return matches, nil
}

func (r *chunkRepo) DeleteByAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM analysis_chunks WHERE analysis_id = $1", analysisID)
	if err != nil {
		return fmt.Errorf("chunkRepo.DeleteByAnalysis: %w", err)
	}
	return nil
}
