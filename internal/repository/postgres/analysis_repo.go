package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"rcman/internal/domain"
	"rcman/internal/port"
)

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepo creates a new PostgreSQL-backed AnalysisRepository. The
// full analysis document lives in a JSONB column; list-view fields are
// projected into dedicated columns at write time.
func NewAnalysisRepo(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Create(ctx context.Context, analysis *domain.Analysis) error {
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}

	doc, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("analysisRepo.Create marshal: %w", err)
	}

	query := `INSERT INTO analyses (
		id, file_name, file_kind, risk_score,
		total_controls, control_gaps, enriched, document, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.ExecContext(ctx, query,
		analysis.ID, analysis.FileName, analysis.FileKind, analysis.RiskScore,
		analysis.TotalControls, analysis.ControlGaps, analysis.Enriched, doc, analysis.CreatedAt)
	if err != nil {
		return fmt.Errorf("analysisRepo.Create: %w", err)
	}
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	var doc []byte
	err := r.db.GetContext(ctx, &doc,
		"SELECT document FROM analyses WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetByID: %w", err)
	}

	var analysis domain.Analysis
	if err := json.Unmarshal(doc, &analysis); err != nil {
		return nil, fmt.Errorf("analysisRepo.GetByID unmarshal: %w", err)
	}
	return &analysis, nil
}

func (r *analysisRepo) List(ctx context.Context, offset, limit int) ([]domain.AnalysisSummary, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM analyses")
	if err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.List count: %w", err)
	}

	var summaries []domain.AnalysisSummary
	err = r.db.SelectContext(ctx, &summaries,
		`SELECT id, file_name, file_kind, risk_score, total_controls, control_gaps, enriched, created_at
		 FROM analyses ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.List: %w", err)
	}
	return summaries, total, nil
}

func (r *analysisRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM analyses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("analysisRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("analysisRepo.Delete rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrAnalysisNotFound
	}
	return nil
}
