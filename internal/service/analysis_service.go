package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"rcman/internal/domain"
	"rcman/internal/enrich"
	"rcman/internal/ingest"
	"rcman/internal/port"
	"rcman/internal/vector"
)

// AnalyzeInput is the DTO for analyzing an uploaded document.
type AnalyzeInput struct {
	FileName string
	Data     []byte
}

// AnalysisService defines the document analysis contract.
type AnalysisService interface {
	Analyze(ctx context.Context, input *AnalyzeInput) (*domain.Analysis, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)
	List(ctx context.Context, offset, limit int) ([]domain.AnalysisSummary, int, error)
	Search(ctx context.Context, id uuid.UUID, query string, limit int) ([]domain.ChunkMatch, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type analysisService struct {
	repo     port.AnalysisRepository
	chunks   port.ChunkRepository
	pipeline *ingest.Pipeline
	enricher *enrich.Service
	indexer  *vector.Indexer
	storage  port.ObjectStorage
	bucket   string
	maxBytes int64
}

// NewAnalysisService creates an AnalysisService. enricher, indexer, storage,
// and chunks are optional; pass nil to disable enrichment, vector search,
// and source archiving respectively.
func NewAnalysisService(
	repo port.AnalysisRepository,
	chunks port.ChunkRepository,
	pipeline *ingest.Pipeline,
	enricher *enrich.Service,
	indexer *vector.Indexer,
	storage port.ObjectStorage,
	bucket string,
	maxUploadBytes int64,
) AnalysisService {
	return &analysisService{
		repo:     repo,
		chunks:   chunks,
		pipeline: pipeline,
		enricher: enricher,
		indexer:  indexer,
		storage:  storage,
		bucket:   bucket,
		maxBytes: maxUploadBytes,
	}
}

func (s *analysisService) Analyze(ctx context.Context, input *AnalyzeInput) (*domain.Analysis, error) {
	if s.maxBytes > 0 && int64(len(input.Data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrFileTooLarge, len(input.Data), s.maxBytes)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), "."))
	kind, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: .%s", domain.ErrUnsupportedFormat, ext)
	}

	id := uuid.New()
	s.archiveSource(ctx, id, input, kind)

	res, err := s.pipeline.Analyze(input.FileName, input.Data)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", input.FileName, err)
	}

	analysis := res.Analysis
	analysis.ID = id
	analysis.CreatedAt = time.Now().UTC()

	// Enrichment failures never block the heuristic result.
	if s.enricher != nil {
		if err := s.enricher.EnrichAnalysis(ctx, res); err != nil {
			log.Printf("analysisService.Analyze: enrichment failed for %s: %v", id, err)
		}
	}

	if err := s.repo.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("saving analysis: %w", err)
	}

	if s.indexer != nil {
		if err := s.indexer.IndexAnalysis(ctx, analysis); err != nil {
			log.Printf("analysisService.Analyze: vector indexing failed for %s: %v", id, err)
		}
	}

	log.Printf("analysisService.Analyze: analyzed %s (%s): %d objectives, %d gaps, score %s",
		input.FileName, id, analysis.TotalControls, analysis.ControlGaps, analysis.RiskScore)
	return analysis, nil
}

// archiveSource uploads the raw document to object storage. Failures are
// logged and never block the analysis.
func (s *analysisService) archiveSource(ctx context.Context, id uuid.UUID, input *AnalyzeInput, kind domain.FileKind) {
	if s.storage == nil || s.bucket == "" {
		return
	}
	key := fmt.Sprintf("uploads/%s/%s", id, filepath.Base(input.FileName))
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(input.Data),
		ContentType: domain.ContentTypes[kind],
		Size:        int64(len(input.Data)),
	})
	if err != nil {
		log.Printf("analysisService.archiveSource: upload of %s failed: %v", key, err)
	}
}

func (s *analysisService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *analysisService) List(ctx context.Context, offset, limit int) ([]domain.AnalysisSummary, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *analysisService) Search(ctx context.Context, id uuid.UUID, query string, limit int) ([]domain.ChunkMatch, error) {
	if s.indexer == nil {
		return nil, domain.ErrSearchUnavailable
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.indexer.Search(ctx, id, query, limit)
}

func (s *analysisService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.chunks != nil {
		if err := s.chunks.DeleteByAnalysis(ctx, id); err != nil {
			log.Printf("analysisService.Delete: deleting chunks for %s: %v", id, err)
		}
	}
	return nil
}
