package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"rcman/internal/domain"
)

// MockChunkRepo is a mock implementation of port.ChunkRepository.
type MockChunkRepo struct {
	mock.Mock
}

func (m *MockChunkRepo) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockChunkRepo) Search(ctx context.Context, analysisID uuid.UUID, embedding []float32, limit int) ([]domain.ChunkMatch, error) {
	args := m.Called(ctx, analysisID, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChunkMatch), args.Error(1)
}

func (m *MockChunkRepo) DeleteByAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	args := m.Called(ctx, analysisID)
	return args.Error(0)
}
