package vector_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rcman/internal/domain"
	"rcman/internal/vector"
	"rcman/mocks"
)

func indexedAnalysis() *domain.Analysis {
	return &domain.Analysis{
		ID: uuid.New(),
		Objectives: []domain.ControlObjective{
			{Department: "Finance", Objective: "Invoices approved", WhatCanGoWrong: "Bad payments", RiskLevel: domain.RiskHigh},
			{Department: "HR", Objective: "Timesheets reviewed", WhatCanGoWrong: "Overpayment", RiskLevel: domain.RiskLow},
		},
	}
}

func TestIndexAnalysis_EmbedsAndStores(t *testing.T) {
	a := indexedAnalysis()

	embedder := new(mocks.MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.MatchedBy(func(texts []string) bool {
		return len(texts) == 2
	})).Return([][]float32{{0.1, 0.2}, {0.3, 0.4}}, nil)

	chunks := new(mocks.MockChunkRepo)
	chunks.On("InsertChunks", mock.Anything, mock.MatchedBy(func(cs []domain.Chunk) bool {
		if len(cs) != 2 {
			return false
		}
		for _, c := range cs {
			if c.ID == uuid.Nil || c.AnalysisID != a.ID || len(c.Embedding) != 2 {
				return false
			}
		}
		return true
	})).Return(nil)

	idx := vector.NewIndexer(embedder, chunks, nil)
	require.NoError(t, idx.IndexAnalysis(context.Background(), a))
	embedder.AssertExpectations(t)
	chunks.AssertExpectations(t)
}

func TestIndexAnalysis_NothingToIndex(t *testing.T) {
	embedder := new(mocks.MockEmbedder)
	chunks := new(mocks.MockChunkRepo)

	idx := vector.NewIndexer(embedder, chunks, nil)
	require.NoError(t, idx.IndexAnalysis(context.Background(), &domain.Analysis{ID: uuid.New()}))
	embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestIndexAnalysis_EmbedError(t *testing.T) {
	embedder := new(mocks.MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	chunks := new(mocks.MockChunkRepo)

	idx := vector.NewIndexer(embedder, chunks, nil)
	err := idx.IndexAnalysis(context.Background(), indexedAnalysis())
	assert.ErrorIs(t, err, assert.AnError)
	chunks.AssertNotCalled(t, "InsertChunks", mock.Anything, mock.Anything)
}

func TestIndexAnalysis_VectorCountMismatch(t *testing.T) {
	embedder := new(mocks.MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).
		Return([][]float32{{0.1, 0.2}}, nil)
	chunks := new(mocks.MockChunkRepo)

	idx := vector.NewIndexer(embedder, chunks, nil)
	err := idx.IndexAnalysis(context.Background(), indexedAnalysis())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 vectors for 2 inputs")
	chunks.AssertNotCalled(t, "InsertChunks", mock.Anything, mock.Anything)
}

func TestSearch(t *testing.T) {
	id := uuid.New()

	embedder := new(mocks.MockEmbedder)
	embedder.On("Embed", mock.Anything, []string{"payroll risks"}).
		Return([][]float32{{0.5, 0.5}}, nil)

	chunks := new(mocks.MockChunkRepo)
	chunks.On("Search", mock.Anything, id, []float32{0.5, 0.5}, 5).
		Return([]domain.ChunkMatch{{Distance: 0.12}}, nil)

	idx := vector.NewIndexer(embedder, chunks, nil)
	matches, err := idx.Search(context.Background(), id, "payroll risks", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 0.12, matches[0].Distance, 1e-9)
}

func TestSearch_EmptyQuery(t *testing.T) {
	idx := vector.NewIndexer(new(mocks.MockEmbedder), new(mocks.MockChunkRepo), nil)
	_, err := idx.Search(context.Background(), uuid.New(), "", 5)
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}
