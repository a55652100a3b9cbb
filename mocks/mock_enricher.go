package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEnricher is a mock implementation of port.Enricher.
type MockEnricher struct {
	mock.Mock
}

func (m *MockEnricher) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockEnricher) Model() string {
	args := m.Called()
	return args.String(0)
}

// MockEmbedder is a mock implementation of port.Embedder.
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbedder) Dimensions() int {
	args := m.Called()
	return args.Int(0)
}
