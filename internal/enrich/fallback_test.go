package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcman/internal/port"
)

// stubEnricher is a canned port.Enricher for circuit tests.
type stubEnricher struct {
	out   string
	err   error
	model string
	calls int
}

func (s *stubEnricher) Complete(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.out, s.err
}

func (s *stubEnricher) Model() string { return s.model }

func newTestFallback(enrichers ...*stubEnricher) (*FallbackEnricher, []string) {
	ports := make([]port.Enricher, len(enrichers))
	names := make([]string, len(enrichers))
	for i, e := range enrichers {
		ports[i] = e
		names[i] = e.model
	}
	return NewFallbackEnricher(ports, names), names
}

func TestFallbackEnricher_PrimarySucceeds(t *testing.T) {
	primary := &stubEnricher{out: "ok", model: "model-a"}
	secondary := &stubEnricher{out: "unused", model: "model-b"}
	f, _ := newTestFallback(primary, secondary)

	out, err := f.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "model-a", f.Model())
	assert.Zero(t, secondary.calls)
}

func TestFallbackEnricher_FallsThroughOnError(t *testing.T) {
	primary := &stubEnricher{err: errors.New("boom"), model: "model-a"}
	secondary := &stubEnricher{out: "rescued", model: "model-b"}
	f, _ := newTestFallback(primary, secondary)

	out, err := f.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "rescued", out)
	assert.Equal(t, "model-b", f.Model())
	assert.Equal(t, 1, primary.calls)
}

func TestFallbackEnricher_OpensCircuitOnRateLimit(t *testing.T) {
	primary := &stubEnricher{err: NewRateLimitError("model-a", errors.New("429"), 300), model: "model-a"}
	secondary := &stubEnricher{out: "rescued", model: "model-b"}
	f, _ := newTestFallback(primary, secondary)

	_, err := f.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)

	// Second call skips the rate-limited primary entirely.
	out, err := f.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "rescued", out)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 2, secondary.calls)
}

func TestFallbackEnricher_AllRateLimited(t *testing.T) {
	primary := &stubEnricher{err: NewRateLimitError("model-a", errors.New("429"), 60), model: "model-a"}
	secondary := &stubEnricher{err: NewRateLimitError("model-b", errors.New("429"), 120), model: "model-b"}
	f, _ := newTestFallback(primary, secondary)

	_, err := f.Complete(context.Background(), "prompt")

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallbackEnricher_AllFailed(t *testing.T) {
	primary := &stubEnricher{err: errors.New("boom-a"), model: "model-a"}
	secondary := &stubEnricher{err: errors.New("boom-b"), model: "model-b"}
	f, _ := newTestFallback(primary, secondary)

	_, err := f.Complete(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all enrichers failed")
}
