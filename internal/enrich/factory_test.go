package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rcman/internal/config"
	"rcman/internal/port"
)

func TestFactory_RegisterAndCreate(t *testing.T) {
	RegisterProvider("test-provider", func(cfg *config.EnrichProviderConfig) (port.Enricher, error) {
		return &stubEnricher{model: cfg.DefaultModel}, nil
	})

	e, err := NewEnricher(&config.EnrichProviderConfig{
		Provider:     "test-provider",
		DefaultModel: "test-model",
	})

	assert.NoError(t, err)
	assert.NotNil(t, e)
	assert.Equal(t, "test-model", e.Model())
}

func TestFactory_UnknownProvider(t *testing.T) {
	e, err := NewEnricher(&config.EnrichProviderConfig{
		Provider: "nonexistent-provider-xyz",
	})

	assert.Nil(t, e)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown enrichment provider")
}
