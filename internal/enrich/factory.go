package enrich

import (
	"fmt"

	"rcman/internal/config"
	"rcman/internal/port"
)

// ProviderFactory is a function that creates an Enricher from a provider config.
type ProviderFactory func(cfg *config.EnrichProviderConfig) (port.Enricher, error)

// registry of enrichment provider factories, populated by init() in each
// provider package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an enrichment provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewEnricher creates an Enricher from a provider config using the registered factory.
func NewEnricher(cfg *config.EnrichProviderConfig) (port.Enricher, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown enrichment provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
