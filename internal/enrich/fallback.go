package enrich

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"rcman/internal/port"
)

// circuitState tracks rate-limit backoff for a single enricher.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackEnricher tries enrichers in order, skipping those with open
// circuits. It implements port.Enricher.
type FallbackEnricher struct {
	enrichers []port.Enricher
	circuits  []*circuitState
	names     []string

	mu        sync.RWMutex
	lastModel string
}

// NewFallbackEnricher creates a FallbackEnricher from an ordered list of
// enrichers and their names.
func NewFallbackEnricher(enrichers []port.Enricher, names []string) *FallbackEnricher {
	circuits := make([]*circuitState, len(enrichers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackEnricher{
		enrichers: enrichers,
		circuits:  circuits,
		names:     names,
	}
}

func (f *FallbackEnricher) Complete(ctx context.Context, prompt string) (string, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, e := range f.enrichers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("enrich.FallbackEnricher: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := e.Complete(ctx, prompt)
		if err == nil {
			f.mu.Lock()
			f.lastModel = e.Model()
			f.mu.Unlock()
			return out, nil
		}

		log.Printf("enrich.FallbackEnricher: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return "", NewRateLimitError("all", fmt.Errorf("all enrichers rate limited"), int(retryAfter.Seconds()))
	}

	return "", fmt.Errorf("all enrichers failed: %w", lastErr)
}

// Model reports the model of the enricher that served the last successful
// completion, falling back to the first enricher's model before any call.
func (f *FallbackEnricher) Model() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.lastModel != "" {
		return f.lastModel
	}
	if len(f.enrichers) > 0 {
		return f.enrichers[0].Model()
	}
	return ""
}
