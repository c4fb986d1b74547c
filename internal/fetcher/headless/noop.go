package headless

import (
	"context"
	"errors"

	"github.com/okorolenko/bookcat/internal/catalog"
)

// Noop implements catalog.Fetcher but always fails, for builds where
// headless browsing is not available.
type Noop struct{}

// NewNoop creates a new Noop fetcher.
func NewNoop() *Noop {
	return &Noop{}
}

// FetchPage returns an error since this is a stub implementation.
func (Noop) FetchPage(_ context.Context, _ string, _ int) (catalog.PageOutcome, error) {
	return catalog.PageOutcome{}, errors.New("headless fetcher not configured")
}
