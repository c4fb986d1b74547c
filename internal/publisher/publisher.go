// Package publisher defines the run-event publishing interface.
package publisher

import "context"

// Publisher pushes run-completion events to an event bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Noop discards events.
type Noop struct{}

// Publish does nothing and returns a fixed pseudo ID.
func (Noop) Publish(_ context.Context, _ string, _ any) (string, error) {
	return "noop", nil
}
