package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/epw80/message-board/pkg/message"
)

// ReadPolicy decides what a failed read turns into
type ReadPolicy int

const (
	// FailOpen logs the failure and presents an empty collection.
	FailOpen ReadPolicy = iota
	// FailClosed logs the failure and returns ErrPersistence.
	FailClosed
)

// ParseReadPolicy maps "open" and "closed" to a ReadPolicy
func ParseReadPolicy(s string) (ReadPolicy, error) {
	switch s {
	case "open", "":
		return FailOpen, nil
	case "closed":
		return FailClosed, nil
	default:
		return FailOpen, fmt.Errorf("unknown read failure policy %q", s)
	}
}

func (p ReadPolicy) String() string {
	if p == FailClosed {
		return "closed"
	}
	return "open"
}

// Guarded wraps a backend with the shared failure logging and read policy
type Guarded struct {
	Store
	policy ReadPolicy
	logger *slog.Logger
}

// NewGuarded wraps inner with the given read policy
func NewGuarded(inner Store, policy ReadPolicy, logger *slog.Logger) *Guarded {
	return &Guarded{
		Store:  inner,
		policy: policy,
		logger: logger,
	}
}

// Policy returns the configured read policy
func (g *Guarded) Policy() ReadPolicy {
	return g.policy
}

// ReadAll reads the collection. Under FailOpen a failure yields an empty
// collection and a nil error.
func (g *Guarded) ReadAll(ctx context.Context) ([]message.Message, error) {
	msgs, err := g.Store.ReadAll(ctx)
	if err != nil {
		g.logger.Error("Failed to read messages",
			slog.String("error", err.Error()),
			slog.String("policy", g.policy.String()))

		if g.policy == FailClosed {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		return []message.Message{}, nil
	}
	return msgs, nil
}

// WriteAll replaces the collection; failures are logged and returned wrapped
// in ErrPersistence
func (g *Guarded) WriteAll(ctx context.Context, msgs []message.Message) error {
	if err := g.Store.WriteAll(ctx, msgs); err != nil {
		g.logger.Error("Failed to write messages",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	g.logger.Info("Messages saved", slog.Int("count", len(msgs)))
	return nil
}
