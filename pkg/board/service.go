// Package board applies the message board's business rules on top of a
// Store. The Store is the only source of truth: every call re-reads the full
// collection, and mutations rewrite it in full.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/epw80/message-board/pkg/message"
	"github.com/epw80/message-board/pkg/storage"
	"github.com/samber/lo"
)

// StatusHealthy is the only status Health reports
const StatusHealthy = "healthy"

// Notifier receives encoded live-feed events after successful mutations
type Notifier interface {
	Broadcast([]byte)
}

// Recorder counts successful mutations
type Recorder interface {
	MessageCreated()
	MessageDeleted()
}

// Health is the payload of a health probe
type Health struct {
	Status    string
	Timestamp time.Time
	Count     int
}

// Service implements create, list, delete and health over a Store
type Service struct {
	store    storage.Store
	logger   *slog.Logger
	notifier Notifier
	recorder Recorder
	now      func() time.Time
	build    func(text string) (*message.Message, error)

	// mu serializes read-modify-write cycles so concurrent mutations
	// cannot overwrite each other
	mu sync.RWMutex
}

// Option customizes a Service
type Option func(*Service)

// WithNotifier publishes created/deleted events to n
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithRecorder reports mutations to r
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock overrides the clock used for health timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service on top of store
func New(store storage.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		build:  message.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates text, appends a new message and persists the collection.
// Invalid text is rejected before the store is touched.
func (s *Service) Create(ctx context.Context, text string) (*message.Message, error) {
	msg, err := s.build(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to store malformed message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	msgs = append(msgs, *msg)
	if err := s.store.WriteAll(ctx, msgs); err != nil {
		return nil, err
	}

	s.logger.Info("Message created", slog.String("id", msg.ID))
	s.publish(message.CreatedEvent(*msg))
	if s.recorder != nil {
		s.recorder.MessageCreated()
	}

	return msg, nil
}

// List returns every message, newest first
func (s *Service) List(ctx context.Context) ([]message.Message, error) {
	s.mu.RLock()
	msgs, err := s.store.ReadAll(ctx)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	// Reverse to present newest first
	out := make([]message.Message, len(msgs))
	copy(out, msgs)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Delete removes the message whose id matches exactly. ErrNotFound is
// returned, and nothing is written, when no message matches.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.store.ReadAll(ctx)
	if err != nil {
		return err
	}

	filtered := lo.Filter(msgs, func(m message.Message, _ int) bool {
		return m.ID != id
	})
	if len(filtered) == len(msgs) {
		return ErrNotFound
	}

	if err := s.store.WriteAll(ctx, filtered); err != nil {
		return err
	}

	s.logger.Info("Message deleted", slog.String("id", id))
	s.publish(message.DeletedEvent(id))
	if s.recorder != nil {
		s.recorder.MessageDeleted()
	}

	return nil
}

// Health reports the collection size. It never fails: a read error is logged
// and counted as an empty collection.
func (s *Service) Health(ctx context.Context) Health {
	s.mu.RLock()
	msgs, err := s.store.ReadAll(ctx)
	s.mu.RUnlock()
	if err != nil {
		s.logger.Warn("health check could not count messages",
			slog.String("error", err.Error()))
		msgs = nil
	}

	return Health{
		Status:    StatusHealthy,
		Timestamp: s.now().UTC(),
		Count:     len(msgs),
	}
}

func (s *Service) publish(evt message.Event) {
	if s.notifier == nil {
		return
	}

	data, err := evt.ToJSON()
	if err != nil {
		s.logger.Error("failed to encode event",
			slog.String("type", string(evt.Type)),
			slog.String("error", err.Error()))
		return
	}
	s.notifier.Broadcast(data)
}
