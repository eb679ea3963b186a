package hub

import (
	"log/slog"
	"sync"
)

// eventBufferSize bounds queued events; Broadcast drops beyond it
const eventBufferSize = 256

// Subscriber is a live-feed connection
// This is an interface to avoid circular dependencies between hub and client packages
type Subscriber interface {
	Send([]byte)
	Close()
	ID() string
}

// Hub keeps live-feed subscribers and fans board events out to them
type Hub struct {
	// Registered subscribers
	subscribers map[Subscriber]bool

	// Encoded events waiting to be fanned out
	events chan []byte

	subscribe   chan Subscriber
	unsubscribe chan Subscriber

	// Guards the subscriber map for ClientCount
	mu sync.RWMutex

	logger *slog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a new Hub instance
func New(logger *slog.Logger) *Hub {
	return &Hub{
		events:      make(chan []byte, eventBufferSize),
		subscribe:   make(chan Subscriber),
		unsubscribe: make(chan Subscriber),
		subscribers: make(map[Subscriber]bool),
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Run starts the hub's main event loop
// This should be called in a goroutine
func (h *Hub) Run() {
	h.logger.Info("live feed started")

	for {
		select {
		case s := <-h.subscribe:
			h.mu.Lock()
			h.subscribers[s] = true
			h.mu.Unlock()

			h.logger.Info("subscriber joined",
				slog.String("subscriberId", s.ID()),
				slog.Int("subscribers", h.ClientCount()))

		case s := <-h.unsubscribe:
			h.mu.Lock()
			if _, ok := h.subscribers[s]; ok {
				delete(h.subscribers, s)
				s.Close()
			}
			h.mu.Unlock()

			h.logger.Info("subscriber left",
				slog.String("subscriberId", s.ID()),
				slog.Int("subscribers", h.ClientCount()))

		case event := <-h.events:
			h.mu.RLock()
			for s := range h.subscribers {
				// Send never blocks; full subscribers drop the event
				s.Send(event)
			}
			h.mu.RUnlock()

		case <-h.done:
			h.logger.Info("live feed shutting down")
			h.mu.Lock()
			for s := range h.subscribers {
				s.Close()
			}
			h.subscribers = make(map[Subscriber]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Subscribe adds s to the hub. After shutdown s is closed immediately.
func (h *Hub) Subscribe(s Subscriber) {
	select {
	case h.subscribe <- s:
	case <-h.done:
		s.Close()
	}
}

// Unsubscribe removes s from the hub
func (h *Hub) Unsubscribe(s Subscriber) {
	select {
	case h.unsubscribe <- s:
	case <-h.done:
	}
}

// Broadcast queues an encoded event for every subscriber. It never blocks the
// caller: when the queue is full, or the hub has stopped, the event is dropped.
func (h *Hub) Broadcast(event []byte) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.events <- event:
	default:
		h.logger.Warn("live feed queue full, dropping event")
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Shutdown stops the event loop and closes every subscriber
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}
