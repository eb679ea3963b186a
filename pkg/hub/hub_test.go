package hub

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

// mockSubscriber implements the Subscriber interface for testing
type mockSubscriber struct {
	id     string
	events [][]byte
	closed bool
	mu     sync.Mutex
}

func (m *mockSubscriber) Send(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.events = append(m.events, data)
	}
}

func (m *mockSubscriber) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockSubscriber) ID() string {
	return m.id
}

func (m *mockSubscriber) EventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *mockSubscriber) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func newMockSubscriber(id string) *mockSubscriber {
	return &mockSubscriber{id: id}
}

func newTestHub() *Hub {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
	return New(logger)
}

// waitFor polls cond until it holds or a second passes
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 1s")
}

func TestHub_SubscribeUnsubscribe(t *testing.T) {
	hub := newTestHub()
	go hub.Run()
	defer hub.Shutdown()

	sub := newMockSubscriber("test1")

	hub.Subscribe(sub)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.Unsubscribe(sub)
	waitFor(t, func() bool { return hub.ClientCount() == 0 })

	if !sub.IsClosed() {
		t.Error("subscriber should be closed after unsubscribe")
	}
}

func TestHub_Broadcast(t *testing.T) {
	hub := newTestHub()
	go hub.Run()
	defer hub.Shutdown()

	subs := []*mockSubscriber{
		newMockSubscriber("sub1"),
		newMockSubscriber("sub2"),
		newMockSubscriber("sub3"),
	}
	for _, s := range subs {
		hub.Subscribe(s)
	}
	waitFor(t, func() bool { return hub.ClientCount() == len(subs) })

	hub.Broadcast([]byte(`{"type":"message.created"}`))

	for _, s := range subs {
		waitFor(t, func() bool { return s.EventCount() == 1 })
	}
}

func TestHub_ConcurrentBroadcasts(t *testing.T) {
	hub := newTestHub()
	go hub.Run()
	defer hub.Shutdown()

	const numSubscribers = 20
	const numEvents = 100

	subs := make([]*mockSubscriber, numSubscribers)
	for i := range subs {
		subs[i] = newMockSubscriber(fmt.Sprintf("sub-%d", i))
		hub.Subscribe(subs[i])
	}
	waitFor(t, func() bool { return hub.ClientCount() == numSubscribers })

	var wg sync.WaitGroup
	wg.Add(numEvents)
	for i := 0; i < numEvents; i++ {
		go func() {
			defer wg.Done()
			hub.Broadcast([]byte("event"))
		}()
	}
	wg.Wait()

	for _, s := range subs {
		waitFor(t, func() bool { return s.EventCount() == numEvents })
	}
}

func TestHub_Shutdown(t *testing.T) {
	hub := newTestHub()
	go hub.Run()

	subs := []*mockSubscriber{
		newMockSubscriber("sub1"),
		newMockSubscriber("sub2"),
	}
	for _, s := range subs {
		hub.Subscribe(s)
	}
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	hub.Shutdown()
	waitFor(t, func() bool { return hub.ClientCount() == 0 })

	for _, s := range subs {
		if !s.IsClosed() {
			t.Errorf("subscriber %s should be closed after shutdown", s.ID())
		}
	}
}

func TestHub_AfterShutdown(t *testing.T) {
	hub := newTestHub()
	go hub.Run()
	hub.Shutdown()
	hub.Shutdown() // idempotent

	done := make(chan struct{})
	late := newMockSubscriber("late")
	go func() {
		hub.Broadcast([]byte("ignored"))
		hub.Subscribe(late)
		hub.Unsubscribe(late)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub operations blocked after shutdown")
	}

	if !late.IsClosed() {
		t.Error("subscriber joining after shutdown should be closed")
	}
}

func TestHub_BroadcastWithoutRunDropsWhenFull(t *testing.T) {
	hub := newTestHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < eventBufferSize+10; i++ {
			hub.Broadcast([]byte("event"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full queue")
	}
}

func TestHub_UnsubscribeUnknown(t *testing.T) {
	hub := newTestHub()
	go hub.Run()
	defer hub.Shutdown()

	sub := newMockSubscriber("test1")
	hub.Unsubscribe(sub)

	if count := hub.ClientCount(); count != 0 {
		t.Errorf("expected 0 subscribers, got %d", count)
	}
	if sub.IsClosed() {
		t.Error("unknown subscriber should not be closed")
	}
}

func TestHub_DuplicateSubscribe(t *testing.T) {
	hub := newTestHub()
	go hub.Run()
	defer hub.Shutdown()

	sub := newMockSubscriber("test1")
	hub.Subscribe(sub)
	hub.Subscribe(sub)
	waitFor(t, func() bool { return hub.ClientCount() >= 1 })

	if count := hub.ClientCount(); count != 1 {
		t.Errorf("expected 1 subscriber, got %d", count)
	}
}

func BenchmarkHub_Broadcast(b *testing.B) {
	hub := newTestHub()
	go hub.Run()
	defer hub.Shutdown()

	for i := 0; i < 100; i++ {
		hub.Subscribe(newMockSubscriber(fmt.Sprintf("sub-%d", i)))
	}

	event := []byte(`{"type":"message.deleted","id":"x"}`)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		hub.Broadcast(event)
	}
}
