package campusfeed

import (
	"log/slog"
	"sync"
)

// Event action suffixes. Combined with a source type they form the event
// name set: instituteCreated, recruiterVisibilityChanged, staffDeleted...
const (
	ActionCreated           = "Created"
	ActionUpdated           = "Updated"
	ActionDeleted           = "Deleted"
	ActionVisibilityChanged = "VisibilityChanged"
)

// EventName builds the wire name for a source/action pair.
func EventName(source SourceType, action string) string {
	return string(source) + action
}

// Event is a change notification broadcast to admin sessions. Payload is
// the full mutated record for Created/Updated/VisibilityChanged and a
// DeletedPayload for Deleted. Delivery is at-most-once and unordered
// across event names; consumers must re-fetch, not trust payloads as a
// cache.
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// DeletedPayload is the payload for {source}Deleted events.
type DeletedPayload struct {
	ID string `json:"id"`
}

const subscriptionBuffer = 16

// Subscription is one admin session's event stream.
type Subscription struct {
	ch  chan Event
	hub *Hub
}

// Events returns the channel events are delivered on. The channel is
// closed when the subscription is closed.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub is a fire-and-forget broadcast bus. Publishing never blocks: a
// subscriber whose buffer is full has events dropped, and publishing with
// zero subscribers is a silent no-op.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	logger *slog.Logger
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the logger used for dropped-event notices.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) { h.logger = logger }
}

// NewHub creates an empty fanout hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a new admin session.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		ch:  make(chan Event, subscriptionBuffer),
		hub: h,
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
}

// Publish broadcasts the event to every connected session.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			h.logger.Debug("dropping event for slow subscriber", "event", event.Name)
		}
	}
}

// NoopPublisher discards every event. Useful when no realtime channel is
// wired, and in tests.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that discards everything.
func NewNoopPublisher() Publisher {
	return NoopPublisher{}
}

// Publish does nothing.
func (NoopPublisher) Publish(Event) {}
