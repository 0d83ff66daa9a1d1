// Package eventbus is an in-process pub/sub for game events. Every
// subscriber owns a buffered queue; Publish never blocks on a subscriber.
package eventbus

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const DefaultBuffer = 64

// Event is the record delivered to every subscriber.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
	TS      int64  `json:"ts"`
}

// Handler consumes an event. Returning an error removes the subscriber.
type Handler func(Event) error

type Bus struct {
	mu     sync.Mutex
	subs   []*Subscription
	buffer int
	logger *slog.Logger
}

func New(buffer int, logger *slog.Logger) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{buffer: buffer, logger: logger}
}

// Subscription is one live subscriber. Events arrive on C until Done is
// closed, either by Close or because the subscriber fell behind.
type Subscription struct {
	id   string
	ch   chan Event
	done chan struct{}
	once sync.Once
	bus  *Bus
}

func (s *Subscription) ID() string { return s.id }
func (s *Subscription) C() <-chan Event { return s.ch }
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	s.bus.remove(s)
	s.bus.mu.Unlock()
}

// Subscribe registers a channel subscriber. Events published before this
// call are never delivered to it.
func (b *Bus) Subscribe() *Subscription {
	s := &Subscription{
		id:   uuid.NewString(),
		ch:   make(chan Event, b.buffer),
		done: make(chan struct{}),
		bus:  b,
	}
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return s
}

// SubscribeFunc runs h on a dedicated delivery goroutine for every event.
func (b *Bus) SubscribeFunc(h Handler) (unsubscribe func()) {
	s := b.Subscribe()
	go func() {
		for {
			select {
			case <-s.done:
				return
			case e := <-s.ch:
				if err := h(e); err != nil {
					b.logger.Debug("subscriber removed", "subscriber", s.id, "event", e.Type, "error", err)
					s.Close()
					return
				}
			}
		}
	}()
	return s.Close
}

// Publish enqueues e for every current subscriber in subscription order.
// A subscriber whose queue is full is dropped instead of blocking.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var slow []*Subscription
	for _, s := range b.subs {
		select {
		case s.ch <- e:
		default:
			slow = append(slow, s)
		}
	}
	for _, s := range slow {
		b.logger.Warn("dropping slow subscriber", "subscriber", s.id, "event", e.Type)
		b.remove(s)
	}
}

// Len reports the number of live subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// remove must be called with b.mu held.
func (b *Bus) remove(s *Subscription) {
	for i, sub := range b.subs {
		if sub == s {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			break
		}
	}
	s.once.Do(func() { close(s.done) })
}
