// Package event provides a synchronous publish/subscribe bus connecting the
// editor core to its collaborators (caret renderer, persistence autosave).
//
// Delivery is synchronous and ordered: Publish invokes every matching
// handler before returning, on the publisher's goroutine. The editor is
// single-writer, so handlers observe a consistent document. Handler panics
// are recovered and counted; a collaborator can never take down the
// keystroke path.
package event

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Errors returned by bus operations.
var (
	// ErrNilHandler indicates a subscription with no handler.
	ErrNilHandler = errors.New("nil handler")

	// ErrInvalidTopic indicates an empty topic.
	ErrInvalidTopic = errors.New("invalid topic")
)

// Topic names an event stream in dot notation.
type Topic string

// Topics published by the editor core.
const (
	// TopicCursorMoved fires after every successful selection restore.
	TopicCursorMoved Topic = "cursor.moved"

	// TopicDocumentChanged fires after any content or structural mutation.
	TopicDocumentChanged Topic = "document.changed"

	// TopicBlockConverted fires for each block kind conversion performed by
	// a reconciliation pass.
	TopicBlockConverted Topic = "block.converted"
)

// Event is anything carrying a topic.
type Event interface {
	EventTopic() Topic
}

// Handler processes a delivered event.
type Handler func(Event)

// Subscription identifies an active subscription for later removal.
type Subscription uint64

// Stats reports bus counters.
type Stats struct {
	EventsPublished  uint64
	HandlersExecuted uint64
	HandlerPanics    uint64
}

type subscriber struct {
	id      Subscription
	handler Handler
}

// Bus is a synchronous topic-keyed pub/sub bus. All methods are safe for
// concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]subscriber
	nextID uint64

	eventsPublished  atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerPanics    atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscriber)}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(t Topic, h Handler) (Subscription, error) {
	if h == nil {
		return 0, ErrNilHandler
	}
	if t == "" {
		return 0, ErrInvalidTopic
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := Subscription(b.nextID)
	b.subs[t] = append(b.subs[t], subscriber{id: id, handler: h})
	return id, nil
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (b *Bus) Unsubscribe(id Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for t, list := range b.subs {
		for i, s := range list {
			if s.id == id {
				b.subs[t] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to every handler subscribed to its topic,
// in subscription order, recovering handler panics.
func (b *Bus) Publish(ev Event) {
	if ev == nil {
		return
	}
	t := ev.EventTopic()
	if t == "" {
		return
	}

	b.mu.RLock()
	list := make([]subscriber, len(b.subs[t]))
	copy(list, b.subs[t])
	b.mu.RUnlock()

	b.eventsPublished.Add(1)
	for _, s := range list {
		b.deliver(s.handler, ev)
	}
}

func (b *Bus) deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
		}
	}()
	b.handlersExecuted.Add(1)
	h(ev)
}

// Stats returns current bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsPublished:  b.eventsPublished.Load(),
		HandlersExecuted: b.handlersExecuted.Load(),
		HandlerPanics:    b.handlerPanics.Load(),
	}
}
