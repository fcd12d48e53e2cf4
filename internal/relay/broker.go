package relay

import (
	"sync"
	"sync/atomic"
)

const subscriberBufSize = 256

// Event is one published layout event. Payload is JSON.
type Event struct {
	Feed    string
	Layout  string
	Payload string
}

// Filter selects events by feed and layout id. A nil set accepts everything.
type Filter struct {
	Feeds   map[string]bool
	Layouts map[string]bool
}

// Accept reports whether evt passes the filter.
func (f Filter) Accept(evt Event) bool {
	if f.Feeds != nil && !f.Feeds[evt.Feed] {
		return false
	}
	if f.Layouts != nil && !f.Layouts[evt.Layout] {
		return false
	}
	return true
}

type subscriber struct {
	ch     chan Event
	filter Filter
}

// Broker fans events out to stream clients. Filtering happens on publish, so
// a client's buffer only holds events it asked for.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]subscriber
	nextID      atomic.Int64
	published   atomic.Int64
	dropped     atomic.Int64
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subscribers: make(map[int64]subscriber)}
}

// Subscribe registers a client. The returned channel is buffered; when it is
// full further events for that client are dropped.
func (b *Broker) Subscribe(f Filter) (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[id] = subscriber{ch: ch, filter: f}
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a client and closes its channel. Unknown ids are ignored.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
		close(sub.ch)
	}
	b.mu.Unlock()
}

// Publish delivers evt to every client whose filter accepts it. It never
// blocks.
func (b *Broker) Publish(evt Event) {
	b.published.Add(1)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		if !sub.filter.Accept(evt) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

// ClientCount returns the number of active subscribers.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Published returns how many events were handed to the broker.
func (b *Broker) Published() int64 { return b.published.Load() }

// Dropped returns how many deliveries were skipped for slow clients.
func (b *Broker) Dropped() int64 { return b.dropped.Load() }
