package realtime

import (
	"sync"

	"tienda/internal/domain/cart"
	"tienda/internal/domain/catalog"
)

type EventKind string

const (
	EventCart     EventKind = "cart"
	EventProducts EventKind = "products"
)

// Event is what the coordinator emits after a committed mutation. Exactly one
// of Cart/Products is set, matching Kind.
type Event struct {
	Kind     EventKind
	Cart     *cart.View
	Products []catalog.Product
}

// Publisher is the producer side of the bus. The coordinator holds this
// interface so transports stay out of its dependency graph.
type Publisher interface {
	Publish(Event)
}

// Bus fans every published event out to all subscribers. Delivery is
// synchronous and fire-and-forget: subscribers must not block, and a
// subscriber error never reaches the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}
