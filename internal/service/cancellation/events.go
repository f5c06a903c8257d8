package cancellation

import (
	"sync"

	"github.com/Domenick1991/travelbook/internal/domain"
)

// broadcaster fans cancellation events out to in-process subscribers. A slow
// subscriber misses events instead of blocking the publisher.
type broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]chan domain.CancellationEvent
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan domain.CancellationEvent)}
}

func (b *broadcaster) subscribe(buffer int) (<-chan domain.CancellationEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan domain.CancellationEvent, buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *broadcaster) publish(event domain.CancellationEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
