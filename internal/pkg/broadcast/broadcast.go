// Package broadcast implements the in-process "reminders changed" notification.
//
// Publishing is fire-and-forget: a subscriber that has not consumed the previous
// signal yet simply keeps that one, so bursts of changes coalesce into a single
// wake-up per subscriber and a slow subscriber never blocks a writer.
package broadcast

import "sync"

// Publisher is the write side, used by the reminder store after each commit.
type Publisher interface {
	Publish()
}

// Subscriber is the read side, used by observers such as the event stream.
type Subscriber interface {
	Subscribe() (<-chan struct{}, func())
}

// Broadcaster fans a change signal out to all current subscribers.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan struct{}
}

// New creates a Broadcaster without subscribers.
func New() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan struct{})}
}

// Subscribe registers a new subscriber. The returned channel receives a value
// after every Publish that happened since the last receive. The returned
// function unsubscribes and closes the channel; it is safe to call twice.
func (b *Broadcaster) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan struct{}, 1)
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

// Publish signals all subscribers without blocking.
func (b *Broadcaster) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of active subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
