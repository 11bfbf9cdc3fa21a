package session

import (
	"sync"

	"multidle/internal/game"
)

// EventKind names what happened to a session.
type EventKind string

// Event kinds
const (
	EventKeyApplied   EventKind = "key-applied"
	EventBoardSolved  EventKind = "board-solved"
	EventAllDone      EventKind = "all-done"
	EventInvalidEntry EventKind = "invalid-entry"
	EventDayRollover  EventKind = "day-rollover"
	EventModeChanged  EventKind = "mode-changed"
	EventStateChanged EventKind = "state-changed"
)

// Event is published after every state transition. Changes is the
// granular diff against the previous snapshot of Mode's game, or a reset
// followed by the whole game when the previous snapshot was another game.
type Event struct {
	Kind       EventKind     `json:"kind"`
	Mode       game.Mode     `json:"mode"`
	Key        string        `json:"key,omitempty"`
	BoardIndex int           `json:"boardIndex"`
	Changes    []game.Change `json:"changes,omitempty"`
	Result     *game.Result  `json:"result,omitempty"`
}

// Bus fans events out to subscribers in process.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

// NewBus returns a bus with no subscribers.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a func that removes it. Handlers run
// on the publishing goroutine and must not block.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers events in order to every current subscriber.
func (b *Bus) Publish(events ...Event) {
	b.mu.RLock()
	handlers := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()
	for _, e := range events {
		for _, fn := range handlers {
			fn(e)
		}
	}
}

// Len is the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
