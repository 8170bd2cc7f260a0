// Package taskbus implements the Progress/Event Bus (C13): a per-task-id
// stream of TaskSnapshot updates. Subscribers connected before a task's
// terminal state see every update from that point on; subscribers connecting
// after terminal see only the terminal snapshot, replayed from a bounded
// last-state cache.
package taskbus

import (
	"sync"

	"github.com/google/uuid"

	"github.com/contentforge/conditioncore/pkg/models"
)

const defaultLastStateCapacity = 1000

// Bus fans out TaskSnapshot updates the way the teacher's ObserverManager
// fans out events to registered observers (internal/application/observer/manager.go),
// generalized from "notify N named observers" to "notify N subscribers of one task".
type Bus struct {
	mu    sync.Mutex
	tasks map[string]*taskEntry
	last  *lastStateCache
}

type taskEntry struct {
	mu          sync.Mutex
	snapshot    models.TaskSnapshot
	started     bool
	subscribers map[int]chan models.TaskSnapshot
	nextSubID   int
}

// New builds an empty Bus.
func New() *Bus {
	return &Bus{
		tasks: map[string]*taskEntry{},
		last:  newLastStateCache(defaultLastStateCapacity),
	}
}

// NewTaskID mints an opaque task identifier (spec.md §4.13: "a task has an
// opaque id").
func NewTaskID() string {
	return uuid.NewString()
}

// UpdateState overwrites id's current state and delivers it to every live
// subscriber, non-blocking per subscriber (spec.md §4.13, §6). Once state
// reaches a terminal value, the snapshot moves to the last-state cache and
// the live entry is torn down; any subscriber channels still open are closed.
func (b *Bus) UpdateState(id string, snapshot models.TaskSnapshot) {
	entry := b.entryFor(id)

	entry.mu.Lock()
	entry.snapshot = snapshot
	entry.started = true
	terminal := snapshot.State.Terminal()
	subs := make([]chan models.TaskSnapshot, 0, len(entry.subscribers))
	for _, ch := range entry.subscribers {
		subs = append(subs, ch)
	}
	if terminal {
		entry.subscribers = nil
	}
	entry.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
		}
		if terminal {
			close(ch)
		}
	}

	if terminal {
		b.last.put(id, snapshot)
		b.mu.Lock()
		delete(b.tasks, id)
		b.mu.Unlock()
	}
}

func (b *Bus) entryFor(id string) *taskEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.tasks[id]
	if !ok {
		entry = &taskEntry{subscribers: map[int]chan models.TaskSnapshot{}}
		b.tasks[id] = entry
	}
	return entry
}

// Subscribe returns a channel that immediately receives the task's current
// snapshot (if any) followed by every subsequent update, and a cancel func
// to stop receiving. A task already terminal delivers just its terminal
// snapshot, from the last-state cache, then closes the channel.
func (b *Bus) Subscribe(id string) (<-chan models.TaskSnapshot, func()) {
	ch := make(chan models.TaskSnapshot, 16)

	b.mu.Lock()
	entry, active := b.tasks[id]
	b.mu.Unlock()

	if !active {
		if snapshot, ok := b.last.get(id); ok {
			ch <- snapshot
		}
		close(ch)
		return ch, func() {}
	}

	entry.mu.Lock()
	subID := entry.nextSubID
	entry.nextSubID++
	if entry.subscribers == nil {
		entry.subscribers = map[int]chan models.TaskSnapshot{}
	}
	entry.subscribers[subID] = ch
	if entry.started {
		ch <- entry.snapshot
	}
	entry.mu.Unlock()

	cancel := func() {
		entry.mu.Lock()
		delete(entry.subscribers, subID)
		entry.mu.Unlock()
	}
	return ch, cancel
}
