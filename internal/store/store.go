package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dotswift/Pulse/internal/model"
)

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
)

// Event is one change notification from a Source.
type Event struct {
	Op     Op
	Entity model.Entity
}

// Source is the read side of the entity store the console consumes. Snapshot
// returns entities ordered ascending by creation time; Subscribe streams
// changes matching the predicate until the context is done.
type Source interface {
	Snapshot(p model.Predicate) []model.Entity
	Subscribe(ctx context.Context, p model.Predicate) <-chan Event
	Lookup(id string) (model.Entity, bool)
}

// Memory is an in-process Source backed by a bounded slice. When the buffer
// is full the oldest entities are evicted (retention is external policy; this
// mirrors a capped session buffer).
type Memory struct {
	mu       sync.RWMutex
	cap      int
	entities []model.Entity
	byID     map[string]int
	closed   bool

	subMu sync.Mutex
	subs  map[int]subscriber
	nextS int
}

type subscriber struct {
	pred model.Predicate
	ch   chan Event
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Memory{
		cap:  capacity,
		byID: map[string]int{},
		subs: map[int]subscriber{},
	}
}

func (m *Memory) Snapshot(p model.Predicate) []model.Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		// Mid-teardown reads yield an empty view rather than an error.
		return nil
	}
	out := make([]model.Entity, 0, len(m.entities))
	for _, e := range m.entities {
		if p.Allow(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (m *Memory) Lookup(id string) (model.Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.byID[id]; ok {
		return m.entities[i], true
	}
	return model.Entity{}, false
}

func (m *Memory) Subscribe(ctx context.Context, p model.Predicate) <-chan Event {
	ch := make(chan Event, 256)
	m.subMu.Lock()
	id := m.nextS
	m.nextS++
	m.subs[id] = subscriber{pred: p, ch: ch}
	m.subMu.Unlock()
	go func() {
		<-ctx.Done()
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}()
	return ch
}

// Insert appends an entity, evicting the oldest when over capacity.
func (m *Memory) Insert(e model.Entity) {
	m.mu.Lock()
	if _, dup := m.byID[e.ID]; dup {
		m.mu.Unlock()
		m.Update(e)
		return
	}
	m.entities = append(m.entities, e)
	m.byID[e.ID] = len(m.entities) - 1
	var evicted *model.Entity
	if len(m.entities) > m.cap {
		old := m.entities[0]
		evicted = &old
		m.entities = m.entities[1:]
		delete(m.byID, old.ID)
		for i := range m.entities {
			m.byID[m.entities[i].ID] = i
		}
	}
	m.mu.Unlock()
	if evicted != nil {
		m.notify(Event{Op: OpRemove, Entity: *evicted})
	}
	m.notify(Event{Op: OpInsert, Entity: e})
}

// Update replaces the stored entity with the same id. Unknown ids are
// inserted; the store may learn about a task only when it completes.
func (m *Memory) Update(e model.Entity) {
	m.mu.Lock()
	i, ok := m.byID[e.ID]
	if !ok {
		m.mu.Unlock()
		m.Insert(e)
		return
	}
	m.entities[i] = e
	m.mu.Unlock()
	m.notify(Event{Op: OpUpdate, Entity: e})
}

func (m *Memory) Remove(id string) {
	m.mu.Lock()
	i, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	e := m.entities[i]
	m.entities = append(m.entities[:i], m.entities[i+1:]...)
	delete(m.byID, id)
	for j := range m.entities {
		m.byID[m.entities[j].ID] = j
	}
	m.mu.Unlock()
	m.notify(Event{Op: OpRemove, Entity: e})
}

// Close marks the store torn down; snapshots return empty from here on.
func (m *Memory) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}

func (m *Memory) notify(ev Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, s := range m.subs {
		if ev.Op != OpRemove && !s.pred.Allow(ev.Entity) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			// Slow consumer: drop rather than block the writer.
		}
	}
}
