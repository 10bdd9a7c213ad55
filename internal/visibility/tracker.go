package visibility

import "sync"

// Tracker records which row identifiers are currently on screen. Appear and
// disappear events may arrive out of order during fast scrolling; the last
// event for an id wins and no balanced pairing is assumed before teardown.
type Tracker struct {
	mu      sync.Mutex
	visible map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{visible: map[string]struct{}{}}
}

func (t *Tracker) Appeared(id string) {
	t.mu.Lock()
	t.visible[id] = struct{}{}
	t.mu.Unlock()
}

func (t *Tracker) Disappeared(id string) {
	t.mu.Lock()
	delete(t.visible, id)
	t.mu.Unlock()
}

func (t *Tracker) IsVisible(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.visible[id]
	return ok
}

func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.visible)
}

func (t *Tracker) Reset() {
	t.mu.Lock()
	t.visible = map[string]struct{}{}
	t.mu.Unlock()
}
