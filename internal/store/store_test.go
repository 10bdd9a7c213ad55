package store

import (
	"context"
	"testing"
	"time"

	"github.com/dotswift/Pulse/internal/model"
)

func msg(id string, sec int64) model.Entity {
	return model.Entity{
		ID:        id,
		Kind:      model.KindMessage,
		Level:     "info",
		Message:   "m-" + id,
		CreatedAt: time.Unix(sec, 0),
	}
}

func task(id string, sec int64, status int) model.Entity {
	return model.Entity{
		ID:         id,
		Kind:       model.KindTask,
		Method:     "GET",
		URL:        "/api/" + id,
		StatusCode: status,
		CreatedAt:  time.Unix(sec, 0),
	}
}

func TestSnapshotOrderedAscending(t *testing.T) {
	m := NewMemory(100)
	m.Insert(msg("b", 20))
	m.Insert(msg("a", 10))
	m.Insert(msg("c", 30))

	got := m.Snapshot(model.Predicate{})
	if len(got) != 3 {
		t.Fatalf("len: %d", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].ID != want {
			t.Fatalf("order[%d] = %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestSnapshotAppliesPredicate(t *testing.T) {
	m := NewMemory(100)
	m.Insert(msg("m1", 10))
	m.Insert(task("t1", 20, 200))
	m.Insert(msg("m2", 30))

	got := m.Snapshot(model.Predicate{Mode: model.ModeNetwork})
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("network snapshot: %+v", got)
	}

	since := time.Unix(15, 0)
	got = m.Snapshot(model.Predicate{Since: &since})
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "m2" {
		t.Fatalf("since snapshot: %+v", got)
	}
}

func TestSubscribeDeliversMatchingEvents(t *testing.T) {
	m := NewMemory(100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := m.Subscribe(ctx, model.Predicate{Mode: model.ModeNetwork})
	m.Insert(msg("m1", 10))
	m.Insert(task("t1", 20, 0))
	m.Update(task("t1", 20, 200))

	var got []Event
	deadline := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case ev := <-ch:
			got = append(got, ev)
		case <-deadline:
			t.Fatalf("received %d events, want 2", len(got))
		}
	}
	if got[0].Op != OpInsert || got[0].Entity.ID != "t1" {
		t.Fatalf("first event: %+v", got[0])
	}
	if got[1].Op != OpUpdate || got[1].Entity.StatusCode != 200 {
		t.Fatalf("second event: %+v", got[1])
	}
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestUpdateUnknownIDInserts(t *testing.T) {
	m := NewMemory(100)
	m.Update(task("t1", 10, 200))
	if e, ok := m.Lookup("t1"); !ok || e.StatusCode != 200 {
		t.Fatalf("lookup after update-insert: %+v ok=%v", e, ok)
	}
}

func TestInsertDuplicateIDUpdates(t *testing.T) {
	m := NewMemory(100)
	m.Insert(task("t1", 10, 0))
	m.Insert(task("t1", 10, 404))
	if m.Len() != 1 {
		t.Fatalf("len: %d", m.Len())
	}
	if e, _ := m.Lookup("t1"); e.StatusCode != 404 {
		t.Fatalf("status: %d", e.StatusCode)
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	m := NewMemory(10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := m.Subscribe(ctx, model.Predicate{})

	for i := 0; i < 12; i++ {
		m.Insert(msg(string(rune('a'+i)), int64(i)))
	}
	if m.Len() != 10 {
		t.Fatalf("len: %d", m.Len())
	}
	if _, ok := m.Lookup("a"); ok {
		t.Fatalf("oldest must be evicted")
	}
	if _, ok := m.Lookup("l"); !ok {
		t.Fatalf("newest must remain")
	}

	removes := 0
	deadline := time.After(2 * time.Second)
	for removes < 2 {
		select {
		case ev := <-ch:
			if ev.Op == OpRemove {
				removes++
			}
		case <-deadline:
			t.Fatalf("saw %d remove events, want 2", removes)
		}
	}
}

func TestRemove(t *testing.T) {
	m := NewMemory(100)
	m.Insert(msg("a", 10))
	m.Insert(msg("b", 20))
	m.Remove("a")
	if _, ok := m.Lookup("a"); ok {
		t.Fatalf("a must be gone")
	}
	if e, ok := m.Lookup("b"); !ok || e.ID != "b" {
		t.Fatalf("b must survive: %+v ok=%v", e, ok)
	}
	m.Remove("missing")
}

func TestClosedStoreSnapshotsEmpty(t *testing.T) {
	m := NewMemory(100)
	m.Insert(msg("a", 10))
	m.Close()
	if got := m.Snapshot(model.Predicate{}); len(got) != 0 {
		t.Fatalf("closed snapshot: %d entities", len(got))
	}
}

func TestUnsubscribeOnContextCancel(t *testing.T) {
	m := NewMemory(100)
	ctx, cancel := context.WithCancel(context.Background())
	ch := m.Subscribe(ctx, model.Predicate{})
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.subMu.Lock()
		n := len(m.subs)
		m.subMu.Unlock()
		if n == 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	m.Insert(msg("a", 10))
	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("event after unsubscribe: %+v", ev)
		}
	case <-time.After(20 * time.Millisecond):
	}
}
