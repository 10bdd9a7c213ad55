package console

import (
	"context"
	"testing"
	"time"

	"github.com/dotswift/Pulse/internal/export"
	"github.com/dotswift/Pulse/internal/model"
	"github.com/dotswift/Pulse/internal/search"
	"github.com/dotswift/Pulse/internal/store"
)

func newRunning(t *testing.T, mode model.Mode) (*Coordinator, *store.Memory, context.CancelFunc) {
	t.Helper()
	mem := store.NewMemory(1000)
	c := NewCoordinator(mem, mode, Capabilities{HTMLExport: true}, false)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	return c, mem, cancel
}

// waitState drains events until the latest state satisfies the predicate.
func waitState(t *testing.T, c *Coordinator, desc string, ok func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.Events():
			if ok(ev.State) {
				return ev.State
			}
		case <-deadline:
			t.Fatalf("timed out waiting for: %s", desc)
		}
	}
}

func waitEventKind(t *testing.T, c *Coordinator, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.Events():
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %d", kind)
		}
	}
}

func liveMsg(id, text string, offset time.Duration) model.Entity {
	return model.Entity{
		ID:        id,
		Kind:      model.KindMessage,
		Level:     "info",
		Message:   text,
		CreatedAt: time.Now().Add(time.Minute + offset),
	}
}

func liveTask(id string, status int, offset time.Duration) model.Entity {
	return model.Entity{
		ID:         id,
		Kind:       model.KindTask,
		Method:     "GET",
		URL:        "/api/" + id,
		StatusCode: status,
		CreatedAt:  time.Now().Add(time.Minute + offset),
	}
}

func TestSessionBoundHidesOlderEntities(t *testing.T) {
	c, mem, cancel := newRunning(t, model.ModeAll)
	defer cancel()

	mem.Insert(model.Entity{
		ID: "old", Kind: model.KindMessage, Level: "info",
		Message: "from a previous run", CreatedAt: time.Now().Add(-time.Hour),
	})
	mem.Insert(liveMsg("new", "current session", 0))

	st := waitState(t, c, "one visible entity", func(s State) bool { return s.Total == 1 })
	if got := st.VisibleEntities(); len(got) != 1 || got[0].ID != "new" {
		t.Fatalf("visible: %+v", got)
	}
	if st.ShowingPrevious {
		t.Fatalf("previous sessions must be hidden by default")
	}
}

func TestShowPreviousSessionsIsOneWay(t *testing.T) {
	c, mem, cancel := newRunning(t, model.ModeAll)
	defer cancel()

	mem.Insert(model.Entity{
		ID: "old", Kind: model.KindMessage, Level: "info",
		Message: "earlier", CreatedAt: time.Now().Add(-time.Hour),
	})
	mem.Insert(liveMsg("new", "now", 0))
	waitState(t, c, "initial state", func(s State) bool { return s.Total == 1 })

	c.ToggleShowPreviousSessions()
	st := waitState(t, c, "previous sessions shown", func(s State) bool { return s.Total == 2 })
	if !st.ShowingPrevious {
		t.Fatalf("flag must flip")
	}

	// Re-submitting criteria with the bound set must not re-arm it.
	crit := st.Criteria
	crit.DateFilter.SessionOnly = true
	c.SetCriteria(crit)
	st = waitState(t, c, "criteria applied", func(s State) bool { return s.ShowingPrevious })
	if st.Total != 2 {
		t.Fatalf("bound re-armed: total %d", st.Total)
	}

	// Toggling again is a no-op.
	c.ToggleShowPreviousSessions()
	c.SetCriteria(st.Criteria)
	st = waitState(t, c, "still showing", func(s State) bool { return s.Total == 2 })
	if !st.ShowingPrevious {
		t.Fatalf("one-way flag reverted")
	}
}

func TestSearchLifecycle(t *testing.T) {
	c, mem, cancel := newRunning(t, model.ModeAll)
	defer cancel()

	mem.Insert(liveMsg("a", "Connection timeout while fetching", 0))
	mem.Insert(liveMsg("b", "User signed in", time.Second))
	mem.Insert(liveMsg("c", "DNS timeout", 2*time.Second))
	waitState(t, c, "three entities", func(s State) bool { return s.Total == 3 })

	c.SubmitSearch("timeout")
	st := waitState(t, c, "settled search", func(s State) bool {
		return s.Searching && s.SearchState == search.Settled
	})
	got := st.VisibleEntities()
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "a" {
		t.Fatalf("ranked matches: %+v", got)
	}

	c.ClearSearch()
	st = waitState(t, c, "search cleared", func(s State) bool { return !s.Searching })
	if st.SearchState != search.Idle || len(st.Matches) != 0 {
		t.Fatalf("post-clear state: %+v", st.SearchState)
	}
	if len(st.VisibleEntities()) != 3 {
		t.Fatalf("grouped view must show all entities")
	}
}

func TestEmptyQueryClearsSearch(t *testing.T) {
	c, mem, cancel := newRunning(t, model.ModeAll)
	defer cancel()

	mem.Insert(liveMsg("a", "hello", 0))
	c.SubmitSearch("hello")
	waitState(t, c, "searching", func(s State) bool { return s.Searching })
	c.SubmitSearch("")
	st := waitState(t, c, "cleared", func(s State) bool { return !s.Searching })
	if st.SearchState != search.Idle {
		t.Fatalf("state: %v", st.SearchState)
	}
}

func TestInsertDuringSearchExtendsMatches(t *testing.T) {
	c, mem, cancel := newRunning(t, model.ModeAll)
	defer cancel()

	mem.Insert(liveMsg("a", "retry timeout", 0))
	waitState(t, c, "one entity", func(s State) bool { return s.Total == 1 })

	c.SubmitSearch("timeout")
	waitState(t, c, "settled", func(s State) bool { return s.SearchState == search.Settled })

	mem.Insert(liveMsg("b", "another timeout", time.Second))
	st := waitState(t, c, "match appended", func(s State) bool {
		return s.SearchState == search.Settled && len(s.Matches) == 2
	})
	if got := st.VisibleEntities(); got[0].ID != "b" {
		t.Fatalf("newest must rank first: %+v", got)
	}
}

func TestNetworkModeGroupsByStatus(t *testing.T) {
	c, mem, cancel := newRunning(t, model.ModeNetwork)
	defer cancel()

	mem.Insert(liveTask("t1", 200, 0))
	mem.Insert(liveTask("t2", 404, time.Second))
	mem.Insert(liveTask("t3", 200, 2*time.Second))
	mem.Insert(liveMsg("m1", "not a task", 3*time.Second))

	st := waitState(t, c, "grouped tasks", func(s State) bool { return s.Total == 3 })
	if len(st.Groups) != 2 {
		t.Fatalf("groups: %d", len(st.Groups))
	}
	if st.Groups[0].Key != "200" || st.Groups[1].Key != "404" {
		t.Fatalf("group order: %s, %s", st.Groups[0].Key, st.Groups[1].Key)
	}
}

func TestShareLifecycle(t *testing.T) {
	c, mem, cancel := newRunning(t, model.ModeAll)
	defer cancel()

	mem.Insert(liveMsg("a", "payload line", 0))
	waitState(t, c, "one entity", func(s State) bool { return s.Total == 1 })

	c.RequestShare(export.FormatText)
	waitState(t, c, "share in progress", func(s State) bool { return s.ShareInProgress })

	ev := waitEventKind(t, c, EventExportFinished)
	if ev.Export == nil || ev.Export.Err != nil || len(ev.Export.Data) == 0 {
		t.Fatalf("export result: %+v", ev.Export)
	}
	if ev.State.ShareInProgress {
		t.Fatalf("flag must clear with the result")
	}
}

func TestCancelShareClearsFlag(t *testing.T) {
	c, mem, cancel := newRunning(t, model.ModeAll)
	defer cancel()

	mem.Insert(liveMsg("a", "payload", 0))
	waitState(t, c, "one entity", func(s State) bool { return s.Total == 1 })

	// The cancel may land before or after the job finishes; either way the
	// flag must clear and the loop must keep serving intents.
	c.RequestShare(export.FormatText)
	c.CancelShare()
	waitState(t, c, "share cleared", func(s State) bool { return !s.ShareInProgress })

	c.RequestShare(export.FormatText)
	ev := waitEventKind(t, c, EventExportFinished)
	if ev.Export == nil || ev.Export.Err != nil {
		t.Fatalf("follow-up export: %+v", ev.Export)
	}
}

func TestSetCriteriaRestartsActiveSearch(t *testing.T) {
	c, mem, cancel := newRunning(t, model.ModeAll)
	defer cancel()

	mem.Insert(liveMsg("a", "warn: disk pressure", 0))
	mem.Insert(model.Entity{
		ID: "old", Kind: model.KindMessage, Level: "warn",
		Message: "warn: old disk pressure", CreatedAt: time.Now().Add(-time.Hour),
	})
	waitState(t, c, "session entity", func(s State) bool { return s.Total == 1 })

	c.SubmitSearch("disk")
	st := waitState(t, c, "settled", func(s State) bool { return s.SearchState == search.Settled })
	if len(st.Matches) != 1 {
		t.Fatalf("matches: %d", len(st.Matches))
	}

	crit := st.Criteria
	crit.DateFilter.SessionOnly = false
	c.SetCriteria(crit)
	st = waitState(t, c, "rescanned over both sessions", func(s State) bool {
		return s.SearchState == search.Settled && len(s.Matches) == 2
	})
	if !st.Searching {
		t.Fatalf("search must stay active across criteria changes")
	}
}

func TestCapabilitiesExposedOnState(t *testing.T) {
	mem := store.NewMemory(10)
	caps := Capabilities{HTMLExport: true, Clipboard: true}
	c := NewCoordinator(mem, model.ModeAll, caps, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	st := waitState(t, c, "initial event", func(s State) bool { return true })
	if st.Capabilities != caps {
		t.Fatalf("capabilities: %+v", st.Capabilities)
	}
}
