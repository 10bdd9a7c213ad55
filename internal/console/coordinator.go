package console

import (
	"context"
	"time"

	"github.com/dotswift/Pulse/internal/criteria"
	"github.com/dotswift/Pulse/internal/export"
	"github.com/dotswift/Pulse/internal/grouping"
	"github.com/dotswift/Pulse/internal/model"
	"github.com/dotswift/Pulse/internal/search"
	"github.com/dotswift/Pulse/internal/store"
	"github.com/dotswift/Pulse/internal/util/logx"
	"github.com/dotswift/Pulse/internal/visibility"
)

// Capabilities are resolved once at startup instead of being re-checked
// throughout the view logic.
type Capabilities struct {
	HTMLExport bool
	Clipboard  bool
	Explain    bool
}

type EventKind int

const (
	EventStateChanged EventKind = iota
	EventExportFinished
	EventExportFailed
)

// Event is one typed state-change notification for the presentation layer.
type Event struct {
	Kind   EventKind
	State  State
	Export *export.Result
}

// State is the immutable snapshot the presentation layer renders.
type State struct {
	Criteria        criteria.Criteria
	SessionStart    time.Time
	Searching       bool
	SearchState     search.State
	Matches         []search.Match
	Groups          []grouping.Group
	Total           int
	ShareInProgress bool
	ShowingPrevious bool
	Capabilities    Capabilities
}

// VisibleEntities applies the visible-list rule: an active search with
// results shows the matches in rank order; otherwise the grouped snapshot.
func (s State) VisibleEntities() []model.Entity {
	if s.Searching {
		out := make([]model.Entity, 0, len(s.Matches))
		for _, m := range s.Matches {
			out = append(out, m.Entity)
		}
		return out
	}
	var out []model.Entity
	for _, g := range s.Groups {
		out = append(out, g.Entities...)
	}
	return out
}

// Coordinator owns the console state. A single run-loop goroutine is the
// coordination thread: every intent and every async completion (store events,
// scan batches, export results) is applied there, so no state is ever touched
// from two goroutines at once.
type Coordinator struct {
	source  store.Source
	session *search.Session
	exports *export.Coordinator
	vis     *visibility.Tracker
	caps    Capabilities

	intents chan func()
	events  chan Event
	done    chan struct{}

	// Owned by the run loop.
	crit         criteria.Criteria
	sessionStart time.Time
	searching    bool
	matches      []search.Match
	searchState  search.State
	shareJob     *export.Job
	closed       bool
}

func NewCoordinator(source store.Source, mode model.Mode, caps Capabilities, compress bool) *Coordinator {
	c := &Coordinator{
		source:       source,
		exports:      export.NewCoordinator(compress),
		vis:          visibility.NewTracker(),
		caps:         caps,
		intents:      make(chan func(), 256),
		events:       make(chan Event, 64),
		done:         make(chan struct{}),
		crit:         criteria.Default(mode),
		sessionStart: time.Now(),
	}
	c.session = search.NewSession(c.onScanBatch)
	return c
}

// Events is the only boundary the core exposes to the presentation layer.
func (c *Coordinator) Events() <-chan Event { return c.events }

// Start runs the coordination loop until ctx is done. In-flight export jobs
// keep running after teardown; their results are discarded.
func (c *Coordinator) Start(ctx context.Context) {
	sub := c.source.Subscribe(ctx, model.Predicate{})
	go func() {
		defer close(c.events)
		c.publish(EventStateChanged, nil)
		for {
			select {
			case <-ctx.Done():
				c.closed = true
				close(c.done)
				c.session.Cancel()
				c.shareJob = nil
				logx.Infof("console: coordinator stopped")
				return
			case fn := <-c.intents:
				fn()
			case ev, ok := <-sub:
				if !ok {
					sub = nil
					continue
				}
				c.handleStoreEvent(ev)
			}
		}
	}()
}

// post hands a closure to the run loop. Posts after teardown are dropped.
func (c *Coordinator) post(fn func()) {
	select {
	case c.intents <- fn:
	case <-c.done:
	}
}

// SetCriteria replaces the active criteria. An in-flight scan is invalidated
// and restarted from the full current snapshot.
func (c *Coordinator) SetCriteria(crit criteria.Criteria) {
	c.post(func() {
		// The session-only bound never re-arms once cleared.
		if !c.crit.DateFilter.SessionOnly {
			crit.DateFilter.SessionOnly = false
		}
		c.crit = crit
		c.restartSearchIfActive()
		c.publish(EventStateChanged, nil)
	})
}

// SubmitSearch parses the query into tokens and starts (or clears) the
// incremental search session.
func (c *Coordinator) SubmitSearch(query string) {
	c.post(func() {
		tokens := criteria.ParseQuery(query)
		c.crit.Tokens = tokens
		if len(tokens) == 0 {
			c.clearSearchLocked()
			c.publish(EventStateChanged, nil)
			return
		}
		c.searching = true
		c.matches = nil
		c.session.Start(criteria.Compile(c.crit), c.snapshot())
		c.searchState = search.Scanning
		c.publish(EventStateChanged, nil)
	})
}

// ClearSearch cancels the session and returns to the grouped view.
func (c *Coordinator) ClearSearch() {
	c.post(func() {
		c.crit.Tokens = nil
		c.clearSearchLocked()
		c.publish(EventStateChanged, nil)
	})
}

// ToggleShowPreviousSessions clears the session-start date bound. One-way: a
// fresh session is the only way to re-impose it.
func (c *Coordinator) ToggleShowPreviousSessions() {
	c.post(func() {
		if !c.crit.DateFilter.SessionOnly {
			return
		}
		c.crit.DateFilter.SessionOnly = false
		logx.Infof("console: showing previous sessions")
		c.restartSearchIfActive()
		c.publish(EventStateChanged, nil)
	})
}

// RequestShare snapshots the visible list and hands it to the export
// coordinator. A request made while one is running queues behind it
// (last-write-wins at the export layer).
func (c *Coordinator) RequestShare(format export.Format) {
	c.post(func() {
		entities := c.currentState().VisibleEntities()
		job := c.exports.Request(format, entities)
		c.shareJob = job
		logx.Infof("console: share requested format=%s entities=%d job=%s", format, len(entities), job.ID)
		go func() {
			res := <-job.Done()
			c.post(func() { c.onExportDone(job, res) })
		}()
		c.publish(EventStateChanged, nil)
	})
}

// CancelShare cancels the tracked export job, if any.
func (c *Coordinator) CancelShare() {
	c.post(func() {
		if c.shareJob != nil {
			c.exports.Cancel(c.shareJob)
		}
	})
}

func (c *Coordinator) RowAppeared(id string)    { c.vis.Appeared(id) }
func (c *Coordinator) RowDisappeared(id string) { c.vis.Disappeared(id) }

// SetViewVisible gates expensive background work: scanning suspends while
// the list is off-screen and resumes from the last committed point.
func (c *Coordinator) SetViewVisible(v bool) {
	c.session.SetVisible(v)
	c.post(func() { c.publish(EventStateChanged, nil) })
}

func (c *Coordinator) Visibility() *visibility.Tracker { return c.vis }

// Lookup resolves a single entity for row rendering.
func (c *Coordinator) Lookup(id string) (model.Entity, bool) { return c.source.Lookup(id) }

// --- run-loop internals ---

func (c *Coordinator) snapshot() []model.Entity {
	return c.source.Snapshot(c.crit.Predicate(c.sessionStart))
}

func (c *Coordinator) currentState() State {
	var keyFn grouping.KeyFunc
	if c.crit.Mode == model.ModeNetwork {
		keyFn = grouping.ByStatusCode
	}
	snap := c.snapshot()
	return State{
		Criteria:        c.crit,
		SessionStart:    c.sessionStart,
		Searching:       c.searching,
		SearchState:     c.searchState,
		Matches:         c.matches,
		Groups:          grouping.Partition(snap, keyFn),
		Total:           len(snap),
		ShareInProgress: c.shareJob != nil,
		ShowingPrevious: !c.crit.DateFilter.SessionOnly,
		Capabilities:    c.caps,
	}
}

func (c *Coordinator) publish(kind EventKind, res *export.Result) {
	if c.closed {
		return
	}
	ev := Event{Kind: kind, State: c.currentState(), Export: res}
	for {
		select {
		case c.events <- ev:
			return
		default:
			// Full buffer: displace the oldest event; the presentation
			// layer only needs the latest state.
			select {
			case <-c.events:
			default:
			}
		}
	}
}

func (c *Coordinator) handleStoreEvent(ev store.Event) {
	pred := c.crit.Predicate(c.sessionStart)
	switch ev.Op {
	case store.OpInsert:
		if c.searching && pred.Allow(ev.Entity) {
			c.session.Append([]model.Entity{ev.Entity})
		}
	case store.OpUpdate:
		// An updated entity may gain or lose token matches anywhere, so a
		// settled scan cannot be patched incrementally.
		if c.searching && pred.Allow(ev.Entity) {
			c.session.Start(criteria.Compile(c.crit), c.snapshot())
			c.searchState = search.Scanning
		}
	case store.OpRemove:
		if c.searching {
			c.session.Start(criteria.Compile(c.crit), c.snapshot())
			c.searchState = search.Scanning
		}
		c.vis.Disappeared(ev.Entity.ID)
	}
	c.publish(EventStateChanged, nil)
}

func (c *Coordinator) onScanBatch(gen uint64, matches []search.Match, settled bool) {
	c.post(func() {
		if gen != c.session.Generation() || !c.searching {
			// Stale generation; results computed under old criteria.
			return
		}
		c.matches = matches
		if settled {
			c.searchState = search.Settled
		} else {
			c.searchState = search.Scanning
		}
		c.publish(EventStateChanged, nil)
	})
}

func (c *Coordinator) onExportDone(job *export.Job, res export.Result) {
	if c.shareJob == job {
		c.shareJob = nil
	}
	switch {
	case res.Cancelled:
		// Not an error; the pending flag is already cleared.
		c.publish(EventStateChanged, nil)
	case res.Err != nil:
		c.publish(EventExportFailed, &res)
	default:
		c.publish(EventExportFinished, &res)
	}
}

func (c *Coordinator) clearSearchLocked() {
	c.session.Cancel()
	c.searching = false
	c.matches = nil
	c.searchState = search.Idle
}

func (c *Coordinator) restartSearchIfActive() {
	if !c.searching {
		return
	}
	c.session.Start(criteria.Compile(c.crit), c.snapshot())
	c.searchState = search.Scanning
}
