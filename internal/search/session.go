package search

import (
	"sort"
	"sync"

	"github.com/dotswift/Pulse/internal/criteria"
	"github.com/dotswift/Pulse/internal/model"
	"github.com/dotswift/Pulse/internal/util/logx"
)

type State int

const (
	Idle State = iota
	Scanning
	Settled
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Settled:
		return "settled"
	default:
		return "idle"
	}
}

// Match is one search hit. The ordered match list puts structured hits
// first, then descending creation time, tie-broken by entity id.
type Match struct {
	Entity model.Entity
	Info   criteria.MatchInfo
}

// EmitFunc receives committed match lists as the scan progresses. gen tags
// the scan generation so stale deliveries can be discarded by the consumer;
// settled is true once the scan queue drained.
type EmitFunc func(gen uint64, matches []Match, settled bool)

const defaultChunk = 256

// Session is the incremental search engine. A scan runs on its own goroutine
// in bounded chunks; between chunks it observes cancellation, criteria
// changes (generation bumps) and the visibility gate. All mutation happens
// under one mutex, so results committed under a stale generation are
// impossible.
type Session struct {
	mu      sync.Mutex
	gen     uint64
	state   State
	matcher *criteria.Matcher
	queue   []model.Entity
	matches []Match
	visible bool
	resume  chan struct{}
	running bool
	chunk   int
	emit    EmitFunc
}

func NewSession(emit EmitFunc) *Session {
	return &Session{emit: emit, visible: true, chunk: defaultChunk, resume: make(chan struct{})}
}

// SetChunkSize overrides the scan batch size. Results are invariant under
// batch size; only latency changes.
func (s *Session) SetChunkSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.chunk = n
	}
}

// Start begins a fresh progressive scan over the snapshot, invalidating any
// scan in flight. The previous generation's results are discarded even if
// its goroutine is still unwinding.
func (s *Session) Start(matcher *criteria.Matcher, snapshot []model.Entity) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.matcher = matcher
	s.queue = append([]model.Entity(nil), snapshot...)
	s.matches = nil
	s.state = Scanning
	s.wakeLocked()
	s.ensureScannerLocked()
	s.mu.Unlock()
	logx.Debugf("search: scan gen=%d start queue=%d", gen, len(snapshot))
}

// Append adds newly arrived entities to the scan queue. A settled session
// resumes scanning; criteria are unchanged so committed matches are kept.
func (s *Session) Append(entities []model.Entity) {
	if len(entities) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle || s.matcher == nil {
		return
	}
	s.queue = append(s.queue, entities...)
	s.state = Scanning
	s.ensureScannerLocked()
}

// Cancel stops scanning and discards partial state. Idempotent.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state = Idle
	s.matcher = nil
	s.queue = nil
	s.matches = nil
	s.wakeLocked()
}

// SetVisible gates the scanner: invisible suspends between chunks, visible
// resumes from the last committed point.
func (s *Session) SetVisible(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visible == v {
		return
	}
	s.visible = v
	if v {
		s.wakeLocked()
	}
}

// Generation returns the current scan generation. Emitted results carrying
// an older generation are stale and must be discarded.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Matches returns the committed, ordered match list.
func (s *Session) Matches() []Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Match(nil), s.matches...)
}

func (s *Session) wakeLocked() {
	close(s.resume)
	s.resume = make(chan struct{})
}

func (s *Session) ensureScannerLocked() {
	if s.running {
		return
	}
	s.running = true
	go s.scan()
}

// scan is the single worker loop. It re-reads the current generation each
// iteration, so a Start issued while a chunk is in flight (or while the
// scanner is suspended) simply retires the old work and the worker picks up
// the new queue on its next pass.
func (s *Session) scan() {
	for {
		s.mu.Lock()
		if s.state == Idle {
			s.running = false
			s.mu.Unlock()
			return
		}
		if !s.visible {
			resume := s.resume
			s.mu.Unlock()
			<-resume
			continue
		}
		gen := s.gen
		if len(s.queue) == 0 {
			s.state = Settled
			s.running = false
			matches := append([]Match(nil), s.matches...)
			emit := s.emit
			s.mu.Unlock()
			if emit != nil {
				emit(gen, matches, true)
			}
			return
		}
		n := s.chunk
		if n > len(s.queue) {
			n = len(s.queue)
		}
		batch := s.queue[:n]
		s.queue = s.queue[n:]
		matcher := s.matcher
		s.mu.Unlock()

		// Chunk evaluation happens outside the lock; the matcher is
		// immutable for the lifetime of a generation.
		var hits []Match
		for _, e := range batch {
			if info, ok := matcher.Match(e); ok {
				hits = append(hits, Match{Entity: e, Info: info})
			}
		}

		s.mu.Lock()
		if gen != s.gen {
			// The criteria changed under this chunk; drop it.
			s.mu.Unlock()
			continue
		}
		if len(hits) > 0 {
			s.matches = append(s.matches, hits...)
			sortMatches(s.matches)
		}
		settled := len(s.queue) == 0
		if settled {
			s.state = Settled
			s.running = false
		}
		matches := append([]Match(nil), s.matches...)
		emit := s.emit
		s.mu.Unlock()

		if emit != nil && (len(hits) > 0 || settled) {
			emit(gen, matches, settled)
		}
		if settled {
			return
		}
	}
}

func sortMatches(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.Info.Structured != b.Info.Structured {
			return a.Info.Structured
		}
		if !a.Entity.CreatedAt.Equal(b.Entity.CreatedAt) {
			return a.Entity.CreatedAt.After(b.Entity.CreatedAt)
		}
		return a.Entity.ID < b.Entity.ID
	})
}
