package visibility

import "testing"

func TestAppearDisappear(t *testing.T) {
	tr := NewTracker()
	tr.Appeared("a")
	tr.Appeared("b")
	if !tr.IsVisible("a") || !tr.IsVisible("b") || tr.Count() != 2 {
		t.Fatalf("visible set: count %d", tr.Count())
	}
	tr.Disappeared("a")
	if tr.IsVisible("a") || tr.Count() != 1 {
		t.Fatalf("a still visible after disappear")
	}
}

func TestLastEventWins(t *testing.T) {
	tr := NewTracker()
	// Fast scroll can report a disappear for a row that then re-enters the
	// viewport before the previous appear is acknowledged.
	tr.Appeared("x")
	tr.Disappeared("x")
	tr.Appeared("x")
	if !tr.IsVisible("x") {
		t.Fatalf("x must be visible")
	}
	tr.Disappeared("x")
	if tr.IsVisible("x") {
		t.Fatalf("x must be gone")
	}
}

func TestUnbalancedEventsAreSafe(t *testing.T) {
	tr := NewTracker()
	tr.Disappeared("never-appeared")
	tr.Appeared("a")
	tr.Appeared("a")
	if tr.Count() != 1 {
		t.Fatalf("duplicate appear must not double-count: %d", tr.Count())
	}
	tr.Disappeared("a")
	if tr.Count() != 0 {
		t.Fatalf("count: %d", tr.Count())
	}
}

func TestReset(t *testing.T) {
	tr := NewTracker()
	tr.Appeared("a")
	tr.Appeared("b")
	tr.Reset()
	if tr.Count() != 0 || tr.IsVisible("a") {
		t.Fatalf("reset must clear the set")
	}
}
