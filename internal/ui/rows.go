package ui

import (
	"github.com/dotswift/Pulse/internal/console"
	"github.com/dotswift/Pulse/internal/model"
)

// rebuildRows flattens the coordinator state into visual rows. During a
// search the matches render flat in rank order; otherwise groups render with
// a header row each (single implicit group renders headerless).
func (m *Model) rebuildRows() {
	prevID := m.selectedID()
	m.rows = m.rows[:0]
	if m.state.Searching {
		for _, match := range m.state.Matches {
			m.rows = append(m.rows, row{id: match.Entity.ID})
		}
	} else {
		groups := m.state.Groups
		single := len(groups) == 1 && groups[0].Key == ""
		for _, g := range groups {
			if !single {
				m.rows = append(m.rows, row{header: true, key: g.Key})
			}
			for _, e := range g.Entities {
				m.rows = append(m.rows, row{id: e.ID})
			}
		}
	}
	// Keep the cursor on the same entity across rebuilds when possible.
	if prevID != "" {
		for i, r := range m.rows {
			if r.id == prevID {
				m.cursor = i
				break
			}
		}
	}
	m.clampScroll()
	m.reportVisibility()
}

func (m *Model) selectedID() string {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return m.rows[m.cursor].id
	}
	return ""
}

func (m *Model) selectedEntity() (model.Entity, bool) {
	id := m.selectedID()
	if id == "" {
		return model.Entity{}, false
	}
	return m.coord.Lookup(id)
}

func (m *Model) listHeight() int {
	// One line for the status bar, one for the search/hint line.
	h := m.termHeight - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) clampScroll() {
	if len(m.rows) == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampScroll()
	m.reportVisibility()
}

// reportVisibility diffs the on-screen row window against what was last
// reported and forwards appear/disappear intents. Rapid scrolling can replay
// these in any order; the tracker keeps the last event per id.
func (m *Model) reportVisibility() {
	h := m.listHeight()
	now := map[string]bool{}
	if !m.paused {
		end := m.offset + h
		if end > len(m.rows) {
			end = len(m.rows)
		}
		for _, r := range m.rows[m.offset:end] {
			if r.id != "" {
				now[r.id] = true
			}
		}
	}
	for id := range now {
		if !m.reported[id] {
			m.coord.RowAppeared(id)
		}
	}
	for id := range m.reported {
		if !now[id] {
			m.coord.RowDisappeared(id)
		}
	}
	m.reported = now
}

func (m *Model) handleConsoleEvent(ev console.Event) {
	m.state = ev.State
	switch ev.Kind {
	case console.EventExportFinished:
		if ev.Export != nil {
			m.finishExport(*ev.Export)
		}
	case console.EventExportFailed:
		msg := "export failed"
		if ev.Export != nil && ev.Export.Err != nil {
			msg = "export failed: " + ev.Export.Err.Error()
		}
		m.modalActive = true
		m.modalKind = modalError
		m.modalTitle = "Export failed"
		m.modalBody = msg
	}
	m.rebuildRows()
}
