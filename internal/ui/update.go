package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dotswift/Pulse/internal/export"
	"github.com/dotswift/Pulse/internal/model"
	"github.com/dotswift/Pulse/internal/util/logx"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		m.logsVP.Width = msg.Width - 8
		m.logsVP.Height = msg.Height - 6
		m.clampScroll()
		m.reportVisibility()
		return m, nil

	case consoleMsg:
		m.handleConsoleEvent(msg.ev)
		return m, waitEvent(m.coord)

	case tickMsg:
		return m, tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })

	case toastMsg:
		m.lastMsg = msg.text
		return m, nil

	case explainDoneMsg:
		m.netBusy = false
		m.modalActive = true
		m.modalKind = modalExplain
		m.modalTitle = "Explain"
		if msg.err != "" {
			m.modalBody = "explain failed: " + msg.err
		} else {
			m.modalBody = msg.text
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.spin, cmd = m.spin.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modalActive {
		return m.handleModalKey(msg)
	}
	if m.inlineMode == inlineSearch {
		return m.handleSearchKey(msg)
	}

	km := m.keymap
	switch {
	case keyMatches(msg, km.Quit) || msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case msg.Type == tea.KeyUp:
		m.moveCursor(-1)
	case msg.Type == tea.KeyDown:
		m.moveCursor(1)
	case msg.Type == tea.KeyPgUp:
		m.moveCursor(-m.listHeight())
	case msg.Type == tea.KeyPgDown:
		m.moveCursor(m.listHeight())
	case keyMatches(msg, km.Top):
		m.cursor = 0
		m.clampScroll()
		m.reportVisibility()
	case keyMatches(msg, km.Bottom):
		m.cursor = len(m.rows) - 1
		m.clampScroll()
		m.reportVisibility()

	case keyMatches(msg, km.Pause):
		m.paused = !m.paused
		m.coord.SetViewVisible(!m.paused)
		m.reportVisibility()
		if m.paused {
			m.lastMsg = "paused (search work suspended)"
		} else {
			m.lastMsg = "resumed"
		}

	case keyMatches(msg, km.Search):
		m.inlineMode = inlineSearch
		m.search.SetValue(m.lastQuery)
		m.search.Focus()
		return m, nil

	case keyMatches(msg, km.ClearSearch) || msg.Type == tea.KeyEsc:
		if m.state.Searching {
			m.lastQuery = ""
			m.coord.ClearSearch()
		}

	case keyMatches(msg, km.Previous):
		m.coord.ToggleShowPreviousSessions()

	case keyMatches(msg, km.ModeToggle):
		crit := m.state.Criteria
		if crit.Mode == model.ModeNetwork {
			crit.Mode = model.ModeAll
		} else {
			crit.Mode = model.ModeNetwork
		}
		m.coord.SetCriteria(crit)

	case keyMatches(msg, km.ShareText):
		return m.requestShare(export.FormatText)
	case keyMatches(msg, km.ShareHTML):
		if !m.state.Capabilities.HTMLExport {
			m.lastMsg = "html export not available"
			return m, nil
		}
		return m.requestShare(export.FormatHTML)
	case keyMatches(msg, km.CancelShare):
		if m.state.ShareInProgress {
			m.coord.CancelShare()
			m.lastMsg = "export cancelled"
		}

	case keyMatches(msg, km.Inspector):
		if e, ok := m.selectedEntity(); ok {
			m.modalActive = true
			m.modalKind = modalInspector
			m.modalTitle = "Entry"
			m.modalBody = inspectBody(e)
		}

	case keyMatches(msg, km.CopyLine):
		if m.state.Capabilities.Clipboard {
			if e, ok := m.selectedEntity(); ok {
				copyToClipboard(m.formatEntity(e, nil))
				m.lastMsg = "copied to clipboard"
			}
		}

	case keyMatches(msg, km.Explain):
		if m.aicli == nil || !m.state.Capabilities.Explain {
			m.lastMsg = "explain unavailable (offline or no API key)"
			return m, nil
		}
		if e, ok := m.selectedEntity(); ok {
			m.netBusy = true
			cli := m.aicli
			ctx := m.ctx
			return m, func() tea.Msg {
				text, err := cli.ExplainEntry(ctx, e)
				if err != nil {
					return explainDoneMsg{err: err.Error()}
				}
				return explainDoneMsg{text: text}
			}
		}

	case keyMatches(msg, km.AppLogs):
		m.modalActive = true
		m.modalKind = modalLogs
		m.modalTitle = "Application logs"
		m.modalBody = logx.Dump()
		m.logsVP.SetContent(m.modalBody)

	case keyMatches(msg, km.Help):
		m.modalActive = true
		m.modalKind = modalHelp
		m.modalTitle = "Help"
		m.modalBody = helpBody()
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		q := strings.TrimSpace(m.search.Value())
		m.lastQuery = q
		m.inlineMode = inlineNone
		m.search.Blur()
		m.coord.SubmitSearch(q)
		return m, nil
	case tea.KeyEsc:
		m.inlineMode = inlineNone
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter || (msg.Type == tea.KeyRunes && msg.String() == "q") {
		m.modalActive = false
		return m, nil
	}
	if m.modalKind == modalLogs {
		var cmd tea.Cmd
		m.logsVP, cmd = m.logsVP.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) requestShare(f export.Format) (tea.Model, tea.Cmd) {
	if m.state.ShareInProgress {
		// The coordinator queues it anyway; the flag only mutes the hotkey
		// from re-firing while a download is visibly pending.
		m.lastMsg = "export already in progress (queued)"
	}
	m.coord.RequestShare(f)
	return m, nil
}

// finishExport writes the delivered payload next to the process (or to the
// configured out path) and reports where it landed.
func (m *Model) finishExport(res export.Result) {
	path := m.cfg.ExportOut
	if path == "" {
		path = res.Filename
	}
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		m.modalActive = true
		m.modalKind = modalError
		m.modalTitle = "Export failed"
		m.modalBody = fmt.Sprintf("write %s: %v", path, err)
		return
	}
	m.lastMsg = fmt.Sprintf("exported %d bytes to %s", len(res.Data), path)
}
