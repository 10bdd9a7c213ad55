package ui

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotswift/Pulse/internal/model"
)

func (m *Model) View() string {
	v := m.renderList() + "\n" + m.renderInputLine() + "\n" + m.renderStatus()
	if m.modalActive {
		dimmed := lipgloss.NewStyle().Faint(true).Render(v)
		v = overlay(dimmed, m.renderModal())
	}
	return v
}

func (m *Model) renderList() string {
	h := m.listHeight()
	lines := make([]string, 0, h)
	end := m.offset + h
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		var line string
		if r.header {
			line = m.styles.GroupHeader.Render(fmt.Sprintf("── %s ──", headerLabel(r.key)))
		} else if e, ok := m.coord.Lookup(r.id); ok {
			line = m.formatEntity(e, m.matchInfoFor(r.id))
		}
		if i == m.cursor {
			line = m.styles.Selected.Render("▌") + line
		} else {
			line = " " + line
		}
		lines = append(lines, truncLine(line, m.termWidth))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func headerLabel(key string) string {
	if key == "pending" {
		return "pending"
	}
	return key
}

func (m *Model) renderInputLine() string {
	if m.inlineMode == inlineSearch {
		return m.search.View()
	}
	if m.lastQuery != "" {
		return m.styles.Status.Render("/" + m.lastQuery)
	}
	return m.styles.Help.Render("[/]=search [space]=pause [e]=share [m]=mode [p]=previous [?]=help")
}

func (m *Model) renderStatus() string {
	parts := []string{}
	mode := "all"
	if m.state.Criteria.Mode == model.ModeNetwork {
		mode = "network"
	}
	parts = append(parts, fmt.Sprintf("mode=%s", mode))
	parts = append(parts, fmt.Sprintf("%d entities", m.state.Total))
	if m.state.Searching {
		label := searchStateLabel(m.state.SearchState)
		if label == "scanning" {
			label = m.spin.View() + label
		}
		parts = append(parts, fmt.Sprintf("%d matches (%s)", len(m.state.Matches), label))
	}
	if m.state.ShowingPrevious {
		parts = append(parts, "incl. previous sessions")
	}
	if m.paused {
		parts = append(parts, m.styles.StatusWarn.Render("PAUSED"))
	}
	if m.state.ShareInProgress {
		parts = append(parts, m.spin.View()+"exporting")
	}
	if m.netBusy {
		parts = append(parts, m.spin.View()+"explaining")
	}
	if m.lastMsg != "" {
		parts = append(parts, m.styles.Status.Render(m.lastMsg))
	}
	return m.styles.Status.Render(strings.Join(parts, " │ "))
}

func (m *Model) renderModal() string {
	body := m.modalBody
	if m.modalKind == modalLogs {
		body = m.logsVP.View()
	}
	box := m.styles.PopupTitle.Render(m.modalTitle) + "\n\n" + body + "\n\n" + m.styles.Help.Render("[esc]=close")
	w := m.termWidth
	h := m.termHeight
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	popup := m.styles.PopupBox.MaxWidth(w - 4).Render(box)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, popup)
}

func helpBody() string {
	return strings.Join([]string{
		"↑/↓, pgup/pgdn  navigate",
		"g / G           top / bottom",
		"/               search (text, status:NNN, level:LVL, method:M, `expr`)",
		"esc / F         clear search",
		"space           pause (suspend search work)",
		"m               toggle all/network mode",
		"p               show previous sessions (one-way)",
		"e / E           share as text / html",
		"x               cancel export",
		"enter           inspect entry",
		"c               copy line",
		"i               explain entry (OpenAI)",
		"L               application logs",
		"q               quit",
	}, "\n")
}

// overlay draws the popup on top of the base view, treating whitespace-only
// popup lines as transparent.
func overlay(base, over string) string {
	bLines := strings.Split(base, "\n")
	oLines := strings.Split(over, "\n")
	maxLen := len(bLines)
	if len(oLines) > maxLen {
		maxLen = len(oLines)
	}
	for len(bLines) < maxLen {
		bLines = append(bLines, "")
	}
	for len(oLines) < maxLen {
		oLines = append(oLines, "")
	}
	out := make([]string, maxLen)
	for i := 0; i < maxLen; i++ {
		if strings.TrimSpace(oLines[i]) != "" {
			out[i] = oLines[i]
		} else {
			out[i] = bLines[i]
		}
	}
	return strings.Join(out, "\n")
}

// copyToClipboard uses OSC52, which works in most modern terminals.
func copyToClipboard(s string) {
	s = stripANSI(s)
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	payload := fmt.Sprintf("\x1b]52;c;%s\x07", enc)
	if f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0); err == nil {
		defer f.Close()
		_, _ = f.WriteString(payload)
		return
	}
	fmt.Fprint(os.Stdout, payload)
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func truncLine(s string, w int) string {
	if w <= 0 {
		return s
	}
	// Cheap rune-count clamp; styled rows rarely exceed the terminal width.
	r := []rune(stripANSI(s))
	if len(r) <= w {
		return s
	}
	return string([]rune(s)[:w])
}
