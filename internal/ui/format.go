package ui

import (
	"fmt"
	"strings"

	"github.com/dotswift/Pulse/internal/criteria"
	"github.com/dotswift/Pulse/internal/model"
	"github.com/dotswift/Pulse/internal/search"
)

const rowTimeLayout = "15:04:05.000"

// formatEntity renders one entity line, optionally highlighting text-token
// hit ranges from the search match.
func (m *Model) formatEntity(e model.Entity, info *criteria.MatchInfo) string {
	ts := m.styles.Status.Render(e.CreatedAt.Format(rowTimeLayout))
	if e.Kind == model.KindTask {
		status := m.styles.Pending.Render("…")
		if e.StatusCode != 0 {
			status = fmt.Sprintf("%d", e.StatusCode)
			if e.StatusCode >= 400 {
				status = m.styles.Level["ERROR"].Render(status)
			}
		}
		url := e.URL
		if info != nil {
			url = m.highlight(url, info.Ranges)
		}
		line := fmt.Sprintf("%s %s %-3s %s", ts, m.styles.Task.Render(fmt.Sprintf("%-6s", e.Method)), status, url)
		if e.Failure != "" {
			line += " " + m.styles.Level["ERROR"].Render(e.Failure)
		}
		return line
	}
	lvl := strings.ToUpper(e.Level)
	st, ok := m.styles.Level[lvl]
	if !ok {
		st = m.styles.Base
	}
	msg := e.Message
	if info != nil {
		msg = m.highlight(msg, info.Ranges)
	}
	return fmt.Sprintf("%s %s %s", ts, st.Render(fmt.Sprintf("%-5s", lvl)), msg)
}

// highlight styles the given byte ranges of s. Ranges come from the matcher
// and never overlap; they are applied back to front so indexes stay valid.
func (m *Model) highlight(s string, ranges [][2]int) string {
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		if r[0] < 0 || r[1] > len(s) || r[0] >= r[1] {
			continue
		}
		s = s[:r[0]] + m.styles.Highlight.Render(s[r[0]:r[1]]) + s[r[1]:]
	}
	return s
}

func (m *Model) matchInfoFor(id string) *criteria.MatchInfo {
	if !m.state.Searching {
		return nil
	}
	for i := range m.state.Matches {
		if m.state.Matches[i].Entity.ID == id {
			return &m.state.Matches[i].Info
		}
	}
	return nil
}

// inspectBody renders the inspector modal content for one entity.
func inspectBody(e model.Entity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "id:       %s\n", e.ID)
	fmt.Fprintf(&b, "created:  %s\n", e.CreatedAt.Format("2006-01-02 15:04:05.000 -0700"))
	fmt.Fprintf(&b, "kind:     %s\n", e.Kind)
	if e.Label != "" {
		fmt.Fprintf(&b, "label:    %s\n", e.Label)
	}
	if e.Kind == model.KindTask {
		fmt.Fprintf(&b, "method:   %s\n", e.Method)
		fmt.Fprintf(&b, "url:      %s\n", e.URL)
		if e.StatusCode != 0 {
			fmt.Fprintf(&b, "status:   %d\n", e.StatusCode)
		} else {
			b.WriteString("status:   pending\n")
		}
		fmt.Fprintf(&b, "duration: %s\n", e.Duration)
		if e.Failure != "" {
			fmt.Fprintf(&b, "failure:  %s\n", e.Failure)
		}
	} else {
		fmt.Fprintf(&b, "level:    %s\n", e.Level)
		fmt.Fprintf(&b, "message:  %s\n", e.Message)
	}
	return b.String()
}

func searchStateLabel(s search.State) string {
	switch s {
	case search.Scanning:
		return "scanning"
	case search.Settled:
		return "settled"
	default:
		return ""
	}
}
