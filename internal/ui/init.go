package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dotswift/Pulse/internal/ai"
	"github.com/dotswift/Pulse/internal/config"
	"github.com/dotswift/Pulse/internal/console"
)

func initialModel(ctx context.Context, cfg *config.Config, coord *console.Coordinator) *Model {
	m := &Model{
		ctx:       ctx,
		cfg:       cfg,
		coord:     coord,
		styles:    NewStyles(cfg.Theme == config.ThemeDark),
		keymap:    DefaultKeyMap(),
		search:    textinput.New(),
		spin:      spinner.New(),
		help:      help.New(),
		reported:  map[string]bool{},
		startedAt: time.Now(),
	}
	if !cfg.Offline && cfg.OpenAIKey() != "" {
		m.aicli = ai.NewOpenAIClient(cfg.OpenAIKey(), cfg.OpenAIBase, cfg.OpenAIModel, time.Duration(cfg.OpenAITimeoutSec)*time.Second)
	}
	m.spin.Spinner = spinner.Dot
	m.search.Placeholder = "search... (text, status:404, level:error, method:get, `expr`)"
	m.search.CharLimit = 256
	m.search.Prompt = "/"
	m.logsVP = viewport.New(80, 20)
	return m
}

// Run wires the coordinator into a bubbletea program and blocks until exit.
func Run(ctx context.Context, cfg *config.Config, coord *console.Coordinator) error {
	m := initialModel(ctx, cfg, coord)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		waitEvent(m.coord),
		m.spin.Tick,
		tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} }),
	)
}

type consoleMsg struct{ ev console.Event }
type tickMsg struct{}
type toastMsg struct{ text string }
type explainDoneMsg struct {
	text string
	err  string
}

// waitEvent blocks on the coordinator's event stream and re-arms after each
// delivery.
func waitEvent(coord *console.Coordinator) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-coord.Events()
		if !ok {
			return tea.Quit()
		}
		return consoleMsg{ev: ev}
	}
}
