package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/dotswift/Pulse/internal/ai"
	"github.com/dotswift/Pulse/internal/config"
	"github.com/dotswift/Pulse/internal/console"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalInspector
	modalLogs
	modalExplain
	modalError
)

type inlineMode int

const (
	inlineNone inlineMode = iota
	inlineSearch
)

// row is one visual line of the list: either a group header or an entity.
type row struct {
	header bool
	key    string // group key when header
	id     string // entity id otherwise
}

type Model struct {
	ctx   context.Context
	cfg   *config.Config
	coord *console.Coordinator
	aicli *ai.OpenAIClient

	// Latest coordinator snapshot; the only thing View renders from.
	state console.State

	// Flattened visible rows and scroll window.
	rows   []row
	cursor int
	offset int

	// Ids last reported appeared, for visibility diffing on scroll.
	reported map[string]bool

	// Widgets
	search textinput.Model
	spin   spinner.Model
	help   help.Model
	logsVP viewport.Model
	styles Styles
	keymap KeyMap

	termWidth  int
	termHeight int

	// View lifecycle: paused means the list is treated as off-screen and
	// background search work is suspended.
	paused bool

	inlineMode inlineMode
	lastQuery  string

	modalActive bool
	modalKind   modalKind
	modalTitle  string
	modalBody   string

	lastMsg   string
	netBusy   bool
	startedAt time.Time
}
