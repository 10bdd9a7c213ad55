package ui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Base        lipgloss.Style
	Status      lipgloss.Style
	StatusWarn  lipgloss.Style
	GroupHeader lipgloss.Style
	Selected    lipgloss.Style
	Highlight   lipgloss.Style
	Pending     lipgloss.Style
	Task        lipgloss.Style
	Level       map[string]lipgloss.Style
	Help        lipgloss.Style
	PopupBox    lipgloss.Style
	PopupTitle  lipgloss.Style
}

func NewStyles(dark bool) Styles {
	s := Styles{}
	if dark {
		s.Base = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		s.StatusWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
		s.GroupHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
		s.Selected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220"))
		s.Highlight = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("220"))
		s.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
		s.Task = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	} else {
		s.Base = lipgloss.NewStyle()
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.StatusWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("130"))
		s.GroupHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
		s.Selected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27"))
		s.Highlight = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("130"))
		s.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
		s.Task = lipgloss.NewStyle().Foreground(lipgloss.Color("25"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
	}
	s.Level = map[string]lipgloss.Style{
		"TRACE": lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		"FATAL": lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true),
	}
	return s
}
