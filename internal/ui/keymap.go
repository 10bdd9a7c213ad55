package ui

import tea "github.com/charmbracelet/bubbletea"

type KeyMap struct {
	Pause       tea.Key
	Search      tea.Key
	ClearSearch tea.Key
	Previous    tea.Key
	ShareText   tea.Key
	ShareHTML   tea.Key
	CancelShare tea.Key
	Explain     tea.Key
	Inspector   tea.Key
	ModeToggle  tea.Key
	Top         tea.Key
	Bottom      tea.Key
	CopyLine    tea.Key
	AppLogs     tea.Key
	Help        tea.Key
	Quit        tea.Key
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Pause:       tea.Key{Type: tea.KeyRunes, Runes: []rune{' '}},
		Search:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'/'}},
		ClearSearch: tea.Key{Type: tea.KeyRunes, Runes: []rune{'F'}},
		Previous:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'p'}},
		ShareText:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'e'}},
		ShareHTML:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'E'}},
		CancelShare: tea.Key{Type: tea.KeyRunes, Runes: []rune{'x'}},
		Explain:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'i'}},
		Inspector:   tea.Key{Type: tea.KeyEnter},
		ModeToggle:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'m'}},
		Top:         tea.Key{Type: tea.KeyRunes, Runes: []rune{'g'}},
		Bottom:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'G'}},
		CopyLine:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'c'}},
		AppLogs:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'L'}},
		Help:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'?'}},
		Quit:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'q'}},
	}
}

func keyMatches(msg tea.KeyMsg, k tea.Key) bool {
	if k.Type != tea.KeyRunes {
		return msg.Type == k.Type
	}
	if len(k.Runes) > 0 {
		return msg.String() == string(k.Runes)
	}
	return false
}
