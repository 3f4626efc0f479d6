package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette of the game: yellow on black.
var (
	Yellow     = lipgloss.Color("#facc15")
	PaleYellow = lipgloss.Color("#fef08a")
	Gray       = lipgloss.Color("#4b5563")
	Card       = lipgloss.Color("#111827")
	White      = lipgloss.Color("#ffffff")
	Red        = lipgloss.Color("#f87171")
)

// Styles holds the lipgloss styles of every screen.
type Styles struct {
	Title   lipgloss.Style
	Script  lipgloss.Style
	Fresh   lipgloss.Style
	Cursor  lipgloss.Style
	Bubble  lipgloss.Style
	Sender  lipgloss.Style
	Message lipgloss.Style
	StarOn  lipgloss.Style
	StarOff lipgloss.Style
	Loading lipgloss.Style
	Error   lipgloss.Style
	Button  lipgloss.Style
	Hint    lipgloss.Style
	Frame   lipgloss.Style
}

// DefaultStyles returns the standard look.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Foreground(Yellow).Bold(true),
		Script:  lipgloss.NewStyle().Foreground(Yellow),
		Fresh:   lipgloss.NewStyle().Foreground(PaleYellow),
		Cursor:  lipgloss.NewStyle().Foreground(Yellow).Blink(true),
		Bubble:  lipgloss.NewStyle().Background(Card).Padding(1, 2).MarginBottom(1),
		Sender:  lipgloss.NewStyle().Foreground(White).Bold(true),
		Message: lipgloss.NewStyle().Foreground(White),
		StarOn:  lipgloss.NewStyle().Foreground(Yellow),
		StarOff: lipgloss.NewStyle().Foreground(Gray),
		Loading: lipgloss.NewStyle().Foreground(Yellow).Faint(true),
		Error:   lipgloss.NewStyle().Foreground(Red),
		Button:  lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(Yellow).Padding(0, 2).Bold(true),
		Hint:    lipgloss.NewStyle().Foreground(Gray),
		Frame:   lipgloss.NewStyle().Padding(1, 4),
	}
}

// Avatar renders the sender initial on the sender's color.
func (s Styles) Avatar(initial, color string) string {
	st := lipgloss.NewStyle().Foreground(White).Bold(true).Padding(0, 1)
	if color != "" {
		st = st.Background(lipgloss.Color(color))
	}
	return st.Render(initial)
}
