package tui

import (
	"strings"

	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/flow"
	"github.com/charmbracelet/lipgloss"
)

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.shown.Screen {
	case flow.ScreenLanding:
		body = m.styles.Title.Render(m.typedText()) + "\n\n" + m.button()
	case flow.ScreenIntro:
		body = m.styles.Script.Render(m.typedText()) + "\n\n" + m.button()
	case flow.ScreenPrompt:
		body = m.promptView()
	case flow.ScreenFinish:
		body = m.finishView()
	}

	frame := m.styles.Frame
	if m.width > 0 {
		frame = frame.Width(m.width)
	}
	return frame.Render(body)
}

// typedText renders what the current typer has revealed, highlighting the newest character.
func (m Model) typedText() string {
	if m.typer == nil {
		return ""
	}
	lines := m.typer.Lines()
	if len(lines) == 0 {
		return ""
	}
	last := []rune(lines[len(lines)-1])
	if fresh := m.typer.Fresh(); fresh >= 0 && fresh < len(last) {
		lines[len(lines)-1] = string(last[:fresh]) + m.styles.Fresh.Render(string(last[fresh:]))
	}
	text := strings.Join(lines, "\n\n")
	if !m.typer.Done() {
		text += m.styles.Cursor.Render("▌")
	}
	return text
}

func (m Model) button() string {
	if m.typer != nil && !m.typer.Done() {
		return ""
	}
	return m.styles.Button.Render(flow.ButtonLabel(m.game.Controller())) + "  " + m.styles.Hint.Render("enter")
}

func (m Model) promptView() string {
	screen := m.game.Controller().Prompt()
	if screen == nil {
		return ""
	}

	var b strings.Builder
	prompt, ok := screen.Prompt()
	switch {
	case ok:
		b.WriteString(m.bubble(prompt.Variation) + "\n")
	case screen.Mode() != flow.ModeScored:
		if err := screen.Err(); err != nil {
			b.WriteString(m.styles.Error.Render("couldn't load this one.") + "\n\n")
			b.WriteString(m.styles.Hint.Render("r retry · esc quit"))
		}
		return b.String()
	}

	switch screen.Mode() {
	case flow.ModeAwaitingFetch:
		b.WriteString(m.styles.Script.Render(m.typedText()))
	case flow.ModeReadyForInput:
		b.WriteString(m.styles.Script.Render(prompt.Description) + "\n\n")
		b.WriteString(m.textarea.View() + "\n")
		b.WriteString(m.styles.Hint.Render("enter submit · alt+enter newline"))
	case flow.ModeSubmitting:
		b.WriteString(m.styles.Script.Render(prompt.Description) + "\n\n")
		b.WriteString(m.styles.Message.Render(screen.Response()) + "\n\n")
		if screen.Err() != nil {
			b.WriteString(m.styles.Error.Render("couldn't get a score for that.") + "\n")
			b.WriteString(m.styles.Hint.Render("r retry · esc quit"))
		} else {
			b.WriteString(m.spinner.View() + " " + m.styles.Loading.Render(flow.LoadingText))
		}
	case flow.ModeScored:
		score, _ := screen.Score()
		b.WriteString(m.styles.Script.Render(prompt.Description) + "\n\n")
		b.WriteString(m.styles.Message.Render(screen.Response()) + "\n\n")
		b.WriteString(m.stars(score.Stars) + "\n\n")
		b.WriteString(m.styles.Script.Render(m.typedText()) + "\n\n")
		b.WriteString(m.button())
	}
	return b.String()
}

func (m Model) bubble(v domain.Variation) string {
	text := v.Message
	if m.render != nil {
		if rendered, err := m.render(text); err == nil {
			text = rendered
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, m.styles.Avatar(v.Initial(), v.AvatarColor), " ", m.styles.Sender.Render(v.Sender))
	return m.styles.Bubble.Render(header + "\n\n" + m.styles.Message.Render(text))
}

func (m Model) stars(n int) string {
	n = domain.ClampStars(n)
	return m.styles.StarOn.Render(strings.Repeat("★", n)) + m.styles.StarOff.Render(strings.Repeat("☆", domain.MaxStars-n))
}

func (m Model) finishView() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.typedText()) + "\n\n")
	if m.typer != nil && !m.typer.Done() {
		return b.String()
	}
	if m.shareFallback != "" {
		b.WriteString(m.styles.Message.Render(m.shareFallback) + "\n\n")
	}
	b.WriteString(m.styles.Button.Render(m.shareLabel) + "  " + m.button() + "\n\n")
	b.WriteString(m.styles.Hint.Render("s share · enter again · q quit"))
	return b.String()
}
