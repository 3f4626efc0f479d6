// Package tui is the full-screen terminal front end of the game, built on bubbletea.
//
// All game state is owned by the Model and mutated only in Update. Timers are
// tea.Tick commands tagged with a generation; a tick or reply whose generation
// is no longer current belongs to a screen that has been left and is dropped.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/giveaibreak"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/flow"
	"github.com/aretw0/giveaibreak/pkg/typing"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

type (
	// typeTickMsg advances the typer of generation gen.
	typeTickMsg struct{ gen int }
	loadedMsg   struct {
		prompts []string
		err     error
	}
	fetchedMsg struct {
		gen    int
		prompt domain.Prompt
		err    error
	}
	scoredMsg struct {
		gen   int
		score domain.Score
		err   error
		took  time.Duration
	}
	minDelayMsg   struct{ gen int }
	copiedMsg     struct{ err error }
	shareResetMsg struct{ gen int }
)

// Option configures the Model.
type Option func(*Model)

// WithTyping sets the cadence of the assistant's lines.
func WithTyping(opts ...typing.Option) Option {
	return func(m *Model) {
		m.typing = append(m.typing, opts...)
	}
}

// WithRenderer renders sender messages, e.g. markdown through glamour.
func WithRenderer(render func(string) (string, error)) Option {
	return func(m *Model) {
		m.render = render
	}
}

// WithClipboard replaces the system clipboard.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.clipboard = write
	}
}

// WithStyles overrides DefaultStyles.
func WithStyles(s Styles) Option {
	return func(m *Model) {
		m.styles = s
	}
}

// Model is the bubbletea model of one game.
type Model struct {
	ctx    context.Context
	game   *giveaibreak.Game
	logger *slog.Logger

	styles    Styles
	render    func(string) (string, error)
	clipboard func(string) error
	typing    []typing.Option

	width  int
	height int

	// screenGen changes whenever the route changes, attempt whenever a response
	// is sent and typeGen whenever a new typer starts.
	screenGen int
	attempt   int
	typeGen   int
	typer     *typing.Typer
	shown     flow.Route

	textarea textarea.Model
	spinner  spinner.Model

	shareLabel    string
	shareGen      int
	shareFallback string
	quitting      bool

	// entry starts the screen the game was on when the model was built.
	entry tea.Cmd
}

// New creates the model for game.
func New(ctx context.Context, game *giveaibreak.Game, opts ...Option) Model {
	ta := textarea.New()
	ta.Placeholder = flow.Placeholder
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(5)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:        ctx,
		game:       game,
		logger:     game.Logger(),
		styles:     DefaultStyles(),
		clipboard:  clipboard.WriteAll,
		textarea:   ta,
		spinner:    sp,
		shareLabel: flow.ShareLabel,
	}
	for _, opt := range opts {
		opt(&m)
	}
	sp.Style = m.styles.Loading
	m.spinner = sp
	m.entry = m.enterCmd()
	return m
}

// Init loads the prompt list and starts the current screen.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.entry}
	if !m.game.Store().Ready() {
		cmds = append(cmds, m.loadCmd())
	}
	return tea.Batch(cmds...)
}

// enterCmd returns the commands that start the current screen. It is issued once per route.
func (m *Model) enterCmd() tea.Cmd {
	m.screenGen++
	m.attempt++
	m.shown = m.game.Route()
	m.typer = nil
	m.shareLabel = flow.ShareLabel
	m.shareFallback = ""
	m.textarea.Reset()
	m.textarea.Blur()

	switch m.shown.Screen {
	case flow.ScreenLanding:
		return m.startTyping([]string{flow.LandingTitle}, typing.WithSpeed(flow.LandingSpeed), typing.WithPause(0))
	case flow.ScreenIntro:
		opts := append([]typing.Option{typing.WithSpeed(flow.ScriptSpeed), typing.WithStartDelay(flow.ScriptStartWait)}, m.typing...)
		return m.startTyping(flow.IntroScript, opts...)
	case flow.ScreenPrompt:
		return m.fetchCmd()
	case flow.ScreenFinish:
		return m.startTyping([]string{m.game.Summary().Message}, m.typing...)
	}
	return nil
}

// startTyping replaces the current typer. Ticks of the previous one become stale.
func (m *Model) startTyping(texts []string, opts ...typing.Option) tea.Cmd {
	m.typeGen++
	m.typer = typing.New(texts, opts...)
	if m.typer.Done() {
		return m.finishedTyping()
	}
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	gen := m.typeGen
	return tea.Tick(m.typer.Delay(), func(time.Time) tea.Msg {
		return typeTickMsg{gen: gen}
	})
}

// skipTyping reveals the rest of the current typer at once.
func (m *Model) skipTyping() tea.Cmd {
	if m.typer == nil || m.typer.Done() {
		return nil
	}
	m.typeGen++
	for m.typer.Advance() != typing.EventComplete {
	}
	return m.finishedTyping()
}

// finishedTyping runs when the current typer completes.
func (m *Model) finishedTyping() tea.Cmd {
	screen := m.game.Controller().Prompt()
	if screen == nil || screen.Mode() != flow.ModeAwaitingFetch {
		return nil
	}
	screen.DescriptionTyped()
	if screen.Mode() == flow.ModeReadyForInput {
		return m.textarea.Focus()
	}
	return nil
}

func (m Model) loadCmd() tea.Cmd {
	ctx, svc := m.ctx, m.game.Service()
	return func() tea.Msg {
		prompts, err := svc.ListPrompts(ctx)
		return loadedMsg{prompts: prompts, err: err}
	}
}

func (m Model) fetchCmd() tea.Cmd {
	ctx, svc, gen, slug := m.ctx, m.game.Service(), m.screenGen, m.shown.Slug
	return func() tea.Msg {
		p, err := svc.GetPrompt(ctx, slug)
		return fetchedMsg{gen: gen, prompt: p, err: err}
	}
}

// submitCmd sends sub and starts the minimum loading delay alongside it.
// Replies of earlier attempts are ignored.
func (m *Model) submitCmd(sub domain.Submission) tea.Cmd {
	m.attempt++
	ctx, svc, gen, slug := m.ctx, m.game.Service(), m.attempt, m.shown.Slug
	send := func() tea.Msg {
		start := time.Now()
		score, err := svc.Submit(ctx, slug, sub)
		return scoredMsg{gen: gen, score: score, err: err, took: time.Since(start)}
	}
	delay := tea.Tick(m.game.MinLoading(), func(time.Time) tea.Msg {
		return minDelayMsg{gen: gen}
	})
	return tea.Batch(send, delay, m.spinner.Tick)
}

func (m Model) shareCmd() tea.Cmd {
	write, text := m.clipboard, m.game.Summary().ShareText
	return func() tea.Msg {
		return copiedMsg{err: write(text)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = max(msg.Width, 0), max(msg.Height, 0)
		if m.width > 8 {
			m.textarea.SetWidth(min(m.width-8, 80))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case typeTickMsg:
		if msg.gen != m.typeGen || m.typer == nil {
			return m, nil
		}
		if m.typer.Advance() == typing.EventComplete {
			return m, m.finishedTyping()
		}
		return m, m.tick()

	case loadedMsg:
		if msg.err != nil {
			m.logger.Error("failed to fetch prompts", "err", msg.err)
			return m, nil
		}
		m.game.Store().Load(msg.prompts)
		return m, nil

	case fetchedMsg:
		screen := m.game.Controller().Prompt()
		if msg.gen != m.screenGen || screen == nil {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("failed to fetch prompt", "slug", m.shown.Slug, "err", msg.err)
			screen.FetchFailed(msg.err)
		} else {
			screen.FetchSucceeded(msg.prompt)
		}
		if screen.Mode() == flow.ModeScored {
			// Resumed after the score was shown.
			score, _ := screen.Score()
			return m, m.startTyping([]string{score.Message}, m.typing...)
		}
		if msg.err != nil {
			return m, nil
		}
		return m, m.startTyping([]string{msg.prompt.Description}, m.typing...)

	case scoredMsg:
		screen := m.game.Controller().Prompt()
		if msg.gen != m.attempt || screen == nil || screen.Mode() != flow.ModeSubmitting {
			return m, nil
		}
		hooks := m.game.Controller().Hooks()
		if msg.err != nil {
			m.logger.Error("failed to submit response", "slug", m.shown.Slug, "err", msg.err)
			screen.SubmitFailed(msg.err)
			m.emitScored(hooks, domain.SubmitEvent{Slug: m.shown.Slug, Duration: msg.took, IsError: true})
			return m, nil
		}
		screen.SubmitSucceeded(msg.score)
		m.emitScored(hooks, domain.SubmitEvent{Slug: m.shown.Slug, Stars: domain.ClampStars(msg.score.Stars), Duration: msg.took})
		return m, m.revealed(screen)

	case minDelayMsg:
		screen := m.game.Controller().Prompt()
		if msg.gen != m.attempt || screen == nil || screen.Mode() != flow.ModeSubmitting {
			return m, nil
		}
		screen.MinDelayElapsed()
		return m, m.revealed(screen)

	case copiedMsg:
		if msg.err != nil {
			m.logger.Warn("failed to copy share text", "err", msg.err)
			m.shareFallback = m.game.Summary().ShareText
			return m, nil
		}
		m.shareLabel = flow.CopiedLabel
		m.shareGen++
		gen := m.shareGen
		return m, tea.Tick(flow.CopiedDuration, func(time.Time) tea.Msg {
			return shareResetMsg{gen: gen}
		})

	case shareResetMsg:
		if msg.gen == m.shareGen {
			m.shareLabel = flow.ShareLabel
		}
		return m, nil

	case spinner.TickMsg:
		if screen := m.game.Controller().Prompt(); screen != nil && screen.Loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.textarea.Focused() {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

// revealed starts the verdict once the screen reaches Scored and persists the record.
// Callers only pass screens that were Submitting before the message.
func (m *Model) revealed(screen *flow.PromptScreen) tea.Cmd {
	if screen.Mode() != flow.ModeScored {
		return nil
	}
	score, _ := screen.Score()
	if err := m.game.Save(m.ctx); err != nil {
		m.logger.Warn("failed to persist session", "route", m.shown.String(), "err", err)
	}
	return m.startTyping([]string{score.Message}, m.typing...)
}

func (m *Model) emitScored(hooks domain.LifecycleHooks, ev domain.SubmitEvent) {
	if hooks.OnScored == nil {
		return
	}
	ev.EventBase = domain.EventBase{Timestamp: time.Now(), Type: domain.EventScored}
	hooks.OnScored(m.ctx, &ev)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m.quit()
	}

	typingDone := m.typer == nil || m.typer.Done()
	screen := m.game.Controller().Prompt()

	switch m.shown.Screen {
	case flow.ScreenLanding, flow.ScreenIntro:
		if msg.String() == "q" {
			return m.quit()
		}
		if msg.String() != "enter" && msg.String() != " " {
			return m, nil
		}
		if !typingDone {
			return m, m.skipTyping()
		}
		action := m.game.Start
		if m.shown.Screen == flow.ScreenIntro {
			action = m.game.Okay
		}
		return m.act(action)

	case flow.ScreenFinish:
		switch msg.String() {
		case "q":
			return m.quit()
		case "s":
			return m, m.shareCmd()
		case "enter", "a":
			if !typingDone {
				return m, m.skipTyping()
			}
			return m.act(m.game.Again)
		}
		return m, nil
	}

	if screen == nil {
		return m, nil
	}
	switch screen.Mode() {
	case flow.ModeAwaitingFetch:
		switch {
		case msg.String() == "r" && screen.Err() != nil:
			screen.Retry()
			return m, m.fetchCmd()
		case msg.String() == "enter" && !typingDone:
			return m, m.skipTyping()
		case msg.String() == "q":
			return m.quit()
		}
		return m, nil

	case flow.ModeReadyForInput:
		if msg.String() == "enter" {
			sub, err := screen.Submit(m.textarea.Value())
			if err != nil {
				return m, nil
			}
			m.textarea.Blur()
			if hooks := m.game.Controller().Hooks(); hooks.OnSubmit != nil {
				hooks.OnSubmit(m.ctx, &domain.SubmitEvent{
					EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSubmit},
					Slug:      screen.Slug(),
				})
			}
			return m, m.submitCmd(sub)
		}
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	case flow.ModeSubmitting:
		if msg.String() == "r" && screen.Retry() == flow.RetrySubmit {
			return m, m.submitCmd(screen.Submission())
		}
		return m, nil

	case flow.ModeScored:
		switch msg.String() {
		case "enter":
			if !typingDone {
				return m, m.skipTyping()
			}
			return m.act(m.game.Next)
		case "q":
			return m.quit()
		}
	}
	return m, nil
}

// act dispatches a navigation action and enters the resulting screen.
func (m Model) act(action func(context.Context) error) (tea.Model, tea.Cmd) {
	if err := action(m.ctx); err != nil {
		m.logger.Warn("action rejected", "route", m.shown.String(), "err", err)
		return m, nil
	}
	return m, m.enterCmd()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if err := m.game.Save(context.WithoutCancel(m.ctx)); err != nil {
		m.logger.Warn("failed to save session on exit", "err", err)
	}
	return m, tea.Quit
}

// Run starts a full-screen program for game and blocks until the user quits.
func Run(ctx context.Context, game *giveaibreak.Game, opts ...Option) error {
	p := tea.NewProgram(New(ctx, game, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
