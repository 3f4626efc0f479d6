package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/giveaibreak"
	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/flow"
)

// errQuit ends the run at the user's request.
var errQuit = errors.New("quit")

// Runner plays a Game line by line through an IOHandler.
// It is the front end for pipes, dumb terminals and scripted runs.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Clipboard copies the share text. If nil, the text is printed instead.
	Clipboard func(string) error
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives g from its current screen until the input ends, the user quits
// or ctx is cancelled. The snapshot is saved on the way out.
func (r *Runner) Run(ctx context.Context, g *giveaibreak.Game) error {
	r.resolve()

	signals := NewSignalManager(ctx)
	defer signals.Stop()
	ctx = signals.Context()

	for {
		var err error
		switch g.Route().Screen {
		case flow.ScreenLanding:
			err = r.landing(ctx, g)
		case flow.ScreenIntro:
			err = r.intro(ctx, g)
		case flow.ScreenPrompt:
			err = r.prompt(ctx, g)
		case flow.ScreenFinish:
			err = r.finish(ctx, g)
		}
		if err == nil {
			continue
		}

		if !errors.Is(err, errQuit) && !errors.Is(err, io.EOF) {
			signals.CheckRace()
			if ctx.Err() == nil {
				return err
			}
			r.Logger.Debug("runner interrupted", "route", g.Route().String(), "err", ctx.Err())
		}
		if err := g.Save(context.WithoutCancel(ctx)); err != nil {
			r.Logger.Warn("failed to save session on exit", "err", err)
		}
		return nil
	}
}

func (r *Runner) resolve() {
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
}

// ask shows view and reads a line. Quit words end the run.
func (r *Runner) ask(ctx context.Context, view View) (string, error) {
	if err := r.Handler.Output(ctx, view); err != nil {
		return "", fmt.Errorf("output error: %w", err)
	}
	return r.read(ctx)
}

func (r *Runner) read(ctx context.Context) (string, error) {
	val, err := r.Handler.Input(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("input error: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "exit", "quit":
		return "", errQuit
	}
	return val, nil
}

func (r *Runner) landing(ctx context.Context, g *giveaibreak.Game) error {
	_, err := r.ask(ctx, View{
		Route:   g.Route().String(),
		Blocks:  []Block{{Kind: KindTitle, Text: flow.LandingTitle, Typed: true}},
		Actions: []string{flow.ButtonLabel(g.Controller())},
	})
	if err != nil {
		return err
	}
	return g.Start(ctx)
}

func (r *Runner) intro(ctx context.Context, g *giveaibreak.Game) error {
	_, err := r.ask(ctx, View{
		Route:   g.Route().String(),
		Blocks:  []Block{{Kind: KindScript, Text: strings.Join(flow.IntroScript, "\n\n"), Typed: true}},
		Actions: []string{flow.ButtonLabel(g.Controller())},
	})
	if err != nil {
		return err
	}
	return g.Okay(ctx)
}

func (r *Runner) prompt(ctx context.Context, g *giveaibreak.Game) error {
	route := g.Route().String()
	prompt, err := r.fetch(ctx, g)
	if err != nil {
		return err
	}

	view := View{
		Route: route,
		Blocks: []Block{
			{Kind: KindMessage, Sender: prompt.Variation.Sender, Color: prompt.Variation.AvatarColor, Text: prompt.Variation.Message},
			{Kind: KindScript, Text: prompt.Description, Typed: true},
		},
	}
	if err := r.Handler.Output(ctx, view); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	g.Typed()

	screen := g.Controller().Prompt()
	score, scored := screen.Score()
	if !scored || screen.Mode() != flow.ModeScored {
		if score, err = r.submit(ctx, g, route); err != nil {
			return err
		}
	}

	_, err = r.ask(ctx, View{
		Route: route,
		Blocks: []Block{
			{Kind: KindStars, Stars: score.Stars},
			{Kind: KindScript, Text: score.Message, Typed: true},
		},
		Actions: []string{flow.ButtonLabel(g.Controller())},
	})
	if err != nil {
		return err
	}
	return g.Next(ctx)
}

// fetch loads the prompt detail, offering a retry until it arrives.
func (r *Runner) fetch(ctx context.Context, g *giveaibreak.Game) (domain.Prompt, error) {
	_, err := g.Fetch(ctx)
	for err != nil {
		if ctx.Err() != nil {
			return domain.Prompt{}, ctx.Err()
		}
		if _, err := r.ask(ctx, View{
			Route:   g.Route().String(),
			Blocks:  []Block{{Kind: KindError, Text: "couldn't load this one."}},
			Actions: []string{"retry", "quit"},
		}); err != nil {
			return domain.Prompt{}, err
		}
		err = g.Retry(ctx)
	}
	prompt, _ := g.Controller().Prompt().Prompt()
	return prompt, nil
}

// submit reads responses until one is scored.
func (r *Runner) submit(ctx context.Context, g *giveaibreak.Game, route string) (domain.Score, error) {
	for {
		text, err := r.ask(ctx, View{Route: route, Placeholder: flow.Placeholder, Actions: []string{"submit"}})
		if err != nil {
			return domain.Score{}, err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		if err := r.Handler.Output(ctx, View{Route: route, Blocks: []Block{{Kind: KindLoading, Text: flow.LoadingText}}}); err != nil {
			return domain.Score{}, fmt.Errorf("output error: %w", err)
		}
		score, err := g.Submit(ctx, text)
		for err != nil {
			if errors.Is(err, flow.ErrEmptyResponse) {
				break
			}
			if ctx.Err() != nil {
				return domain.Score{}, ctx.Err()
			}
			if _, err := r.ask(ctx, View{
				Route:   route,
				Blocks:  []Block{{Kind: KindError, Text: "couldn't get a score for that."}},
				Actions: []string{"retry", "quit"},
			}); err != nil {
				return domain.Score{}, err
			}
			if err = g.Retry(ctx); err == nil {
				score, _ = g.Controller().Prompt().Score()
			}
		}
		if err == nil {
			return score, nil
		}
	}
}

func (r *Runner) finish(ctx context.Context, g *giveaibreak.Game) error {
	sum := g.Summary()
	err := r.Handler.Output(ctx, View{
		Route:   g.Route().String(),
		Blocks:  []Block{{Kind: KindScript, Text: sum.Message, Typed: true}},
		Actions: []string{flow.ShareLabel, flow.ButtonLabel(g.Controller()), "quit"},
	})
	if err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	for {
		in, err := r.read(ctx)
		if err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(in), flow.ShareLabel) {
			r.share(ctx, sum.ShareText)
			continue
		}
		return g.Again(ctx)
	}
}

// share copies text. Failures are logged and the text is printed instead.
func (r *Runner) share(ctx context.Context, text string) {
	if r.Clipboard != nil {
		err := r.Clipboard(text)
		if err == nil {
			_ = r.Handler.SystemOutput(ctx, flow.CopiedLabel)
			return
		}
		r.Logger.Warn("failed to copy share text", "err", err)
	}
	_ = r.Handler.Output(ctx, View{
		Route:  flow.Finish.String(),
		Blocks: []Block{{Kind: KindShare, Text: text}},
	})
}
