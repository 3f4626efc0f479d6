package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/typing"
)

// TextHandler implements the plain line-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	typing  []typing.Option
	animate bool

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTyping animates typed blocks with the given cadence.
func WithTyping(opts ...typing.Option) TextHandlerOption {
	return func(h *TextHandler) {
		h.animate = true
		h.typing = append(h.typing, opts...)
	}
}

// NewTextHandler creates a handler for standard text IO.
// Typed blocks are printed at once unless WithTyping is given.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines on its own goroutine so Input can honour ctx.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

// Output prints the view. Typed blocks are animated when configured.
func (h *TextHandler) Output(ctx context.Context, view View) error {
	for _, b := range view.Blocks {
		if err := h.block(ctx, b); err != nil {
			return err
		}
	}
	if view.Placeholder != "" {
		fmt.Fprintf(h.Writer, "(%s)\n", view.Placeholder)
	}
	if len(view.Actions) > 0 {
		hints := make([]string, len(view.Actions))
		for i, a := range view.Actions {
			hints[i] = "[" + a + "]"
		}
		fmt.Fprintln(h.Writer, strings.Join(hints, " "))
	}
	return nil
}

func (h *TextHandler) block(ctx context.Context, b Block) error {
	switch b.Kind {
	case KindMessage:
		initial := domain.Variation{Sender: b.Sender}.Initial()
		fmt.Fprintf(h.Writer, "(%s) %s\n", initial, b.Sender)
		fmt.Fprintln(h.Writer, strings.TrimSpace(h.render(b.Text)))
		fmt.Fprintln(h.Writer)
		return nil
	case KindStars:
		fmt.Fprintln(h.Writer, Stars(b.Stars))
		return nil
	case KindError:
		fmt.Fprintf(h.Writer, "! %s\n", b.Text)
		return nil
	}
	if b.Typed && h.animate {
		if err := h.typeOut(ctx, b.Text); err != nil {
			return err
		}
	} else {
		fmt.Fprint(h.Writer, b.Text)
	}
	fmt.Fprint(h.Writer, "\n\n")
	return nil
}

func (h *TextHandler) render(text string) string {
	if h.Renderer == nil {
		return text
	}
	if rendered, err := h.Renderer(text); err == nil {
		return rendered
	}
	return text
}

// typeOut writes text as the typer reveals it. A cancelled ctx prints the rest at once.
func (h *TextHandler) typeOut(ctx context.Context, text string) error {
	written := 0
	sink := func(f typing.Frame) {
		runes := []rune(f.Text)
		if len(runes) > written {
			fmt.Fprint(h.Writer, string(runes[written:]))
			written = len(runes)
		}
	}
	err := typing.Play(ctx, []string{text}, sink, h.typing...)
	if err != nil {
		fmt.Fprint(h.Writer, string([]rune(text)[written:]))
	}
	return err
}

// Input reads one line. Input that fails sanitization is reported and asked again.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

// SystemOutput prints msg on its own line.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "%s\n", msg)
	return err
}

// Stars renders a 0..5 rating as filled and empty stars.
func Stars(n int) string {
	n = domain.ClampStars(n)
	return strings.Repeat("★", n) + strings.Repeat("☆", domain.MaxStars-n)
}
