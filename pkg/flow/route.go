package flow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRoute is returned by ParseRoute for paths outside the navigation surface.
var ErrUnknownRoute = errors.New("unknown route")

// Screen identifies one of the top-level screens.
type Screen int

const (
	ScreenLanding Screen = iota
	ScreenIntro
	ScreenPrompt
	ScreenFinish
)

func (s Screen) String() string {
	switch s {
	case ScreenIntro:
		return "intro"
	case ScreenPrompt:
		return "prompt"
	case ScreenFinish:
		return "finish"
	default:
		return "landing"
	}
}

// Route is a screen plus, for prompt screens, the slug it shows.
type Route struct {
	Screen Screen
	Slug   string
}

const promptPrefix = "/prompt/"

// Landing, Intro and Finish are the parameterless routes.
var (
	Landing = Route{Screen: ScreenLanding}
	Intro   = Route{Screen: ScreenIntro}
	Finish  = Route{Screen: ScreenFinish}
)

// PromptRoute returns the route of the prompt screen for slug.
func PromptRoute(slug string) Route {
	return Route{Screen: ScreenPrompt, Slug: slug}
}

// String renders the route as a path.
func (r Route) String() string {
	switch r.Screen {
	case ScreenIntro:
		return "/intro"
	case ScreenPrompt:
		return promptPrefix + r.Slug
	case ScreenFinish:
		return "/finish"
	default:
		return "/"
	}
}

// ParseRoute parses "/", "/intro", "/finish" and "/prompt/{slug}".
// A single trailing slash is tolerated.
func ParseRoute(path string) (Route, error) {
	p := strings.TrimSpace(path)
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	switch p {
	case "", "/":
		return Landing, nil
	case "/intro":
		return Intro, nil
	case "/finish":
		return Finish, nil
	}
	if slug, ok := strings.CutPrefix(p, promptPrefix); ok && slug != "" && !strings.Contains(slug, "/") {
		return PromptRoute(slug), nil
	}
	return Route{}, fmt.Errorf("%w: %q", ErrUnknownRoute, path)
}
