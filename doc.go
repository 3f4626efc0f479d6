/*
Package giveaibreak is a small game in which you help out a tired AI assistant.

The assistant types out a few requests it has received ("write a friendly email",
"a birthday poem") and you answer them on its behalf. Each answer is sent to a
scoring service, which replies with zero to five stars and a comment. At the end
the stars are added up into a summary you can share.

# Concept

A run walks a fixed sequence of screens: Landing, Intro, one Prompt screen per
prompt slug, and Finish. The flow controller (package flow) owns the screen
sequence, the session store (package session) owns the prompt list and the
response history, and the scoring summary (package scoring) turns the history
into a verdict. Everything that talks to the outside world sits behind the
interfaces in package ports: the remote scoring API, snapshot persistence and
distributed locks.

# Usage

	svc, err := http.NewClient("http://localhost:8080")
	if err != nil {
		log.Fatal(err)
	}
	game := giveaibreak.New(svc)
	ctx := context.Background()

	_ = game.Load(ctx)
	_ = game.Start(ctx) // Landing -> Intro
	_ = game.Okay(ctx)  // Intro -> first prompt

	prompt, _ := game.Fetch(ctx)
	game.Typed() // the description has been shown
	score, _ := game.Submit(ctx, "hi "+prompt.Variation.Sender+", happy to help!")
	fmt.Println(score.Stars)

Frontends: cmd/giveaibreak ships a terminal UI, a line-mode runner for pipes,
a stub scoring server and an MCP server.
*/
package giveaibreak
