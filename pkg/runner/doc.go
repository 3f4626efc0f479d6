/*
Package runner implements the line-mode front end of the game.

It walks a giveaibreak.Game through its screens one line at a time: each screen
is described as a View and handed to a pluggable IOHandler, and whatever the
user types is fed back into the game. It is used when stdout is not a terminal,
for scripted runs, and as the JSON-lines surface for other programs.

# Key Components

  - Runner: The loop over Landing, Intro, each Prompt and Finish.
  - IOHandler: Decouples how views are shown and input is read (text, JSON).
  - TextHandler: Plain text with optional typewriter animation.
  - JSONHandler: One JSON view per line, input as JSON strings or raw text.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	if err := r.Run(ctx, game); err != nil {
		log.Fatal(err)
	}
*/
package runner
