/*
Package typing implements the typewriter engine used by every screen.

A Typer reveals an ordered sequence of texts one character per tick, pauses between
texts and reports completion exactly once. It never erases and never loops. The
Typer is pure: it only computes the next reveal state and how long to wait for it,
so it can be driven by a bubbletea tick, by a Driver on its own goroutine, or
stepped by hand in tests.

# Usage

	t := typing.New([]string{"hey there.", "to be honest, i'm tired."},
		typing.WithSpeed(15*time.Millisecond),
		typing.WithPause(time.Second),
	)

	d := typing.NewDriver(t, typing.WithOnComplete(func() { fmt.Println() }))
	err := d.Run(ctx, func(f typing.Frame) {
		fmt.Print("\r", f.Text)
	})
*/
package typing
