/*
Package flow implements screen navigation for the game.

A Controller walks the user through Landing, Intro, one Prompt screen per slug and
Finish. It is a plain state machine: callers report user actions (start, okay, next,
again) or deep links, and read the resulting Route.

Each Prompt screen owns a PromptScreen, a smaller machine that moves from
AwaitingFetch to ReadyForInput to Submitting to Scored. PromptScreen never performs
I/O and never sleeps; it is fed results by its driver. PromptSession is the blocking
driver used by the line-mode runner and the MCP adapter. The TUI feeds the same
machine from tea commands.

Neither type is safe for concurrent use.
*/
package flow
