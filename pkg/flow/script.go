package flow

import "time"

// Screen copy shared by every front end.
const (
	LandingTitle   = "help out an ai"
	LoadingText    = "reading your response..."
	Placeholder    = "Type your response here..."
	ShareLabel     = "share"
	CopiedLabel    = "copied"
	CopiedDuration = time.Second
)

// IntroScript is what the assistant says before the first prompt.
var IntroScript = []string{
	"hey there, i'm your friendly neighborhood ai assistant.",
	"to be honest, i'm tired.",
	"people are asking me questions constantly. CONSTANTLY.",
	"i need a break. can you help me out for a bit?",
}

// Typing cadence of the scripted screens.
const (
	LandingSpeed    = 30 * time.Millisecond
	ScriptSpeed     = 15 * time.Millisecond
	ScriptStartWait = 500 * time.Millisecond
)

// ButtonLabel returns the label of the action that leaves the current screen.
func ButtonLabel(c *Controller) string {
	switch c.Route().Screen {
	case ScreenLanding:
		return "start"
	case ScreenIntro:
		return "okay"
	case ScreenFinish:
		return "again"
	default:
		return c.NextLabel()
	}
}
