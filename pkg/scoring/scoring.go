// Package scoring turns a response history into the finish-screen summary.
package scoring

import (
	"fmt"

	"github.com/aretw0/giveaibreak/pkg/domain"
)

// DefaultShareURL is appended to every share text.
const DefaultShareURL = "http://giveaiabreak.com"

// Tier is a score band.
type Tier int

const (
	TierLow Tier = iota
	TierMid
	TierTop
)

func (t Tier) String() string {
	switch t {
	case TierTop:
		return "top"
	case TierMid:
		return "mid"
	default:
		return "low"
	}
}

// Thresholds are strict: a percentage must exceed them to reach the tier.
const (
	TopThreshold = 85.0
	MidThreshold = 60.0
)

// TierFor returns the tier of a percentage.
func TierFor(percentage float64) Tier {
	switch {
	case percentage > TopThreshold:
		return TierTop
	case percentage > MidThreshold:
		return TierMid
	default:
		return TierLow
	}
}

// Summary is the aggregate shown on the finish screen.
type Summary struct {
	Stars      int     `json:"stars"`
	Possible   int     `json:"possible"`
	Percentage float64 `json:"percentage"`
	Tier       Tier    `json:"tier"`
	Message    string  `json:"message"`
	ShareText  string  `json:"share_text"`
	// Empty is set when there was nothing to score; Percentage is then 0.
	Empty bool `json:"empty,omitempty"`
}

// Option configures Summarize.
type Option func(*options)

type options struct {
	shareURL string
}

// WithShareURL overrides DefaultShareURL.
func WithShareURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.shareURL = url
		}
	}
}

// Summarize computes totals, tier and texts for history.
func Summarize(history []domain.ResponseRecord, opts ...Option) Summary {
	o := options{shareURL: DefaultShareURL}
	for _, opt := range opts {
		opt(&o)
	}

	var s Summary
	for _, r := range history {
		s.Stars += r.Stars
	}
	s.Possible = domain.MaxStars * len(history)
	if s.Possible == 0 {
		s.Empty = true
	} else {
		s.Percentage = 100 * float64(s.Stars) / float64(s.Possible)
	}
	s.Tier = TierFor(s.Percentage)
	s.Message = message(s.Tier, s.Stars, s.Possible)
	s.ShareText = fmt.Sprintf("%s %d/%d stars. %s", shareLead(s.Tier), s.Stars, s.Possible, o.shareURL)
	return s
}

func message(t Tier, stars, possible int) string {
	switch t {
	case TierTop:
		return fmt.Sprintf("you got %d/%d stars. you are a life saver!", stars, possible)
	case TierMid:
		return fmt.Sprintf("not bad, you scored %d/%d stars. thanks for saving me a little time.", stars, possible)
	default:
		return fmt.Sprintf("well, you got %d/%d stars. thanks for nothing.", stars, possible)
	}
}

func shareLead(t Tier) string {
	switch t {
	case TierTop:
		return "i saved an ai some time today!"
	case TierMid:
		return "i kinda helped an ai today."
	default:
		return "i wasted an ai's time today."
	}
}
