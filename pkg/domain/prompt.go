package domain

// Variation is the framing a prompt is presented with: who is asking and what they said.
type Variation struct {
	Sender      string `json:"sender" yaml:"sender" mapstructure:"sender"`
	AvatarColor string `json:"avatarColor" yaml:"avatar_color" mapstructure:"avatar_color"`
	Message     string `json:"message" yaml:"message" mapstructure:"message"`
}

// Initial returns the first letter of the sender, used as the avatar glyph.
func (v Variation) Initial() string {
	for _, r := range v.Sender {
		return string(r)
	}
	return "?"
}

// Prompt is a single request shown on a prompt screen.
// It is created by the remote service and never modified on the client.
type Prompt struct {
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	Variation      Variation `json:"variation"`
	VariationIndex int       `json:"variationIndex"`
}

// PromptDefinition is the server-side catalog entry a Prompt is built from.
type PromptDefinition struct {
	Slug        string      `json:"slug" yaml:"slug" mapstructure:"slug"`
	Description string      `json:"description" yaml:"description" mapstructure:"description"`
	Variations  []Variation `json:"variations" yaml:"variations" mapstructure:"variations"`

	// Keywords drive the heuristic scorer of the stub service.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty" mapstructure:"keywords"`
}

// Instantiate builds the Prompt for the given variation index.
// Out-of-range indexes wrap around; a definition without variations yields an empty Variation.
func (d PromptDefinition) Instantiate(index int) Prompt {
	p := Prompt{
		Slug:        d.Slug,
		Description: d.Description,
	}
	if n := len(d.Variations); n > 0 {
		index = ((index % n) + n) % n
		p.Variation = d.Variations[index]
		p.VariationIndex = index
	}
	return p
}

// Submission is the body of a scoring request.
type Submission struct {
	Response       string `json:"response"`
	VariationIndex int    `json:"variationIndex"`
}

// Score is the scoring service's verdict on a submission.
type Score struct {
	Message string `json:"message"`
	Stars   int    `json:"stars"`
}
