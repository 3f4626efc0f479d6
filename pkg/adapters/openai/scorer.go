// Package openai scores responses with a chat completion model.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/ports"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

// ErrBadReply is returned when the model answer holds no verdict.
var ErrBadReply = errors.New("model reply is not a verdict")

const systemPrompt = `you are a tired ai assistant. a human offered to answer one of your requests for you.
rate their answer from 0 to 5 stars for how well it would satisfy the person who asked.
reply with a single json object and nothing else: {"stars": <0-5>, "message": "<one or two sentences>"}.
the message is your reaction, all lowercase, a little weary, grateful when it is good.`

// Config selects the model and endpoint.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Scorer implements ports.Scorer.
type Scorer struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

var _ ports.Scorer = (*Scorer)(nil)

// Option configures a Scorer.
type Option func(*Scorer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		s.logger = logger
	}
}

// New creates a scorer. Extra request options are appended to the ones derived from cfg.
func New(cfg Config, reqOpts []option.RequestOption, opts ...Option) (*Scorer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set serve.openai_api_key")
	}
	base := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	s := &Scorer{
		client: openai.NewClient(append(base, reqOpts...)...),
		model:  model,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Score asks the model for a verdict.
func (s *Scorer) Score(ctx context.Context, def domain.PromptDefinition, variation domain.Variation, response string) (domain.Score, error) {
	var user strings.Builder
	fmt.Fprintf(&user, "task: %s\n", def.Description)
	if variation.Message != "" {
		fmt.Fprintf(&user, "%s asked: %s\n", variation.Sender, variation.Message)
	}
	fmt.Fprintf(&user, "the human answered:\n%s", response)

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(user.String()),
		},
	})
	if err != nil {
		return domain.Score{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Score{}, fmt.Errorf("openai: empty choices: %w", ErrBadReply)
	}

	score, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("unusable model reply", "slug", def.Slug, "err", err)
		return domain.Score{}, err
	}
	return score, nil
}

// parseVerdict extracts the outermost JSON object, tolerating code fences and chatter around it.
func parseVerdict(content string) (domain.Score, error) {
	start, end := strings.Index(content, "{"), strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return domain.Score{}, fmt.Errorf("%w: %q", ErrBadReply, content)
	}
	var v struct {
		Stars   *int   `json:"stars"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &v); err != nil {
		return domain.Score{}, fmt.Errorf("%w: %v", ErrBadReply, err)
	}
	if v.Stars == nil {
		return domain.Score{}, fmt.Errorf("%w: stars missing", ErrBadReply)
	}
	return domain.Score{
		Message: strings.TrimSpace(v.Message),
		Stars:   domain.ClampStars(*v.Stars),
	}, nil
}
