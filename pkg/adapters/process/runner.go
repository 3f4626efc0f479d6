// Package process scores responses by running an external command.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/giveaibreak/pkg/domain"
)

// DefaultTimeout bounds one scoring run.
const DefaultTimeout = 30 * time.Second

// EnvPrefix prefixes the environment variables passed to the command.
const EnvPrefix = "GIVEAIBREAK_ARG_"

// ErrBadOutput is returned when the command does not print a score.
var ErrBadOutput = errors.New("scorer produced no score")

// Request is written as JSON to the command's stdin.
type Request struct {
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Variation   domain.Variation `json:"variation"`
	Keywords    []string         `json:"keywords,omitempty"`
	Response    string           `json:"response"`
}

// Scorer implements ports.Scorer by running a configured command.
//
// The request is available both as JSON on stdin and as GIVEAIBREAK_ARG_*
// environment variables. Values are never passed as command-line flags.
// The command must print {"message": "...", "stars": n} on stdout.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer for cfg.
func NewScorer(cfg Config) *Scorer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = Duration(DefaultTimeout)
	}
	return &Scorer{cfg: cfg}
}

// Score runs the command once.
func (s *Scorer) Score(ctx context.Context, def domain.PromptDefinition, variation domain.Variation, response string) (domain.Score, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Timeout))
	defer cancel()

	req := Request{
		Slug:        def.Slug,
		Description: def.Description,
		Variation:   variation,
		Keywords:    def.Keywords,
		Response:    response,
	}
	input, err := json.Marshal(req)
	if err != nil {
		return domain.Score{}, fmt.Errorf("failed to marshal scorer request: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.cfg.Command, s.cfg.Args...)
	cmd.Dir = s.cfg.Dir
	cmd.Env = append(cmd.Environ(), s.env(req)...)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return domain.Score{}, fmt.Errorf("scorer execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseScore(stdout.Bytes())
}

func (s *Scorer) env(req Request) []string {
	env := make([]string, 0, len(s.cfg.Environment)+6)
	for k, v := range s.cfg.Environment {
		env = append(env, k+"="+v)
	}
	keywords, _ := json.Marshal(req.Keywords)
	return append(env,
		EnvPrefix+"SLUG="+req.Slug,
		EnvPrefix+"DESCRIPTION="+req.Description,
		EnvPrefix+"SENDER="+req.Variation.Sender,
		EnvPrefix+"MESSAGE="+req.Variation.Message,
		EnvPrefix+"KEYWORDS="+string(keywords),
		EnvPrefix+"RESPONSE="+req.Response,
	)
}

// parseScore reads the last JSON object printed by the command, so scripts may log before it.
func parseScore(out []byte) (domain.Score, error) {
	trimmed := strings.TrimSpace(string(out))
	if i := strings.LastIndex(trimmed, "\n{"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if !strings.HasPrefix(trimmed, "{") {
		return domain.Score{}, fmt.Errorf("%w: %q", ErrBadOutput, trimmed)
	}

	var score domain.Score
	if err := json.Unmarshal([]byte(trimmed), &score); err != nil {
		return domain.Score{}, fmt.Errorf("%w: %w", ErrBadOutput, err)
	}
	score.Stars = domain.ClampStars(score.Stars)
	return score, nil
}
