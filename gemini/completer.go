// Package gemini implements revise.Completer using Google Gemini.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/revise"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Generation defaults.
const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4096
)

// Ensure Completer implements revise.Completer at compile time.
var _ revise.Completer = (*Completer)(nil)

// Completer implements revise.Completer using Google Gemini.
type Completer struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	limiter     *rate.Limiter
}

// Option configures a Completer.
type Option func(*Completer)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Completer) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(c *Completer) {
		c.temperature = t
	}
}

// WithMaxTokens caps the length of each completion.
func WithMaxTokens(n int32) Option {
	return func(c *Completer) {
		c.maxTokens = n
	}
}

// WithRateLimit allows at most rps requests per second, without bursting.
// Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Completer) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewCompleter creates a new Completer.
func NewCompleter(client *genai.Client, opts ...Option) *Completer {
	c := &Completer{
		client:      client,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Completer) Model() string {
	return c.model
}

// Complete sends a single-turn request and returns the text of the first
// candidate.
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	if strings.TrimSpace(user) == "" {
		return "", revise.Errorf(revise.EINVALID, "prompt required")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: user}},
		}},
		BuildConfig(system, c.temperature, c.maxTokens),
	)
	if err != nil {
		return "", revise.Errorf(revise.EUPSTREAM, "gemini request failed: %v", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", revise.Errorf(revise.EUPSTREAM, "gemini returned no candidates")
	}

	text := result.Text()
	if text == "" {
		return "", revise.Errorf(revise.EUPSTREAM, "gemini returned no text")
	}
	return text, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
// An empty system prompt sends no system instruction.
func BuildConfig(system string, temperature float32, maxTokens int32) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = maxTokens
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	return config
}
