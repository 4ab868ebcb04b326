package hscode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// ErrEmptyDescription is returned for a blank goods description.
var ErrEmptyDescription = errors.New("goods description is required")

var codePattern = regexp.MustCompile(`^[0-9]{4}(\.?[0-9]{2}){0,3}$`)

// Suggestion is one candidate Harmonized System code.
type Suggestion struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options tune the suggester.
type Options struct {
	MaxSuggestions int
	Timeout        time.Duration
}

// Suggester asks a model for HS codes matching a goods description.
type Suggester struct {
	gen    Generator
	opts   Options
	logger zerolog.Logger
}

// New wraps a generator.
func New(gen Generator, opts Options, logger zerolog.Logger) *Suggester {
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Suggester{gen: gen, opts: opts, logger: logger.With().Str("component", "hscode").Logger()}
}

// Suggest returns up to MaxSuggestions codes, most confident first.
func (s *Suggester) Suggest(ctx context.Context, description string) ([]Suggestion, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	text, err := s.gen.Generate(callCtx, buildPrompt(description, s.opts.MaxSuggestions))
	if err != nil {
		return nil, fmt.Errorf("generate hs codes: %w", err)
	}

	out, err := parseSuggestions(text, s.opts.MaxSuggestions)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("description", description).Int("suggestions", len(out)).Msg("hs codes suggested")
	return out, nil
}

func buildPrompt(description string, limit int) string {
	return fmt.Sprintf(`Suggest up to %d Harmonized System (HS) codes for customs declaration of the goods below.
Respond with a JSON array only. Each element: {"code": "6-10 digit HS code", "description": "short heading text", "confidence": number between 0 and 1}.

Goods: %s`, limit, description)
}

func parseSuggestions(text string, limit int) ([]Suggestion, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw []Suggestion
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		var wrapped struct {
			Suggestions []Suggestion `json:"suggestions"`
		}
		if wrapErr := json.Unmarshal([]byte(text), &wrapped); wrapErr != nil {
			return nil, fmt.Errorf("decode hs code suggestions: %w", err)
		}
		raw = wrapped.Suggestions
	}

	out := make([]Suggestion, 0, len(raw))
	for _, sug := range raw {
		sug.Code = strings.TrimSpace(sug.Code)
		if !codePattern.MatchString(sug.Code) {
			continue
		}
		sug.Confidence = clamp(sug.Confidence)
		out = append(out, sug)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// GeminiGenerator calls the Gemini API through google.golang.org/genai.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini client for the given model.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate requests a JSON response for prompt.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty model response")
	}
	return text, nil
}

var _ Generator = (*GeminiGenerator)(nil)
