// Package provider executes translation requests against remote completion
// APIs. It handles prompt selection, numbered-list encoding and decoding of
// multi-text batches, retry with backoff, and per-job usage accounting.
//
// Three providers are supported: DeepSeek and OpenAI through their
// chat-completion endpoints (both OpenAI wire compatible), and Gemini
// through the genai SDK.
package provider

import (
	"context"
	"fmt"
	"sync"

	"feedtrans/internal/languages"
	"feedtrans/internal/pricing"
)

const (
	// DeepSeek exposes no meaningful rate limit, so requests run under a
	// wide fixed ceiling instead of a ramp.
	DeepSeekMaxParallel = 300

	temperature = 0.1
	maxTokens   = 8192

	deepSeekBaseURL = "https://api.deepseek.com/v1"
	deepSeekModel   = "deepseek-chat"
	openAIModel     = "gpt-4o-mini"
	geminiModel     = "gemini-2.0-flash"
)

// Request is one translation call: either a packed plain-text batch or a
// lone (possibly markup) text.
type Request struct {
	Texts  []string
	Markup bool
}

// Result carries exactly one translation per requested text, in order.
type Result struct {
	Translations []string
	Usage        Usage
}

// Usage is the token accounting of a single call. Providers that expose a
// prompt cache split input into hit and miss; others report everything as
// miss.
type Usage struct {
	HitTokens    int
	MissTokens   int
	OutputTokens int
}

// Translator executes one translation request. Implementations are safe for
// concurrent use.
type Translator interface {
	Translate(ctx context.Context, req Request) (*Result, error)
	Name() string
}

// Config selects and parameterizes a provider for one job.
type Config struct {
	Provider string // deepseek, openai or gemini
	APIKey   string
	Language string
	Tier     int    // OpenAI rate-limit tier (1-5)
	Model    string // optional model override
	BaseURL  string // optional endpoint override, used by tests
	Stats    *Stats // job-scoped usage accumulator, required
	Registry *languages.Registry
}

// Providers lists the valid Config.Provider values.
func Providers() []string {
	return []string{"deepseek", "openai", "gemini"}
}

// New creates the translator for cfg. The language prompt set is resolved
// here so an unsupported language fails before any request is made.
func New(ctx context.Context, cfg *Config) (Translator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", cfg.Provider)
	}
	if cfg.Stats == nil {
		return nil, fmt.Errorf("%s: usage stats accumulator is required", cfg.Provider)
	}
	reg := cfg.Registry
	if reg == nil {
		var err error
		reg, err = languages.NewRegistry()
		if err != nil {
			return nil, err
		}
	}
	prompts, err := reg.Prompts(cfg.Language)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case "deepseek":
		return newChatClient(cfg, "deepseek", deepSeekBaseURL, deepSeekModel, nil, prompts), nil
	case "openai":
		tier := TierFor(cfg.Tier)
		return newChatClient(cfg, "openai", "", openAIModel, tier.NewLimiter(), prompts), nil
	case "gemini":
		return newGeminiClient(ctx, cfg, prompts)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// Stats accumulates usage across all calls of one job. It is owned by the
// job orchestrator and injected into the translator, never shared between
// jobs.
type Stats struct {
	mu       sync.Mutex
	hit      int
	miss     int
	output   int
	requests int
}

func (s *Stats) add(u Usage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hit += u.HitTokens
	s.miss += u.MissTokens
	s.output += u.OutputTokens
	s.requests++
}

// Snapshot is a point-in-time copy of the accumulated usage with the
// derived cache-hit rate and estimated cost for the given provider.
type Snapshot struct {
	HitTokens     int     `json:"totalHitTokens"`
	MissTokens    int     `json:"totalMissTokens"`
	OutputTokens  int     `json:"totalOutputTokens"`
	RequestCount  int     `json:"requestCount"`
	HitRate       float64 `json:"hitRate"`
	EstimatedCost float64 `json:"estimatedCost"`
}

// Snapshot returns the current totals priced for provider.
func (s *Stats) Snapshot(provider string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		HitTokens:    s.hit,
		MissTokens:   s.miss,
		OutputTokens: s.output,
		RequestCount: s.requests,
	}
	if in := s.hit + s.miss; in > 0 {
		snap.HitRate = float64(s.hit) / float64(in) * 100
	}
	snap.EstimatedCost = pricing.For(provider).Cost(s.hit, s.miss, s.output)
	return snap
}
