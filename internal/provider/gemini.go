package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"feedtrans/internal/languages"
)

// geminiClient translates through the Gemini API. Gemini reports no cache
// split, so all prompt tokens count as misses.
type geminiClient struct {
	client  *genai.Client
	model   string
	prompts languages.PromptSet
	stats   *Stats
	delay   time.Duration
}

func newGeminiClient(ctx context.Context, cfg *Config, prompts languages.PromptSet) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	model := geminiModel
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &geminiClient{
		client:  client,
		model:   model,
		prompts: prompts,
		stats:   cfg.Stats,
		delay:   baseDelay,
	}, nil
}

func (c *geminiClient) Name() string { return "gemini" }

func (c *geminiClient) Translate(ctx context.Context, req Request) (*Result, error) {
	if len(req.Texts) == 0 {
		return &Result{}, nil
	}

	single := req.Markup || len(req.Texts) == 1
	system := c.prompts.Batch
	user := EncodeNumbered(req.Texts)
	if single {
		system = c.prompts.Single
		user = req.Texts[0]
	}

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](temperature),
		MaxOutputTokens:   maxTokens,
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), config)
		if err == nil {
			return c.decode(resp, len(req.Texts), single), nil
		}
		lastErr = err

		if !geminiRetryable(err) {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		if attempt == maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.delay << attempt):
		}
	}
	return nil, fmt.Errorf("gemini: %w", lastErr)
}

func (c *geminiClient) decode(resp *genai.GenerateContentResponse, want int, single bool) *Result {
	var dec Decoder = Markers{}
	if single {
		dec = Passthrough{}
	}

	var usage Usage
	if m := resp.UsageMetadata; m != nil {
		usage.MissTokens = int(m.PromptTokenCount)
		usage.OutputTokens = int(m.CandidatesTokenCount)
	}
	c.stats.add(usage)

	return &Result{
		Translations: dec.Decode(resp.Text(), want),
		Usage:        usage,
	}
}

func geminiRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return true
}
