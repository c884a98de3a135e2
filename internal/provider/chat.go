package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"feedtrans/internal/languages"
)

const (
	maxRetries = 3
	baseDelay  = time.Second
)

// chatClient talks to an OpenAI wire-compatible chat-completion endpoint.
// It serves both the OpenAI and DeepSeek providers; only base URL, model
// and rate limiting differ.
type chatClient struct {
	name    string
	client  *openai.Client
	model   string
	prompts languages.PromptSet
	stats   *Stats
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	hints   *retryHints

	// backoff base, shortened by tests
	delay time.Duration
}

func newChatClient(cfg *Config, name, baseURL, model string, limiter *rate.Limiter, prompts languages.PromptSet) *chatClient {
	hints := &retryHints{}
	occ := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		occ.BaseURL = cfg.BaseURL
	} else if baseURL != "" {
		occ.BaseURL = baseURL
	}
	occ.HTTPClient = &http.Client{Transport: hints.wrap(http.DefaultTransport)}

	if cfg.Model != "" {
		model = cfg.Model
	}

	return &chatClient{
		name:    name,
		client:  openai.NewClientWithConfig(occ),
		model:   model,
		prompts: prompts,
		stats:   cfg.Stats,
		limiter: limiter,
		hints:   hints,
		delay:   baseDelay,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: name,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 6
			},
			Timeout: 30 * time.Second,
		}),
	}
}

func (c *chatClient) Name() string { return c.name }

// Translate sends one batch and returns exactly one translation per input
// text. Transient failures (429, 5xx, malformed bodies, network resets)
// retry up to maxRetries with exponential backoff; a Retry-After hint from
// the provider overrides the computed delay. The last error is returned
// once retries are exhausted.
func (c *chatClient) Translate(ctx context.Context, req Request) (*Result, error) {
	if len(req.Texts) == 0 {
		return &Result{}, nil
	}

	single := req.Markup || len(req.Texts) == 1
	ccr := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt(single)},
			{Role: openai.ChatMessageRoleUser, Content: c.userContent(req.Texts, single)},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		v, err := c.breaker.Execute(func() (interface{}, error) {
			return c.client.CreateChatCompletion(ctx, ccr)
		})
		if err == nil {
			return c.decode(v.(openai.ChatCompletionResponse), req.Texts, single)
		}
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) {
			// Endpoint is melting down, fail the batch fast instead of
			// stacking retries on top of it.
			return nil, fmt.Errorf("%s: circuit open: %w", c.name, err)
		}
		if !retryable(err) {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		if attempt == maxRetries-1 {
			break
		}

		delay := c.delay << attempt
		if hint := c.hints.take(); hint > 0 {
			delay = hint
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("%s: %w", c.name, lastErr)
}

func (c *chatClient) systemPrompt(single bool) string {
	if single {
		return c.prompts.Single
	}
	return c.prompts.Batch
}

func (c *chatClient) userContent(texts []string, single bool) string {
	if single {
		return texts[0]
	}
	return EncodeNumbered(texts)
}

func (c *chatClient) decode(resp openai.ChatCompletionResponse, texts []string, single bool) (*Result, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: no completion choices returned", c.name)
	}
	content := resp.Choices[0].Message.Content

	var dec Decoder = Markers{}
	if single {
		dec = Passthrough{}
	}

	usage := Usage{OutputTokens: resp.Usage.CompletionTokens}
	if d := resp.Usage.PromptTokensDetails; d != nil {
		usage.HitTokens = d.CachedTokens
	}
	usage.MissTokens = resp.Usage.PromptTokens - usage.HitTokens
	c.stats.add(usage)

	return &Result{
		Translations: dec.Decode(content, len(texts)),
		Usage:        usage,
	}, nil
}

// retryable classifies transient provider failures: rate limits, server
// errors, malformed response bodies (HTML error pages misrouted through a
// proxy decode as JSON syntax errors) and network resets.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// retryHints captures Retry-After headers from 429 responses at the
// transport level, since the client library does not expose response
// headers alongside its errors. The most recent hint wins.
type retryHints struct {
	mu    sync.Mutex
	after time.Duration
}

func (h *retryHints) wrap(base http.RoundTripper) http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		resp, err := base.RoundTrip(req)
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
				h.mu.Lock()
				h.after = time.Duration(secs) * time.Second
				h.mu.Unlock()
			}
		}
		return resp, err
	})
}

func (h *retryHints) take() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	d := h.after
	h.after = 0
	return d
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
