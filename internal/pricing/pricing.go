// Package pricing holds the fixed per-provider token price tables and the
// pre-run cost estimator.
package pricing

import "math"

// Prices are USD per million tokens. Providers without a prompt cache leave
// the cache fields at zero and bill everything at Input.
type Prices struct {
	Input     float64
	CacheHit  float64
	CacheMiss float64
	Output    float64
}

var table = map[string]Prices{
	"deepseek": {CacheHit: 0.028, CacheMiss: 0.28, Output: 0.42},
	"openai":   {Input: 0.15, Output: 0.60},
	"gemini":   {Input: 0.10, Output: 0.40},
}

// For returns the price table for a provider, or a zero table for unknown
// providers so cost simply reads as 0 rather than failing a job.
func For(provider string) Prices {
	return table[provider]
}

// Cost computes the USD cost of a token count split. For cache-less
// providers hit should be zero and miss carries the full input count.
func (p Prices) Cost(hitTokens, missTokens, outputTokens int) float64 {
	perM := func(tokens int, price float64) float64 {
		return float64(tokens) / 1_000_000 * price
	}
	cost := perM(outputTokens, p.Output)
	if p.CacheHit > 0 || p.CacheMiss > 0 {
		cost += perM(hitTokens, p.CacheHit) + perM(missTokens, p.CacheMiss)
	} else {
		cost += perM(hitTokens+missTokens, p.Input)
	}
	return round4(cost)
}

// Estimate is a rough pre-run projection of tokens, cost and duration.
type Estimate struct {
	Lines        int
	Chars        int
	InputTokens  int
	OutputTokens int
	Cost         float64
	Minutes      int
}

// EstimateRun projects the cost of translating totalChars of source text.
// One token is taken as roughly 4 characters of western text, output volume
// as roughly equal to input, and a 70% cache-hit rate once the prompts warm
// up. Throughput is assumed around 50 lines per second under parallelism.
func EstimateRun(provider string, totalLines, totalChars int) Estimate {
	inputTokens := (totalChars + 3) / 4
	outputTokens := inputTokens

	hit := int(float64(inputTokens) * 0.7)
	miss := inputTokens - hit

	seconds := (totalLines + 49) / 50

	return Estimate{
		Lines:        totalLines,
		Chars:        totalChars,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         For(provider).Cost(hit, miss, outputTokens),
		Minutes:      (seconds + 59) / 60,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
