package pricing

import (
	"math"
	"testing"
)

func TestCost_CacheAwareProvider(t *testing.T) {
	p := For("deepseek")

	// 1M hit + 1M miss + 1M output at the DeepSeek card.
	got := p.Cost(1_000_000, 1_000_000, 1_000_000)
	want := 0.028 + 0.28 + 0.42
	if math.Abs(got-want) > 0.0001 {
		t.Errorf("Cost = %f, want %f", got, want)
	}
}

func TestCost_FlatProvider(t *testing.T) {
	p := For("openai")

	// OpenAI has no cache split, hit+miss both bill as input.
	got := p.Cost(500_000, 500_000, 1_000_000)
	want := 0.15 + 0.60
	if math.Abs(got-want) > 0.0001 {
		t.Errorf("Cost = %f, want %f", got, want)
	}
}

func TestCost_UnknownProvider(t *testing.T) {
	if got := For("nope").Cost(1000, 1000, 1000); got != 0 {
		t.Errorf("Unknown provider cost = %f, want 0", got)
	}
}

func TestCost_Zero(t *testing.T) {
	if got := For("deepseek").Cost(0, 0, 0); got != 0 {
		t.Errorf("Zero usage cost = %f, want 0", got)
	}
}

func TestEstimateRun(t *testing.T) {
	est := EstimateRun("deepseek", 1000, 400_000)

	if est.InputTokens != 100_000 {
		t.Errorf("InputTokens = %d, want 100000", est.InputTokens)
	}
	if est.OutputTokens != est.InputTokens {
		t.Errorf("OutputTokens = %d, want same as input", est.OutputTokens)
	}
	if est.Cost <= 0 {
		t.Errorf("Cost = %f, want > 0", est.Cost)
	}
	if est.Minutes != 1 {
		t.Errorf("Minutes = %d, want 1 for 1000 lines", est.Minutes)
	}
}

func TestEstimateRun_RoundsTokensUp(t *testing.T) {
	est := EstimateRun("openai", 1, 5)
	if est.InputTokens != 2 {
		t.Errorf("InputTokens = %d, want 2 for 5 chars", est.InputTokens)
	}
}
