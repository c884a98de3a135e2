package provider

import (
	"time"

	"golang.org/x/time/rate"
)

// Ramp describes how the concurrency ceiling grows for a tier: start at
// Initial and add Step every Delay until the tier maximum.
type Ramp struct {
	Initial int
	Delay   time.Duration
	Step    int
}

// TierLimits are the OpenAI account-tier quotas for gpt-4o-mini and the
// parallelism derived from them. MaxParallel targets roughly 80% of the
// tier RPM at ~500ms per request, leaving headroom for retries.
type TierLimits struct {
	RPM         int
	TPM         int
	MaxParallel int
	Ramp        Ramp
}

var tierLimits = map[int]TierLimits{
	1: {RPM: 500, TPM: 200_000, MaxParallel: 8, Ramp: Ramp{Initial: 3, Delay: 5 * time.Second, Step: 2}},
	2: {RPM: 500, TPM: 2_000_000, MaxParallel: 10, Ramp: Ramp{Initial: 4, Delay: 4 * time.Second, Step: 3}},
	3: {RPM: 5000, TPM: 4_000_000, MaxParallel: 80, Ramp: Ramp{Initial: 20, Delay: 2 * time.Second, Step: 20}},
	4: {RPM: 10_000, TPM: 10_000_000, MaxParallel: 150, Ramp: Ramp{Initial: 40, Delay: 1500 * time.Millisecond, Step: 40}},
	5: {RPM: 30_000, TPM: 150_000_000, MaxParallel: 400, Ramp: Ramp{Initial: 80, Delay: time.Second, Step: 80}},
}

// TierFor returns the limits for an OpenAI tier, defaulting to tier 1 for
// unknown values.
func TierFor(tier int) TierLimits {
	if t, ok := tierLimits[tier]; ok {
		return t
	}
	return tierLimits[1]
}

// NewLimiter builds a request-rate limiter at 80% of the tier RPM. The
// burst matches MaxParallel so a full complement of in-flight workers can
// start without artificial serialization.
func (t TierLimits) NewLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(t.RPM)*0.8/60.0), t.MaxParallel)
}
