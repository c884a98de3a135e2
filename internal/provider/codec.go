package provider

import (
	"fmt"
	"regexp"
	"strings"
)

// Decoder extracts the per-text translations from a raw model response.
// Two implementations exist: Passthrough for single-text calls and Markers
// for numbered batches. Keeping this behind an interface isolates the known
// fragility of free-form output parsing and leaves room for a structured
// output mode later.
type Decoder interface {
	Decode(raw string, want int) []string
}

// EncodeNumbered joins texts into the batch request body: one `[k] text`
// line per text, 1-indexed.
func EncodeNumbered(texts []string) string {
	var b strings.Builder
	for i, text := range texts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, text)
	}
	return b.String()
}

// Passthrough treats the whole trimmed response as one translation.
type Passthrough struct{}

func (Passthrough) Decode(raw string, want int) []string {
	var out []string
	if t := strings.TrimSpace(raw); t != "" {
		out = append(out, t)
	}
	return fit(out, want)
}

var (
	markerRe = regexp.MustCompile(`(?:^|\n)\[(\d+)\][ \t]*`)
	legacyRe = regexp.MustCompile(`(?:^|\n)(\d+)[.)][ \t]*`)
)

// Markers splits the response at `[k]` line markers, falling back to the
// legacy `k.` / `k)` numbering when no bracket markers appear. Segments are
// taken in marker order, not by marker value: a model that skips or
// reorders markers yields misaligned output, which is tolerated rather
// than corrected. Missing segments pad with empty strings, surplus ones
// are dropped.
type Markers struct{}

func (Markers) Decode(raw string, want int) []string {
	locs := markerRe.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		locs = legacyRe.FindAllStringIndex(raw, -1)
	}

	var out []string
	if len(locs) == 0 {
		// No numbering at all: the whole body is a single translation.
		if t := strings.TrimSpace(raw); t != "" {
			out = append(out, t)
		}
	} else {
		for i, loc := range locs {
			start := loc[1]
			end := len(raw)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			out = append(out, strings.TrimSpace(raw[start:end]))
		}
	}
	return fit(out, want)
}

func fit(out []string, want int) []string {
	for len(out) < want {
		out = append(out, "")
	}
	return out[:want]
}
