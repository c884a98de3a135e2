// Package languages holds the supported target languages and the system
// prompts sent to the completion APIs. Prompts are resolved and validated
// when the registry is built, so an unsupported or incompletely configured
// language fails before any translation work starts.
package languages

import (
	"fmt"
	"sort"
)

// Language describes one supported target language.
type Language struct {
	Code       string
	Name       string
	NativeName string
}

var languages = map[string]Language{
	"fr": {Code: "fr", Name: "French", NativeName: "Français"},
	"en": {Code: "en", Name: "English", NativeName: "English"},
	"de": {Code: "de", Name: "German", NativeName: "Deutsch"},
	"es": {Code: "es", Name: "Spanish", NativeName: "Español"},
	"it": {Code: "it", Name: "Italian", NativeName: "Italiano"},
	"pt": {Code: "pt", Name: "Portuguese", NativeName: "Português"},
	"nl": {Code: "nl", Name: "Dutch", NativeName: "Nederlands"},
	"pl": {Code: "pl", Name: "Polish", NativeName: "Polski"},
	"sv": {Code: "sv", Name: "Swedish", NativeName: "Svenska"},
	"da": {Code: "da", Name: "Danish", NativeName: "Dansk"},
	"fi": {Code: "fi", Name: "Finnish", NativeName: "Suomi"},
	"zh": {Code: "zh", Name: "Simplified Chinese", NativeName: "简体中文"},
	"ja": {Code: "ja", Name: "Japanese", NativeName: "日本語"},
	"ko": {Code: "ko", Name: "Korean", NativeName: "한국어"},
}

// PromptSet carries the two prompt variants for one target language.
// Single is used for lone texts and markup cells, Batch for numbered
// multi-text requests.
type PromptSet struct {
	Single string
	Batch  string
}

// Registry maps language codes to their validated prompt sets.
type Registry struct {
	prompts map[string]PromptSet
}

// NewRegistry builds the prompt registry for every supported language.
// It errors if any language is missing a prompt variant, so configuration
// mistakes surface at startup rather than mid-job.
func NewRegistry() (*Registry, error) {
	r := &Registry{prompts: make(map[string]PromptSet, len(languages))}
	for code, lang := range languages {
		single, ok := systemPrompts[code]
		if !ok {
			return nil, fmt.Errorf("language %s: no system prompt configured", code)
		}
		r.prompts[code] = PromptSet{
			Single: single,
			Batch:  batchPrompt(lang),
		}
	}
	return r, nil
}

// Prompts returns the prompt set for a language code.
func (r *Registry) Prompts(code string) (PromptSet, error) {
	ps, ok := r.prompts[code]
	if !ok {
		return PromptSet{}, fmt.Errorf("unsupported target language: %s", code)
	}
	return ps, nil
}

// Supported reports whether a language code can be translated into.
func Supported(code string) bool {
	_, ok := languages[code]
	return ok
}

// Get returns the language for a code.
func Get(code string) (Language, bool) {
	lang, ok := languages[code]
	return lang, ok
}

// All returns every supported language sorted by code.
func All() []Language {
	out := make([]Language, 0, len(languages))
	for _, lang := range languages {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
