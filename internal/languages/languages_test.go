package languages

import (
	"strings"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	for _, lang := range All() {
		ps, err := r.Prompts(lang.Code)
		if err != nil {
			t.Errorf("Prompts(%s) failed: %v", lang.Code, err)
			continue
		}
		if ps.Single == "" {
			t.Errorf("Language %s has empty single prompt", lang.Code)
		}
		if ps.Batch == "" {
			t.Errorf("Language %s has empty batch prompt", lang.Code)
		}
		if !strings.Contains(ps.Batch, "[1]") {
			t.Errorf("Batch prompt for %s does not mention the [k] marker format", lang.Code)
		}
	}
}

func TestPrompts_UnsupportedLanguage(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	if _, err := r.Prompts("xx"); err == nil {
		t.Error("Expected error for unsupported language code")
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"fr", true},
		{"en", true},
		{"fi", true},
		{"ko", true},
		{"xx", false},
		{"", false},
		{"FR", false},
	}

	for _, tt := range tests {
		t.Run("code_"+tt.code, func(t *testing.T) {
			if got := Supported(tt.code); got != tt.want {
				t.Errorf("Supported(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestAll_SortedAndComplete(t *testing.T) {
	all := All()
	if len(all) != 14 {
		t.Errorf("Expected 14 languages, got %d", len(all))
	}

	for i := 1; i < len(all); i++ {
		if all[i-1].Code >= all[i].Code {
			t.Errorf("Languages not sorted: %s before %s", all[i-1].Code, all[i].Code)
		}
	}
}

func TestBatchPrompt_MentionsLanguageName(t *testing.T) {
	lang, ok := Get("fr")
	if !ok {
		t.Fatal("Language fr not found")
	}

	prompt := batchPrompt(lang)
	if !strings.Contains(prompt, "French") {
		t.Error("Batch prompt does not name the target language")
	}
	if !strings.Contains(prompt, "word by word") {
		t.Error("Batch prompt does not carry the handle translation rule")
	}
}
