package provider

import (
	"reflect"
	"testing"
)

func TestEncodeNumbered(t *testing.T) {
	got := EncodeNumbered([]string{"alpha", "beta", "gamma"})
	want := "[1] alpha\n[2] beta\n[3] gamma"
	if got != want {
		t.Errorf("EncodeNumbered = %q, want %q", got, want)
	}
}

func TestMarkers_Decode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
		out  []string
	}{
		{
			name: "bracket markers",
			raw:  "[1] bonjour\n[2] merci\n[3] au revoir",
			want: 3,
			out:  []string{"bonjour", "merci", "au revoir"},
		},
		{
			name: "legacy dot numbering",
			raw:  "1. bonjour\n2. merci",
			want: 2,
			out:  []string{"bonjour", "merci"},
		},
		{
			name: "legacy paren numbering",
			raw:  "1) bonjour\n2) merci",
			want: 2,
			out:  []string{"bonjour", "merci"},
		},
		{
			name: "multiline html segment",
			raw:  "[1] <p>ligne un\nligne deux</p>\n[2] simple",
			want: 2,
			out:  []string{"<p>ligne un\nligne deux</p>", "simple"},
		},
		{
			name: "skipped marker pads with empty",
			raw:  "[1] foo\n[3] bar",
			want: 3,
			out:  []string{"foo", "bar", ""},
		},
		{
			name: "surplus segments truncated",
			raw:  "[1] a\n[2] b\n[3] c",
			want: 2,
			out:  []string{"a", "b"},
		},
		{
			name: "no markers at all",
			raw:  "  une seule traduction  ",
			want: 1,
			out:  []string{"une seule traduction"},
		},
		{
			name: "no markers multiple expected",
			raw:  "une seule traduction",
			want: 3,
			out:  []string{"une seule traduction", "", ""},
		},
		{
			name: "empty response",
			raw:  "   ",
			want: 2,
			out:  []string{"", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Markers{}.Decode(tt.raw, tt.want)
			if !reflect.DeepEqual(got, tt.out) {
				t.Errorf("Decode(%q, %d) = %v, want %v", tt.raw, tt.want, got, tt.out)
			}
		})
	}
}

func TestMarkers_SegmentsInMarkerOrderNotValue(t *testing.T) {
	// Reordered marker values still decode positionally.
	got := Markers{}.Decode("[2] second\n[1] first", 2)
	want := []string{"second", "first"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %v, want %v (segments follow marker order)", got, want)
	}
}

func TestPassthrough_Decode(t *testing.T) {
	got := Passthrough{}.Decode("  <div>bonjour</div>\n", 1)
	want := []string{"<div>bonjour</div>"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %v, want %v", got, want)
	}
}
