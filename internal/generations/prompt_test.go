package generations

import "testing"

func TestComposePrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		base  string
		style *StyleParameters
		want  string
	}{
		{
			name: "nil style returns base unchanged",
			base: "a cat",
			want: "a cat",
		},
		{
			name:  "empty style returns base unchanged",
			base:  "a cat",
			style: &StyleParameters{},
			want:  "a cat",
		},
		{
			name:  "dimensions only returns base unchanged",
			base:  "a cat",
			style: &StyleParameters{Width: 512, Height: 512, Quality: QualityHigh},
			want:  "a cat",
		},
		{
			name:  "style and mood",
			base:  "a cat",
			style: &StyleParameters{Style: "realistic", Mood: "calm"},
			want:  "a cat, in realistic style, calm mood",
		},
		{
			name: "all clauses in fixed order",
			base: "a city",
			style: &StyleParameters{
				Style:       "watercolor",
				ColorScheme: "pastel",
				Mood:        "dreamy",
				Modifiers:   []string{"wide angle", "high detail"},
			},
			want: "a city, in watercolor style, with pastel color scheme, dreamy mood, wide angle, high detail",
		},
		{
			name:  "color scheme only",
			base:  "a forest",
			style: &StyleParameters{ColorScheme: "monochrome"},
			want:  "a forest, with monochrome color scheme",
		},
		{
			name:  "modifiers only, verbatim",
			base:  "a ship",
			style: &StyleParameters{Modifiers: []string{"8k", "cinematic lighting"}},
			want:  "a ship, 8k, cinematic lighting",
		},
		{
			name:  "empty modifier entries skipped",
			base:  "a ship",
			style: &StyleParameters{Modifiers: []string{"", "8k", ""}},
			want:  "a ship, 8k",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ComposePrompt(tt.base, tt.style); got != tt.want {
				t.Fatalf("ComposePrompt(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestComposePromptIsDeterministic(t *testing.T) {
	t.Parallel()

	style := &StyleParameters{Style: "oil painting", Mood: "somber", Modifiers: []string{"dusk"}}
	first := ComposePrompt("a harbor", style)
	second := ComposePrompt("a harbor", style)
	if first != second {
		t.Fatalf("expected identical output, got %q then %q", first, second)
	}
}
