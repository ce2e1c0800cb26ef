package generate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hitoshi/newsletterai/internal/model"
)

func TestTopicPrompt_AppliesDefaults(t *testing.T) {
	p := TopicPrompt("Quantum computing", Style{})

	for _, want := range []string{
		`"Quantum computing"`,
		"Use a Professional tone",
		"Follow a Standard structure",
		"The app's theme is Modern",
		"1. A catchy H1 Headline.",
		"Call to Action",
		"DO NOT include any metadata",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("プロンプトに %q が含まれていない", want)
		}
	}
}

func TestTopicPrompt_UsesGivenStyle(t *testing.T) {
	p := TopicPrompt("AI", Style{Layout: "Minimalist", Tone: "Witty", Theme: "Retro"})

	for _, want := range []string{"Use a Witty tone", "Follow a Minimalist structure", "theme is Retro"} {
		if !strings.Contains(p, want) {
			t.Errorf("プロンプトに %q が含まれていない", want)
		}
	}
}

func TestArticlesContext_FormatsAndSeparates(t *testing.T) {
	got := ArticlesContext([]model.Article{
		{Title: "A", Source: "Feed1", Summary: "sa", Link: "https://a"},
		{Title: "B", Source: "Feed2", Summary: "sb", Link: "https://b"},
	})

	want := "Title: A\nSource: Feed1\nSummary: sa\nLink: https://a" +
		"\n\n---\n\n" +
		"Title: B\nSource: Feed2\nSummary: sb\nLink: https://b"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestDigestPrompt_ContainsRulesAndArticles(t *testing.T) {
	p := DigestPrompt([]model.Article{{Title: "Go 1.25", Source: "Go Blog", Summary: "s", Link: "https://go.dev"}}, Style{Tone: "Casual"})

	for _, want := range []string{
		`1. Use the "Casual" tone.`,
		`2. Follow a "Standard" layout style.`,
		"(max 8)",
		"Articles:\nTitle: Go 1.25",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("プロンプトに %q が含まれていない", want)
		}
	}
}

func TestSuggestPrompt_DefaultContext(t *testing.T) {
	if p := SuggestPrompt("  "); !strings.Contains(p, `"General Technology and Business trends"`) {
		t.Errorf("空のトピックではデフォルトの文脈を使うべき: %s", p)
	}
	if p := SuggestPrompt("Rust"); !strings.Contains(p, `"Rust"`) {
		t.Errorf("指定トピックがプロンプトに含まれていない: %s", p)
	}
}

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"オブジェクト形式", `{"suggestions": ["A", "B"]}`, []string{"A", "B"}},
		{"配列形式", `["X", "Y", "Z"]`, []string{"X", "Y", "Z"}},
		{"本文中の配列", "Here you go:\n```json\n[\"One\", \"Two\"]\n```", []string{"One", "Two"}},
		{"suggestionsが配列でない", `{"suggestions": "A"}`, []string{}},
		{"キーなし", `{"topics": ["A"]}`, []string{}},
		{"解釈不能", "no json here", []string{}},
		{"空文字列", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSuggestions(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSuggestions(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}
