package generate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hitoshi/newsletterai/internal/model"
)

// デフォルトのスタイル設定
const (
	DefaultLayout = "Standard"
	DefaultTone   = "Professional"
	DefaultTheme  = "Modern"

	defaultSuggestContext = "General Technology and Business trends"
)

// articleSeparator はダイジェストプロンプト内の記事区切り。
const articleSeparator = "\n\n---\n\n"

// Style はニュースレターのレイアウト・トーン・テーマ指定。
type Style struct {
	Layout string
	Tone   string
	Theme  string
}

// withDefaults は空のフィールドをデフォルト値で埋めたコピーを返す。
func (s Style) withDefaults() Style {
	if strings.TrimSpace(s.Layout) == "" {
		s.Layout = DefaultLayout
	}
	if strings.TrimSpace(s.Tone) == "" {
		s.Tone = DefaultTone
	}
	if strings.TrimSpace(s.Theme) == "" {
		s.Theme = DefaultTheme
	}
	return s
}

// TopicPrompt はトピックからニュースレターを生成するプロンプトを組み立てる。
func TopicPrompt(topic string, style Style) string {
	style = style.withDefaults()

	var b strings.Builder
	b.WriteString("You are an expert newsletter curator and professional writer.\n")
	fmt.Fprintf(&b, "Create a high-quality, engaging newsletter about: %q.\n\n", topic)

	b.WriteString("ADHERE TO THESE SPECIFIC PARAMETERS:\n")
	fmt.Fprintf(&b, "- TONE: Use a %s tone. Ensure the vocabulary and sentence structure match this style perfectly.\n", style.Tone)
	fmt.Fprintf(&b, "- LAYOUT STYLE: Follow a %s structure.\n", style.Layout)
	b.WriteString("  (Standard = balanced, Minimalist = concise/short, Research = data-heavy/detailed, Storytelling = narrative-driven).\n")
	fmt.Fprintf(&b, "- VISUAL THEME CONTEXT: The app's theme is %s. Use words or analogies that subtly evoke this feeling where appropriate.\n\n", style.Theme)

	b.WriteString("FORMATTING REQUIREMENTS (Markdown):\n")
	b.WriteString("1. A catchy H1 Headline.\n")
	b.WriteString("2. A brief, engaging introduction.\n")
	b.WriteString("3. 3-4 key sections or bullet points with valuable insights.\n")
	b.WriteString("4. A concluding thought.\n")
	b.WriteString("5. A clear \"Call to Action\" (CTA).\n\n")

	b.WriteString("DO NOT include any metadata or self-references like \"Here is your newsletter\". Just the newsletter content.\n")
	return b.String()
}

// ArticlesContext は記事一覧をプロンプト埋め込み用のテキストに整形する。
func ArticlesContext(articles []model.Article) string {
	parts := make([]string, 0, len(articles))
	for _, a := range articles {
		parts = append(parts, fmt.Sprintf("Title: %s\nSource: %s\nSummary: %s\nLink: %s", a.Title, a.Source, a.Summary, a.Link))
	}
	return strings.Join(parts, articleSeparator)
}

// DigestPrompt は記事一覧からダイジェストを生成するプロンプトを組み立てる。
func DigestPrompt(articles []model.Article, style Style) string {
	style = style.withDefaults()

	var b strings.Builder
	b.WriteString("You are an expert newsletter curator. Your task is to create a high-quality, engaging newsletter based on the following curated articles from various RSS feeds.\n\n")

	b.WriteString("Curation Rules:\n")
	fmt.Fprintf(&b, "1. Use the %q tone.\n", style.Tone)
	fmt.Fprintf(&b, "2. Follow a %q layout style.\n", style.Layout)
	b.WriteString("3. Group related articles if possible.\n")
	b.WriteString("4. Include a catchy main title for the newsletter.\n")
	b.WriteString("5. For each article, provide a brief, engaging summary and keep the original link.\n")
	fmt.Fprintf(&b, "6. The theme is %q, so adjust the vocabulary and style accordingly.\n", style.Theme)
	b.WriteString("7. Format everything in clean Markdown.\n")
	b.WriteString("8. If I provided many articles, select the most interesting ones (max 8).\n\n")

	b.WriteString("Articles:\n")
	b.WriteString(ArticlesContext(articles))
	b.WriteString("\n")
	return b.String()
}

// SuggestPrompt はトピック候補を提案させるプロンプトを組み立てる。
func SuggestPrompt(currentTopic string) string {
	topic := strings.TrimSpace(currentTopic)
	if topic == "" {
		topic = defaultSuggestContext
	}

	var b strings.Builder
	b.WriteString("You are a creative content strategist for newsletters.\n")
	fmt.Fprintf(&b, "Suggest 5 unique, trending, or highly engaging newsletter topic ideas based on the current context: %q.\n\n", topic)
	b.WriteString("Guidelines:\n")
	b.WriteString("- If the current context is specific, expand on it with interesting angles.\n")
	b.WriteString("- If it's empty, suggest broadly popular tech/lifestyle/business topics.\n")
	b.WriteString("- Focus on \"click-worthy\" hooks.\n\n")
	b.WriteString("Return the suggestions as a JSON object with a key \"suggestions\" which is an array of 5 strings.\n")
	b.WriteString(`Example: {"suggestions": ["Topic 1", "Topic 2", ...]}`)
	b.WriteString("\n")
	return b.String()
}

var jsonArrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)

// parseSuggestions はモデル応答からトピック候補を取り出す。
// {"suggestions": [...]}、配列そのもの、本文中の配列の順に解釈を試み、
// いずれも失敗した場合は空スライスを返す。
func parseSuggestions(text string) []string {
	text = strings.TrimSpace(text)

	var wrapped struct {
		Suggestions json.RawMessage `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil {
		if list, ok := decodeStrings(wrapped.Suggestions); ok {
			return list
		}
		return []string{}
	}

	if list, ok := decodeStrings([]byte(text)); ok {
		return list
	}

	if match := jsonArrayPattern.FindString(text); match != "" {
		if list, ok := decodeStrings([]byte(match)); ok {
			return list
		}
	}

	return []string{}
}

// decodeStrings はJSON配列を文字列スライスとして解釈する。
// 文字列以外の要素はJSON表現のまま文字列化する。
func decodeStrings(raw []byte) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(item))
	}
	return out, true
}
