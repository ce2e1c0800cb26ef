// Package mailer はニュースレターのメール本文生成と配信を提供する。
package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTMLSanitizer はレンダリング済みHTMLを無害化するインターフェース。
type HTMLSanitizer interface {
	SanitizeEmailHTML(html string) string
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
{{.Body}}
<hr style="border: 0; border-top: 1px solid #eee; margin: 30px 0;" />
<p style="font-size: 12px; color: #999; text-align: center;">
Sent via AI Newsletter Generator
</p>
</body>
</html>
`))

// Renderer はMarkdown本文をメール用HTMLに変換する。
type Renderer struct {
	md        goldmark.Markdown
	sanitizer HTMLSanitizer
}

// NewRenderer はGFM拡張を有効にしたRendererを生成する。
func NewRenderer(sanitizer HTMLSanitizer) *Renderer {
	return &Renderer{
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitizer: sanitizer,
	}
}

// Render はMarkdownをHTMLに変換し、無害化した上でメールテンプレートに埋め込む。
func (r *Renderer) Render(markdown string) (string, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	safe := r.sanitizer.SanitizeEmailHTML(body.String())

	var out bytes.Buffer
	if err := emailTemplate.Execute(&out, struct{ Body template.HTML }{template.HTML(safe)}); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return out.String(), nil
}
