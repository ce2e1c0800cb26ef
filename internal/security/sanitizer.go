package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer はbluemondayのポリシーを用途別に保持する。
// *bluemonday.Policyは生成後の並行利用が安全なため、1インスタンスを共有してよい。
type Sanitizer struct {
	email  *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewSanitizer はSanitizerを生成する。
func NewSanitizer() *Sanitizer {
	email := bluemonday.UGCPolicy()
	email.RequireNoFollowOnLinks(false)
	email.RequireNoReferrerOnLinks(true)
	email.AddTargetBlankToFullyQualifiedLinks(true)
	email.AllowRelativeURLs(false)

	return &Sanitizer{
		email:  email,
		strict: bluemonday.StrictPolicy(),
	}
}

// SanitizeEmailHTML はMarkdownから生成したメール本文HTMLを安全なタグのみに制限する。
func (s *Sanitizer) SanitizeEmailHTML(rawHTML string) string {
	return s.email.Sanitize(rawHTML)
}

// StripTags はHTMLタグをすべて除去し、エンティティを復元したプレーンテキストを返す。
func (s *Sanitizer) StripTags(rawHTML string) string {
	text := s.strict.Sanitize(rawHTML)
	return strings.TrimSpace(html.UnescapeString(text))
}
