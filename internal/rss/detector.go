package rss

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// FeedInfo は検証済みフィードのURLとメタ情報。
type FeedInfo struct {
	URL         string
	Title       string
	Description string
}

// FeedCandidate はHTMLのlink要素から検出されたフィード候補。
type FeedCandidate struct {
	URL   string
	Atom  bool
	Title string
}

// Prober はフィードURLの取得・解析による検証を行う。
// 入力がHTMLページの場合はlink rel="alternate"からフィードを自動検出する。
type Prober struct {
	fetcher *Fetcher
}

// NewProber はProberを生成する。
func NewProber(fetcher *Fetcher) *Prober {
	return &Prober{fetcher: fetcher}
}

// Probe はURLを取得し、RSS/Atomとしてパースできればそのメタ情報を返す。
// パースできずHTMLであった場合は、検出したフィード候補のうち最適な1件を検証する。
func (p *Prober) Probe(ctx context.Context, rawURL string) (*FeedInfo, error) {
	doc, err := p.fetcher.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	feed, parseErr := Parse(doc.Body)
	if parseErr == nil {
		return &FeedInfo{URL: rawURL, Title: feed.Title, Description: feed.Description}, nil
	}

	if !isHTML(doc.ContentType) {
		return nil, parseErr
	}

	best := SelectBestFeed(ParseFeedLinksFromHTML(doc.Body, rawURL), rawURL)
	if best == nil {
		return nil, fmt.Errorf("no feed link found in HTML page: %s", rawURL)
	}

	feed, err = p.fetcher.Fetch(ctx, best.URL)
	if err != nil {
		return nil, fmt.Errorf("discovered feed %s: %w", best.URL, err)
	}
	return &FeedInfo{URL: best.URL, Title: feed.Title, Description: feed.Description}, nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	return strings.Contains(strings.ToLower(mediaType), "html")
}

// ParseFeedLinksFromHTML はHTMLのheadからRSS/Atomのlink要素を検出する。
// 相対URLはbaseURLを基準に絶対URLに解決する。
func ParseFeedLinksFromHTML(htmlBody []byte, baseURL string) []FeedCandidate {
	var candidates []FeedCandidate

	base, err := url.Parse(baseURL)
	if err != nil {
		return candidates
	}

	tokenizer := html.NewTokenizer(bytes.NewReader(htmlBody))
	inHead := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return candidates

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tokenizer.TagName()
			switch string(name) {
			case "head":
				inHead = true
				continue
			case "body":
				return candidates
			case "link":
			default:
				continue
			}
			if !inHead || !hasAttr {
				continue
			}

			if c, ok := linkCandidate(tokenizer, base); ok {
				candidates = append(candidates, c)
			}

		case html.EndTagToken:
			if name, _ := tokenizer.TagName(); string(name) == "head" {
				return candidates
			}
		}
	}
}

// linkCandidate はlink要素の属性からフィード候補を組み立てる。
func linkCandidate(tokenizer *html.Tokenizer, base *url.URL) (FeedCandidate, bool) {
	var rel, linkType, href, title string
	for {
		key, val, more := tokenizer.TagAttr()
		switch strings.ToLower(string(key)) {
		case "rel":
			rel = strings.ToLower(string(val))
		case "type":
			linkType = strings.ToLower(string(val))
		case "href":
			href = string(val)
		case "title":
			title = string(val)
		}
		if !more {
			break
		}
	}

	if rel != "alternate" || href == "" {
		return FeedCandidate{}, false
	}

	var atom bool
	switch linkType {
	case "application/rss+xml":
	case "application/atom+xml":
		atom = true
	default:
		return FeedCandidate{}, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return FeedCandidate{}, false
	}

	return FeedCandidate{
		URL:   base.ResolveReference(ref).String(),
		Atom:  atom,
		Title: title,
	}, true
}

// SelectBestFeed はフィード候補から1件を選ぶ。
// 同一ホスト(+100)、Atom(+10)の順に評価し、同点なら先に出現した候補を選ぶ。
func SelectBestFeed(candidates []FeedCandidate, inputURL string) *FeedCandidate {
	if len(candidates) == 0 {
		return nil
	}

	inputHost := hostOf(inputURL)
	bestIdx, bestScore := 0, -1

	for i, c := range candidates {
		score := 0
		if hostOf(c.URL) == inputHost {
			score += 100
		}
		if c.Atom {
			score += 10
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	return &candidates[bestIdx]
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
