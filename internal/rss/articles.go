package rss

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/newsletterai/internal/model"
)

const (
	// MaxArticlesPerFeed は1フィードから取り出す記事数の上限。
	MaxArticlesPerFeed = 5
	// maxSummaryRunes は記事要約の最大文字数。
	maxSummaryRunes = 500

	untitledArticle = "Untitled Article"
	noDescription   = "No description available."
)

// TagStripper はHTMLをプレーンテキストに変換するインターフェース。
type TagStripper interface {
	StripTags(rawHTML string) string
}

// ExtractArticles はフィードの最新記事を最大MaxArticlesPerFeed件、正規化して返す。
// 公開日時の降順に並べ、日時のない記事はフィード内の順序を保って末尾に置く。
func ExtractArticles(feed *gofeed.Feed, source string, stripper TagStripper) []model.Article {
	if feed == nil || len(feed.Items) == 0 {
		return nil
	}

	items := make([]*gofeed.Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item != nil {
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := itemTime(items[i]), itemTime(items[j])
		if ti == nil || tj == nil {
			return ti != nil && tj == nil
		}
		return ti.After(*tj)
	})

	if len(items) > MaxArticlesPerFeed {
		items = items[:MaxArticlesPerFeed]
	}

	articles := make([]model.Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, toArticle(item, source, stripper))
	}
	return articles
}

func toArticle(item *gofeed.Item, source string, stripper TagStripper) model.Article {
	title := strings.TrimSpace(stripper.StripTags(item.Title))
	if title == "" {
		title = untitledArticle
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = "#"
	}

	return model.Article{
		Title:       title,
		Link:        link,
		Summary:     summarize(item, stripper),
		Source:      source,
		PublishedAt: itemTime(item),
	}
}

// summarize は説明文・本文の順に最初の空でないテキストを要約として返す。
func summarize(item *gofeed.Item, stripper TagStripper) string {
	for _, raw := range []string{item.Description, item.Content} {
		text := collapseSpace(stripper.StripTags(raw))
		if text != "" {
			return truncateRunes(text, maxSummaryRunes)
		}
	}
	return noDescription
}

func itemTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
