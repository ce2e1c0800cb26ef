// Package rss はRSS/Atomフィードの取得・検証とダイジェスト用記事の収集を提供する。
package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	userAgent    = "NewsletterAI/1.0 (+feed reader)"
	acceptHeader = "application/rss+xml, application/atom+xml, application/xml, text/xml, text/html;q=0.9, */*;q=0.8"
)

// URLGuard はSSRF検証のインターフェース。
// security.URLGuardを抽象化してテスタビリティを向上させる。
type URLGuard interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// ErrBlockedURL はSSRF検証で拒否されたURLを表す。
var ErrBlockedURL = errors.New("url is not allowed")

// Document は取得したレスポンスの本文とメタ情報。
type Document struct {
	URL         string
	ContentType string
	Body        []byte
}

// Fetcher はURL検証付きでフィード文書を取得・パースする。
type Fetcher struct {
	guard       URLGuard
	client      *http.Client
	maxBodySize int64
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
func NewFetcher(guard URLGuard, timeout time.Duration, maxBodySize int64) *Fetcher {
	return &Fetcher{
		guard:       guard,
		client:      guard.NewSafeClient(timeout, maxBodySize),
		maxBodySize: maxBodySize,
	}
}

// Get はURLを検証した上でGETし、2xxの本文を最大サイズまで読み込む。
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Document, error) {
	if err := f.guard.ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlockedURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Document{
		URL:         rawURL,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Fetch はURLのフィードを取得してパースする。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*gofeed.Feed, error) {
	doc, err := f.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return Parse(doc.Body)
}

// Parse はRSS/Atom/JSON Feedの本文をパースする。
// gofeed.Parserは内部状態を持つため呼び出しごとに生成する。
func Parse(body []byte) (*gofeed.Feed, error) {
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed, nil
}
