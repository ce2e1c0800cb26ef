package model

import "time"

// RssFeed はユーザーが登録したRSS/Atomフィードを表す。
// 作成と削除のみで更新はしない。
type RssFeed struct {
	ID          string
	UserID      string
	URL         string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Article はダイジェスト生成用に正規化されたフィード記事を表す。
type Article struct {
	Title       string
	Link        string
	Summary     string
	Source      string
	PublishedAt *time.Time
}
