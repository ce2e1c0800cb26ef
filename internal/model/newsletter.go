package model

import "time"

// NewsletterStatus はニュースレターのライフサイクル状態を表す。
type NewsletterStatus string

const (
	// StatusDraft は保存直後の下書き状態。
	StatusDraft NewsletterStatus = "DRAFT"
	// StatusCompleted は配信準備が整った状態。
	StatusCompleted NewsletterStatus = "COMPLETED"
	// StatusSent はメール配信済みの終端状態。
	StatusSent NewsletterStatus = "SENT"
)

// statusRank は状態の前進順序。
var statusRank = map[NewsletterStatus]int{
	StatusDraft:     0,
	StatusCompleted: 1,
	StatusSent:      2,
}

// Valid は既知の状態かを返す。
func (s NewsletterStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo は状態遷移が前進方向のみであることを検証する。
// 同一状態への遷移は許可する。SENTからは他の状態へ遷移できない。
func (s NewsletterStatus) CanTransitionTo(next NewsletterStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// Newsletter はユーザーが所有するニュースレターを表す。
// ContentはMarkdownをそのまま保持する。
type Newsletter struct {
	ID        string
	UserID    string
	Title     string
	Topic     string
	Content   string
	Status    NewsletterStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
