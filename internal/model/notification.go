package model

import "time"

// NotificationType は通知の種別を表す。
type NotificationType string

const (
	NotificationInfo    NotificationType = "INFO"
	NotificationSuccess NotificationType = "SUCCESS"
	NotificationWarning NotificationType = "WARNING"
)

// Notification は他の操作の副作用として作成されるユーザー通知。
// 作成後に変更できるのはIsReadのみ。
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      NotificationType
	IsRead    bool
	CreatedAt time.Time
}

// AdminStats は管理画面の集計値。
type AdminStats struct {
	Users         int
	Newsletters   int
	Subscriptions int
}

// UserSummary は管理画面のユーザー一覧の1行を表す。
type UserSummary struct {
	ID              string
	Name            string
	Email           string
	Role            Role
	Plan            Plan
	NewsletterCount int
	CreatedAt       time.Time
}
