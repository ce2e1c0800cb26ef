// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// Role はユーザーの権限ロールを表す。
type Role string

const (
	// RoleUser は一般ユーザー。
	RoleUser Role = "USER"
	// RoleAdmin は管理者。
	RoleAdmin Role = "ADMIN"
)

// Plan はサブスクリプションプランを表す。
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

// ParsePlan は大文字小文字を区別せずにプラン文字列を解釈する。
// 未知の値や空文字列の場合はfalseを返す。
func ParsePlan(s string) (Plan, bool) {
	switch p := Plan(strings.ToUpper(strings.TrimSpace(s))); p {
	case PlanFree, PlanPro, PlanEnterprise:
		return p, true
	default:
		return "", false
	}
}

// Profile はニュースレターのブランディング設定を表す。
type Profile struct {
	NewsletterName        string
	NewsletterDescription string
	TargetAudience        string
	DefaultTone           string
	CompanyName           string
	Industry              string
	LegalDisclaimer       string
}

// User はサービス利用ユーザーを表す。
type User struct {
	ID               string
	Email            string
	Name             string
	Image            string
	PasswordHash     string
	Role             Role
	Plan             Plan
	Profile          Profile
	StripeCustomerID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsAdmin はユーザーが管理者ロールを持つかを返す。
func (u *User) IsAdmin() bool {
	return strings.EqualFold(string(u.Role), string(RoleAdmin))
}

// HasPassword はパスワードが設定されているかを返す。
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// ProfileUpdate はプロフィール更新の入力。nilのフィールドは変更しない。
type ProfileUpdate struct {
	Name                  *string
	Image                 *string
	NewsletterName        *string
	NewsletterDescription *string
	TargetAudience        *string
	DefaultTone           *string
	CompanyName           *string
	Industry              *string
	LegalDisclaimer       *string
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
