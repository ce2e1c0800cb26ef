package handler

import (
	"time"

	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/hitoshi/newsletterai/internal/plan"
)

// limitsResponse はプラン上限。-1は無制限を表す。
type limitsResponse struct {
	NewslettersPerMonth int `json:"newslettersPerMonth"`
	MaxRssFeeds         int `json:"maxRssFeeds"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID                    string         `json:"id"`
	Email                 string         `json:"email"`
	Name                  string         `json:"name"`
	Image                 string         `json:"image"`
	Role                  string         `json:"role"`
	Plan                  string         `json:"plan"`
	Limits                limitsResponse `json:"limits"`
	NewsletterName        string         `json:"newsletterName"`
	NewsletterDescription string         `json:"newsletterDescription"`
	TargetAudience        string         `json:"targetAudience"`
	DefaultTone           string         `json:"defaultTone"`
	CompanyName           string         `json:"companyName"`
	Industry              string         `json:"industry"`
	LegalDisclaimer       string         `json:"legalDisclaimer"`
	CreatedAt             time.Time      `json:"createdAt"`
}

func toUserResponse(u *model.User) userResponse {
	limits := plan.GetLimits(string(u.Plan))
	return userResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Image: u.Image,
		Role:  string(u.Role),
		Plan:  string(plan.Normalize(string(u.Plan))),
		Limits: limitsResponse{
			NewslettersPerMonth: limits.NewslettersPerMonth.Value(),
			MaxRssFeeds:         limits.MaxRssFeeds.Value(),
		},
		NewsletterName:        u.Profile.NewsletterName,
		NewsletterDescription: u.Profile.NewsletterDescription,
		TargetAudience:        u.Profile.TargetAudience,
		DefaultTone:           u.Profile.DefaultTone,
		CompanyName:           u.Profile.CompanyName,
		Industry:              u.Profile.Industry,
		LegalDisclaimer:       u.Profile.LegalDisclaimer,
		CreatedAt:             u.CreatedAt,
	}
}

// newsletterResponse はニュースレターのAPIレスポンス。
type newsletterResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toNewsletterResponse(n *model.Newsletter) newsletterResponse {
	return newsletterResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Topic:     n.Topic,
		Content:   n.Content,
		Status:    string(n.Status),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// feedResponse はRSSフィードのAPIレスポンス。
type feedResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toFeedResponse(f *model.RssFeed) feedResponse {
	return feedResponse{
		ID:          f.ID,
		UserID:      f.UserID,
		URL:         f.URL,
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
	}
}

// notificationResponse は通知のAPIレスポンス。
type notificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

func toNotificationResponse(n *model.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// adminStatsResponse は管理画面の集計値。
type adminStatsResponse struct {
	Users         int `json:"users"`
	Newsletters   int `json:"newsletters"`
	Subscriptions int `json:"subscriptions"`
}

// adminUserResponse は管理画面のユーザー一覧の1行。
type adminUserResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	Plan            string    `json:"plan"`
	CreatedAt       time.Time `json:"createdAt"`
	NewsletterCount int       `json:"newsletterCount"`
}

func toAdminUserResponse(u *model.UserSummary) adminUserResponse {
	return adminUserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            string(u.Role),
		Plan:            string(u.Plan),
		CreatedAt:       u.CreatedAt,
		NewsletterCount: u.NewsletterCount,
	}
}

// mapSlice はスライスの各要素をレスポンス型に変換する。nilでも空配列を返す。
func mapSlice[T any, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
