// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, plan, upstream, system
	Action   string // ユーザー向け対処方法
	Details  string // 上流エラーの詳細（任意）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodePlanLimit           = "PLAN_LIMIT_REACHED"
	ErrCodeInvalidFeed         = "INVALID_FEED"
	ErrCodeNoArticles          = "NO_ARTICLES"
	ErrCodeGenerationFailed    = "GENERATION_FAILED"
	ErrCodeEmailDispatchFailed = "EMAIL_DISPATCH_FAILED"
	ErrCodeCheckoutFailed      = "CHECKOUT_FAILED"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeIncorrectPassword   = "INCORRECT_PASSWORD"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
)

// NewUnauthorizedError は認証・権限・所有者不一致のエラーを生成する。
// リソースの存在有無は区別しない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Unauthorized",
		Category: "auth",
		Action:   "Please sign in with an account that has access to this resource.",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "Please check the request and try again.",
	}
}

// NewPlanLimitError は月間ニュースレター作成数の上限エラーを生成する。
func NewPlanLimitError(plan Plan, limit int) *APIError {
	return &APIError{
		Code:     ErrCodePlanLimit,
		Message:  "Plan limit reached",
		Category: "plan",
		Action:   "Upgrade your plan to continue.",
		Details: fmt.Sprintf(
			"You have reached the monthly limit for the %s plan (%d newsletters). Please upgrade to Pro for unlimited generation.",
			plan, limit,
		),
	}
}

// NewFeedLimitError はRSSフィード登録数の上限エラーを生成する。
func NewFeedLimitError(plan Plan, limit int) *APIError {
	return &APIError{
		Code:     ErrCodePlanLimit,
		Message:  "Plan limit reached",
		Category: "plan",
		Action:   "Upgrade your plan to continue.",
		Details: fmt.Sprintf(
			"You have reached the maximum number of RSS feeds for the %s plan (%d feeds). Please upgrade to Pro for unlimited feeds.",
			plan, limit,
		),
	}
}

// NewInvalidFeedError はフィードの取得・解析に失敗した場合のエラーを生成する。
func NewInvalidFeedError(details string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFeed,
		Message:  "Invalid or unreachable RSS feed URL. Please make sure the URL is correct and public.",
		Category: "validation",
		Action:   "Enter the URL of a public RSS or Atom feed.",
		Details:  details,
	}
}

// NewNoArticlesError は選択したフィードから記事が1件も得られなかった場合のエラーを生成する。
func NewNoArticlesError() *APIError {
	return &APIError{
		Code:     ErrCodeNoArticles,
		Message:  "No articles found in selected feeds",
		Category: "validation",
		Action:   "Select other feeds or try again later.",
		Details:  "We were able to connect to the feeds but they didn't return any readable articles at this time.",
	}
}

// NewGenerationFailedError は全モデルが生成に失敗した場合のエラーを生成する。
func NewGenerationFailedError(details string) *APIError {
	return &APIError{
		Code:     ErrCodeGenerationFailed,
		Message:  "AI Generation Failed",
		Category: "upstream",
		Action:   "Please wait a moment and try again.",
		Details:  details,
	}
}

// NewEmailDispatchError はメール配信に失敗した場合のエラーを生成する。
func NewEmailDispatchError(details string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailDispatchFailed,
		Message:  "Failed to send email via provider",
		Category: "upstream",
		Action:   "The newsletter was not marked as sent. Please try again later.",
		Details:  details,
	}
}

// NewCheckoutFailedError は決済セッション作成に失敗した場合のエラーを生成する。
func NewCheckoutFailedError(details string) *APIError {
	return &APIError{
		Code:     ErrCodeCheckoutFailed,
		Message:  "Checkout failed",
		Category: "upstream",
		Action:   "Please try again later.",
		Details:  details,
	}
}

// NewInvalidTransitionError は後退方向の状態遷移エラーを生成する。
func NewInvalidTransitionError(from, to NewsletterStatus) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("Cannot change newsletter status from %s to %s", from, to),
		Category: "validation",
		Action:   "Newsletters move forward only: DRAFT, COMPLETED, SENT.",
	}
}

// NewIncorrectPasswordError は現在のパスワードが一致しない場合のエラーを生成する。
func NewIncorrectPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeIncorrectPassword,
		Message:  "Incorrect current password",
		Category: "validation",
		Action:   "Please enter your current password.",
	}
}

// NewInvalidCredentialsError はログイン失敗のエラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid email or password",
		Category: "auth",
		Action:   "Please check your email and password.",
	}
}

// NewEmailTakenError は登録済みメールアドレスのエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "An account with this email already exists",
		Category: "auth",
		Action:   "Please sign in instead.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  message,
		Category: "auth",
		Action:   "Please sign in again.",
	}
}
