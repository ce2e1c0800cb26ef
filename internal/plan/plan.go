// Package plan はサブスクリプションプランごとの利用上限を定義する。
package plan

import (
	"strconv"

	"github.com/hitoshi/newsletterai/internal/model"
)

// Limit は数値上限または無制限を表す。
// ゼロ値は上限0（何も許可しない）。
type Limit struct {
	max       int
	unlimited bool
}

// Unlimited は上限なしを表す。
var Unlimited = Limit{unlimited: true}

// Max は上限nのLimitを返す。
func Max(n int) Limit {
	return Limit{max: n}
}

// IsUnlimited は上限なしかを返す。
func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// Value は数値上限を返す。無制限の場合は-1を返す。
func (l Limit) Value() int {
	if l.unlimited {
		return -1
	}
	return l.max
}

// Allows は使用済み件数usedに対してもう1件追加できるかを返す。
func (l Limit) Allows(used int) bool {
	return l.unlimited || used < l.max
}

// String はJSONやログ向けの表記を返す。
func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return strconv.Itoa(l.max)
}

// Limits はプランの利用上限。
type Limits struct {
	NewslettersPerMonth Limit
	MaxRssFeeds         Limit
}

var limitsByPlan = map[model.Plan]Limits{
	model.PlanFree: {
		NewslettersPerMonth: Max(5),
		MaxRssFeeds:         Max(1),
	},
	model.PlanPro: {
		NewslettersPerMonth: Unlimited,
		MaxRssFeeds:         Unlimited,
	},
	model.PlanEnterprise: {
		NewslettersPerMonth: Unlimited,
		MaxRssFeeds:         Unlimited,
	},
}

// Normalize はプラン文字列を正規化する。未知・空の場合はFREEを返す。
func Normalize(p string) model.Plan {
	if parsed, ok := model.ParsePlan(p); ok {
		return parsed
	}
	return model.PlanFree
}

// GetLimits はプラン文字列（大文字小文字不問）に対応する上限を返す。
// 未知・空の場合はFREEの上限を返す。
func GetLimits(p string) Limits {
	return limitsByPlan[Normalize(p)]
}
