package plan

import (
	"testing"

	"github.com/hitoshi/newsletterai/internal/model"
)

// 既知プラン以外の文字列はすべてFREEの上限になることを検証
func TestGetLimits_UnknownPlansFallBackToFree(t *testing.T) {
	free := GetLimits("FREE")

	for _, p := range []string{"", "  ", "gold", "PREMIUM", "pro-plus", "FREEDOM"} {
		got := GetLimits(p)
		if got != free {
			t.Errorf("GetLimits(%q) = %+v, want FREE limits %+v", p, got, free)
		}
	}
}

func TestGetLimits_Free(t *testing.T) {
	l := GetLimits("free")

	if l.NewslettersPerMonth.IsUnlimited() || l.NewslettersPerMonth.Value() != 5 {
		t.Errorf("NewslettersPerMonth = %s, want 5", l.NewslettersPerMonth)
	}
	if l.MaxRssFeeds.IsUnlimited() || l.MaxRssFeeds.Value() != 1 {
		t.Errorf("MaxRssFeeds = %s, want 1", l.MaxRssFeeds)
	}
}

func TestGetLimits_PaidPlansAreUnlimited(t *testing.T) {
	for _, p := range []string{"PRO", "pro", "Enterprise", "ENTERPRISE"} {
		l := GetLimits(p)
		if !l.NewslettersPerMonth.IsUnlimited() {
			t.Errorf("GetLimits(%q).NewslettersPerMonth should be unlimited", p)
		}
		if !l.MaxRssFeeds.IsUnlimited() {
			t.Errorf("GetLimits(%q).MaxRssFeeds should be unlimited", p)
		}
	}
}

func TestLimit_Allows(t *testing.T) {
	five := Max(5)
	if !five.Allows(4) {
		t.Error("4件使用済みなら5件目は許可されるべき")
	}
	if five.Allows(5) {
		t.Error("5件使用済みなら6件目は拒否されるべき")
	}

	if !Unlimited.Allows(1_000_000) {
		t.Error("Unlimitedは常に許可されるべき")
	}

	var zero Limit
	if zero.Allows(0) {
		t.Error("ゼロ値のLimitは何も許可しない")
	}
}

func TestLimit_String(t *testing.T) {
	if got := Unlimited.String(); got != "unlimited" {
		t.Errorf("Unlimited.String() = %q", got)
	}
	if got := Max(5).String(); got != "5" {
		t.Errorf("Max(5).String() = %q", got)
	}
	if got := Unlimited.Value(); got != -1 {
		t.Errorf("Unlimited.Value() = %d, want -1", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("enterprise"); got != model.PlanEnterprise {
		t.Errorf("Normalize(enterprise) = %q", got)
	}
	if got := Normalize("unknown"); got != model.PlanFree {
		t.Errorf("Normalize(unknown) = %q", got)
	}
}
