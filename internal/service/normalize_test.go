package service

import (
	"testing"

	"whaletrack/internal/client/polymarket/data"
	"whaletrack/internal/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestResolveOutcome(t *testing.T) {
	cases := []struct {
		name        string
		index       *int
		outcome     string
		wantIdx     int
		wantOutcome string
	}{
		{"absent index yes", nil, "Yes", 1, "Yes"},
		{"absent index no", nil, "No", 0, "No"},
		{"absent both", nil, "", 0, "No"},
		{"absent index named outcome", nil, "Chiefs", 0, "Chiefs"},
		{"index one no string", intPtr(1), "", 1, "Yes"},
		{"index zero no string", intPtr(0), "", 0, "No"},
		{"index overrides yes", intPtr(0), "Yes", 0, "No"},
		{"index overrides no", intPtr(1), "No", 1, "Yes"},
		{"agreeing pair", intPtr(1), "Yes", 1, "Yes"},
		{"named outcome keeps index", intPtr(2), "Chiefs", 2, "Chiefs"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			idx, outcome := resolveOutcome(tc.index, tc.outcome)
			if idx != tc.wantIdx || outcome != tc.wantOutcome {
				t.Fatalf("got (%d,%q) want (%d,%q)", idx, outcome, tc.wantIdx, tc.wantOutcome)
			}
		})
	}
}

func TestNormalizePosition_PnLFallback(t *testing.T) {
	p := normalizePosition(data.Position{CashPnL: floatPtr(12.5), PnL: floatPtr(99)})
	if p.CashPnL != 12.5 {
		t.Fatalf("cashPnl=%v want the primary field", p.CashPnL)
	}

	p = normalizePosition(data.Position{PnL: floatPtr(99)})
	if p.CashPnL != 99 {
		t.Fatalf("cashPnl=%v want pnl fallback", p.CashPnL)
	}

	p = normalizePosition(data.Position{})
	if p.CashPnL != 0 {
		t.Fatalf("cashPnl=%v want 0", p.CashPnL)
	}
}

func TestExposure_FallbackChain(t *testing.T) {
	cases := []struct {
		name string
		pos  models.Position
		want float64
	}{
		{"current value wins", models.Position{CurrentValue: 42, Size: 100, CurPrice: 0.5}, 42},
		{"zero current value falls through", models.Position{CurrentValue: 0, Size: 100, CurPrice: 0.5}, 50},
		{"size only", models.Position{Size: 100}, 100},
		{"nothing", models.Position{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.pos.Exposure(); got != tc.want {
				t.Fatalf("exposure=%v want %v", got, tc.want)
			}
		})
	}
}

func TestNormalizeActivity_AddressAndUsdcSize(t *testing.T) {
	e := normalizeActivity(data.Activity{
		Timestamp:   1700000000,
		Type:        "TRADE",
		Side:        "BUY",
		ConditionID: "0xc1",
		Size:        20,
		UsdcSize:    floatPtr(13),
		ProxyWallet: "0xwallet",
	}, "0xroster")
	if e.TraderAddress != "0xroster" {
		t.Fatalf("address=%q want roster address", e.TraderAddress)
	}
	if e.UsdcSize != 13 {
		t.Fatalf("usdcSize=%v", e.UsdcSize)
	}
	if e.SignedDelta() != 13 {
		t.Fatalf("delta=%v want usdcSize", e.SignedDelta())
	}

	e = normalizeActivity(data.Activity{Side: "SELL", Size: 20, ProxyWallet: "0xwallet"}, "")
	if e.TraderAddress != "0xwallet" {
		t.Fatalf("address=%q want proxyWallet fallback", e.TraderAddress)
	}
	if e.SignedDelta() != -20 {
		t.Fatalf("delta=%v want -size fallback", e.SignedDelta())
	}
}

func TestRounding(t *testing.T) {
	if got := round2(0.46666); got != 0.47 {
		t.Fatalf("round2=%v", got)
	}
	if got := round1(19.96); got != 20.0 {
		t.Fatalf("round1=%v", got)
	}
	if got := round4(0.123456); got != 0.1235 {
		t.Fatalf("round4=%v", got)
	}
	if got := round2(-10.005); got != -10.01 {
		t.Fatalf("round2 negative=%v", got)
	}
}
