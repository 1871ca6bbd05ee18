package service

import (
	"math"
	"sort"
	"time"

	"whaletrack/internal/models"
)

// flowWindows are the rolling windows for net-flow accounting. Buckets are
// cumulative: one event counts toward every window whose cutoff it satisfies.
var flowWindows = []struct {
	Name string
	Span time.Duration
}{
	{"1h", time.Hour},
	{"6h", 6 * time.Hour},
	{"24h", 24 * time.Hour},
	{"7d", 7 * 24 * time.Hour},
	{"30d", 30 * 24 * time.Hour},
}

// queryWindows are the windows answered by PositionChanges.
var queryWindows = []struct {
	Name string
	Span time.Duration
}{
	{"1h", time.Hour},
	{"1d", 24 * time.Hour},
	{"1w", 7 * 24 * time.Hour},
}

// ActivityWindower turns a flat activity feed into the change ledger and
// per-window net-flow summaries.
type ActivityWindower struct {
	// MaxRecentEvents caps the emitted ledger; window summaries still
	// cover every qualifying event.
	MaxRecentEvents int

	// Now is replaced in tests.
	Now func() time.Time
}

// ProcessRecentChanges filters the feed to trades, establishes descending
// timestamp order, and emits one ChangeRecord per retained event along with
// the cumulative window sums.
func (w *ActivityWindower) ProcessRecentChanges(events []models.ActivityEvent, portfolios map[string]models.TraderPortfolio) models.RecentChanges {
	now := time.Now().UTC()
	if w.Now != nil {
		now = w.Now()
	}

	trades := make([]models.ActivityEvent, 0, len(events))
	for _, e := range events {
		if e.IsTrade() {
			trades = append(trades, e)
		}
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp > trades[j].Timestamp
	})

	summaries := make(map[string]float64, len(flowWindows))
	for _, win := range flowWindows {
		summaries[win.Name] = 0
	}

	changes := make([]models.ChangeRecord, 0, len(trades))
	for _, e := range trades {
		delta := e.SignedDelta()
		for _, win := range flowWindows {
			if e.Timestamp >= now.Add(-win.Span).Unix() {
				summaries[win.Name] += delta
			}
		}

		label := e.TraderAddress
		if p, ok := portfolios[e.TraderAddress]; ok && p.Label != "" {
			label = p.Label
		}
		changes = append(changes, models.ChangeRecord{
			Timestamp:     e.Timestamp,
			Trader:        label,
			TraderAddress: e.TraderAddress,
			Market:        e.Title,
			MarketSlug:    e.Slug,
			EventSlug:     e.EventSlug,
			ConditionID:   e.ConditionID,
			Outcome:       e.Outcome,
			OutcomeIndex:  e.OutcomeIndex,
			Action:        actionForSide(e.Side),
			Delta:         round2(delta),
			Size:          e.Size,
			Price:         e.Price,
		})
	}

	for name, v := range summaries {
		summaries[name] = round2(v)
	}

	if w.MaxRecentEvents > 0 && len(changes) > w.MaxRecentEvents {
		changes = changes[:w.MaxRecentEvents]
	}

	return models.RecentChanges{Changes: changes, WindowSummaries: summaries}
}

func actionForSide(side string) string {
	switch side {
	case "BUY":
		return "increased"
	case "SELL":
		return "decreased"
	default:
		return "unknown"
	}
}

// TraderChange is one trader's net change within a window.
type TraderChange struct {
	Address string  `json:"address"`
	Label   string  `json:"label"`
	Change  float64 `json:"change"`
}

// WindowChange is the per-window answer of PositionChanges. MoreTraders is
// the count beyond the displayed top 5.
type WindowChange struct {
	Window      string         `json:"window"`
	Net         float64        `json:"net"`
	Traders     []TraderChange `json:"traders"`
	MoreTraders int            `json:"moreTraders"`
}

// PositionChanges replays the change ledger for one market outcome over
// the 1h/1d/1w windows, grouping by trader. It is a read-side query: it
// never mutates the ledger and can be called repeatedly with identical
// results. Outcome matching accepts an explicit index match or the Yes/No
// string mapped onto the index.
func PositionChanges(changes []models.ChangeRecord, conditionID string, outcomeIndex int, now time.Time) []WindowChange {
	out := make([]WindowChange, 0, len(queryWindows))
	for _, win := range queryWindows {
		cutoff := now.Add(-win.Span).Unix()

		net := 0.0
		byTrader := make(map[string]*TraderChange)
		var order []string
		for _, c := range changes {
			if c.ConditionID != conditionID || c.Timestamp < cutoff {
				continue
			}
			if !outcomeMatches(c, outcomeIndex) {
				continue
			}
			net += c.Delta
			tc, ok := byTrader[c.TraderAddress]
			if !ok {
				tc = &TraderChange{Address: c.TraderAddress, Label: c.Trader}
				byTrader[c.TraderAddress] = tc
				order = append(order, c.TraderAddress)
			}
			tc.Change += c.Delta
		}

		traders := make([]TraderChange, 0, len(byTrader))
		for _, addr := range order {
			tc := byTrader[addr]
			tc.Change = round2(tc.Change)
			traders = append(traders, *tc)
		}
		sort.SliceStable(traders, func(i, j int) bool {
			ai, aj := math.Abs(traders[i].Change), math.Abs(traders[j].Change)
			if ai != aj {
				return ai > aj
			}
			return traders[i].Address < traders[j].Address
		})

		more := 0
		if len(traders) > 5 {
			more = len(traders) - 5
			traders = traders[:5]
		}

		out = append(out, WindowChange{
			Window:      win.Name,
			Net:         round2(net),
			Traders:     traders,
			MoreTraders: more,
		})
	}
	return out
}

func outcomeMatches(c models.ChangeRecord, outcomeIndex int) bool {
	if c.OutcomeIndex == outcomeIndex {
		return true
	}
	switch c.Outcome {
	case "Yes":
		return outcomeIndex == 1
	case "No":
		return outcomeIndex == 0
	}
	return false
}
