package models

import "time"

// Position is a trader's holding in one outcome of one market, normalized
// from the data API at the fetch boundary. Outcome and OutcomeIndex always
// agree after normalization; the index is authoritative.
type Position struct {
	ConditionID  string  `json:"conditionId"`
	OutcomeIndex int     `json:"outcomeIndex"`
	Outcome      string  `json:"outcome"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Icon         string  `json:"icon"`
	EventSlug    string  `json:"eventSlug"`
	Size         float64 `json:"size"`
	AvgPrice     float64 `json:"avgPrice"`
	CurPrice     float64 `json:"curPrice"`
	CurrentValue float64 `json:"currentValue"`
	CashPnL      float64 `json:"cashPnl"`
}

// Exposure is the absolute USD value of the position: the stated current
// value when present, else size at the current price, else the raw size.
func (p Position) Exposure() float64 {
	if p.CurrentValue != 0 {
		return p.CurrentValue
	}
	if v := p.Size * p.CurPrice; v != 0 {
		return v
	}
	if p.Size != 0 {
		return p.Size
	}
	return 0
}

// TraderPortfolio is the per-trader snapshot for one run. FetchSuccess is
// true only if both the positions fetch and the value fetch succeeded; a
// partial failure keeps the trader in the output but excludes it from
// aggregation.
type TraderPortfolio struct {
	Address      string     `json:"address"`
	Label        string     `json:"label"`
	Tier         string     `json:"tier"`
	Positions    []Position `json:"positions"`
	TotalValue   float64    `json:"totalValue"`
	TotalPnL     float64    `json:"totalPnL"`
	FetchSuccess bool       `json:"fetchSuccess"`
	FetchError   string     `json:"fetchError,omitempty"`
	LastUpdated  time.Time  `json:"lastUpdated"`
}
