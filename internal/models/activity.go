package models

// ActivityEvent is one normalized entry from the data API activity feed.
// Upstream does not guarantee ordering; consumers establish it.
type ActivityEvent struct {
	Timestamp     int64   `json:"timestamp"`
	Type          string  `json:"type"`
	Side          string  `json:"side"`
	ConditionID   string  `json:"conditionId"`
	OutcomeIndex  int     `json:"outcomeIndex"`
	Outcome       string  `json:"outcome"`
	Size          float64 `json:"size"`
	UsdcSize      float64 `json:"usdcSize"`
	Price         float64 `json:"price"`
	TraderAddress string  `json:"traderAddress"`
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	EventSlug     string  `json:"eventSlug"`
}

// IsTrade reports whether the event counts toward flow accounting. Events
// with an absent type are treated as trades, matching upstream behavior.
func (e ActivityEvent) IsTrade() bool {
	return e.Type == "" || e.Type == "TRADE"
}

// SignedDelta is the USD flow of the event: positive for BUY, negative
// otherwise, using usdcSize with size as fallback.
func (e ActivityEvent) SignedDelta() float64 {
	amount := e.UsdcSize
	if amount == 0 {
		amount = e.Size
	}
	if e.Side == "BUY" {
		return amount
	}
	return -amount
}

// ChangeRecord is one qualifying activity event rewritten as a ledger entry.
type ChangeRecord struct {
	Timestamp     int64   `json:"timestamp"`
	Trader        string  `json:"trader"`
	TraderAddress string  `json:"traderAddress"`
	Market        string  `json:"market"`
	MarketSlug    string  `json:"marketSlug"`
	EventSlug     string  `json:"eventSlug"`
	ConditionID   string  `json:"conditionId"`
	Outcome       string  `json:"outcome"`
	OutcomeIndex  int     `json:"outcomeIndex"`
	Action        string  `json:"action"`
	Delta         float64 `json:"delta"`
	Size          float64 `json:"size"`
	Price         float64 `json:"price"`
}

// RecentChanges is the windowing engine's output document: the change
// ledger plus net signed flow per rolling window.
type RecentChanges struct {
	Changes         []ChangeRecord     `json:"changes"`
	WindowSummaries map[string]float64 `json:"windowSummaries"`
}
