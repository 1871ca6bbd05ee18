package data

// Position is the raw /positions payload. Fields with a documented fallback
// chain are pointers so the normalization layer can tell absent from zero.
type Position struct {
	ProxyWallet  string   `json:"proxyWallet"`
	ConditionID  string   `json:"conditionId"`
	Size         float64  `json:"size"`
	AvgPrice     float64  `json:"avgPrice"`
	CurPrice     float64  `json:"curPrice"`
	CurrentValue *float64 `json:"currentValue"`
	CashPnL      *float64 `json:"cashPnl"`
	PnL          *float64 `json:"pnl"`
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Icon         string   `json:"icon"`
	EventSlug    string   `json:"eventSlug"`
	Outcome      string   `json:"outcome"`
	OutcomeIndex *int     `json:"outcomeIndex"`
}

// Activity is the raw /activity payload.
type Activity struct {
	ProxyWallet  string   `json:"proxyWallet"`
	Timestamp    int64    `json:"timestamp"`
	ConditionID  string   `json:"conditionId"`
	Type         string   `json:"type"`
	Side         string   `json:"side"`
	Size         float64  `json:"size"`
	UsdcSize     *float64 `json:"usdcSize"`
	Price        float64  `json:"price"`
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	EventSlug    string   `json:"eventSlug"`
	Outcome      string   `json:"outcome"`
	OutcomeIndex *int     `json:"outcomeIndex"`
}

type portfolioValue struct {
	User  string  `json:"user"`
	Value float64 `json:"value"`
}
