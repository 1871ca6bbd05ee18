package models

// TraderContribution is one trader's share of an aggregated market outcome.
type TraderContribution struct {
	Address  string  `json:"address"`
	Label    string  `json:"label"`
	Exposure float64 `json:"exposure"`
	Size     float64 `json:"size"`
	AvgPrice float64 `json:"avgPrice"`
	CurPrice float64 `json:"curPrice"`
}

// AggregatedPosition is the cross-trader rollup for one market outcome,
// keyed by conditionId + "-" + outcomeIndex.
type AggregatedPosition struct {
	Key            string               `json:"key"`
	ConditionID    string               `json:"conditionId"`
	Title          string               `json:"title"`
	Slug           string               `json:"slug"`
	Icon           string               `json:"icon"`
	EventSlug      string               `json:"eventSlug"`
	Outcome        string               `json:"outcome"`
	OutcomeIndex   int                  `json:"outcomeIndex"`
	Traders        []TraderContribution `json:"traders"`
	TotalExposure  float64              `json:"totalExposure"`
	AvgEntry       float64              `json:"avgEntry"`
	CurPrice       float64              `json:"curPrice"`
	Change24h      float64              `json:"change24h"`
	PriceChangePct float64              `json:"priceChangePct"`
}

// PortfolioSummary carries concentration metrics computed over the
// unfiltered position set, so its totals may exceed the sum of emitted
// rows when a min-USD filter is active. That is intentional.
type PortfolioSummary struct {
	TotalExposure   float64 `json:"totalExposure"`
	DistinctMarkets int     `json:"distinctMarkets"`
	Top1Share       float64 `json:"top1Share"`
	Top5Share       float64 `json:"top5Share"`
	NetFlow24h      float64 `json:"netFlow24h"`
}

// AggregatedBook is the aggregated_portfolio.json document.
type AggregatedBook struct {
	Positions []AggregatedPosition `json:"positions"`
	Summary   PortfolioSummary     `json:"summary"`
}
