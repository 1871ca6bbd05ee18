package models

import "time"

// RunMetadata is the metadata.json document describing one completed run.
type RunMetadata struct {
	LastUpdated    time.Time `json:"last_updated"`
	TraderCount    int       `json:"trader_count"`
	TradersFetched int       `json:"traders_fetched"`
	MarketCount    int       `json:"market_count"`
	TotalExposure  float64   `json:"total_exposure"`
	ActivityCount  int       `json:"activity_count"`
}
