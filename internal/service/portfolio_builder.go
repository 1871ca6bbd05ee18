package service

import (
	"time"

	"whaletrack/internal/fetcher"
	"whaletrack/internal/models"
)

// BuildPortfolios joins the per-address positions and value results into
// trader-keyed portfolios. FetchSuccess requires both sub-fetches to have
// succeeded; a partial failure keeps the trader in the map (so the output
// document shows the error) but downstream aggregation skips it.
func BuildPortfolios(
	traders []models.Trader,
	positions map[string]fetcher.Result[[]models.Position],
	values map[string]fetcher.Result[float64],
	now time.Time,
) map[string]models.TraderPortfolio {
	out := make(map[string]models.TraderPortfolio, len(traders))
	for _, t := range traders {
		posRes := positions[t.Address]
		valRes := values[t.Address]

		p := models.TraderPortfolio{
			Address:      t.Address,
			Label:        t.Label,
			Tier:         t.Tier,
			FetchSuccess: posRes.Success() && valRes.Success(),
			LastUpdated:  now,
		}
		if posRes.Success() {
			p.Positions = posRes.Value
		}
		if valRes.Success() {
			p.TotalValue = valRes.Value
		}
		if posRes.Err != nil {
			p.FetchError = posRes.Err.Error()
		} else if valRes.Err != nil {
			p.FetchError = valRes.Err.Error()
		}

		pnl := 0.0
		for _, pos := range p.Positions {
			pnl += pos.CashPnL
		}
		p.TotalPnL = round2(pnl)

		out[t.Address] = p
	}
	return out
}
