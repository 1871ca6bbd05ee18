package service

import (
	"fmt"
	"sort"
	"time"

	"whaletrack/internal/models"
)

// Aggregator merges the positions of all successfully fetched traders into
// market-outcome rollups. It is a pure function of its inputs: traders are
// visited in ascending address order so repeated runs over identical inputs
// produce identical output, including the last-writer-wins current price.
type Aggregator struct {
	// MinUSDFilter drops rollups below this exposure from the emitted
	// array. Summary stats are computed before filtering, so the summary
	// total may exceed the sum of emitted rows. Intentional.
	MinUSDFilter float64

	// Now is replaced in tests.
	Now func() time.Time
}

func positionKey(conditionID string, outcomeIndex int) string {
	return fmt.Sprintf("%s-%d", conditionID, outcomeIndex)
}

type rollup struct {
	pos         models.AggregatedPosition
	weightedSum float64
	totalSize   float64
	rawExposure float64
}

// Aggregate builds the aggregated position book. The summary's NetFlow24h
// stays zero here; the run orchestrator injects it from the windowing
// engine's output after both stages have run.
func (a *Aggregator) Aggregate(portfolios map[string]models.TraderPortfolio, events []models.ActivityEvent) models.AggregatedBook {
	now := time.Now().UTC()
	if a.Now != nil {
		now = a.Now()
	}

	change24h := a.changeMap24h(events, now)

	addresses := make([]string, 0, len(portfolios))
	for addr := range portfolios {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	rollups := make(map[string]*rollup)
	var order []string

	for _, addr := range addresses {
		p := portfolios[addr]
		if !p.FetchSuccess || p.Positions == nil {
			continue
		}
		for _, pos := range p.Positions {
			key := positionKey(pos.ConditionID, pos.OutcomeIndex)
			r, ok := rollups[key]
			if !ok {
				r = &rollup{pos: models.AggregatedPosition{
					Key:          key,
					ConditionID:  pos.ConditionID,
					Title:        pos.Title,
					Slug:         pos.Slug,
					Icon:         pos.Icon,
					EventSlug:    pos.EventSlug,
					Outcome:      pos.Outcome,
					OutcomeIndex: pos.OutcomeIndex,
				}}
				rollups[key] = r
				order = append(order, key)
			}

			exposure := pos.Exposure()
			r.pos.Traders = append(r.pos.Traders, models.TraderContribution{
				Address:  p.Address,
				Label:    p.Label,
				Exposure: round2(exposure),
				Size:     pos.Size,
				AvgPrice: pos.AvgPrice,
				CurPrice: pos.CurPrice,
			})
			r.rawExposure += exposure
			if pos.AvgPrice > 0 && pos.Size > 0 {
				r.weightedSum += pos.AvgPrice * pos.Size
				r.totalSize += pos.Size
			}
			if pos.CurPrice > 0 {
				// Last non-zero price in trader order wins. The upstream
				// feed carries no per-position observation time, so there
				// is no "most recent" to prefer.
				r.pos.CurPrice = pos.CurPrice
			}
		}
	}

	positions := make([]models.AggregatedPosition, 0, len(order))
	for _, key := range order {
		r := rollups[key]
		r.pos.TotalExposure = round2(r.rawExposure)
		if r.totalSize > 0 {
			r.pos.AvgEntry = round2(r.weightedSum / r.totalSize)
		}
		if r.pos.CurPrice > 0 && r.pos.AvgEntry > 0 {
			r.pos.PriceChangePct = round1((r.pos.CurPrice - r.pos.AvgEntry) / r.pos.AvgEntry * 100)
		}
		r.pos.Change24h = round2(change24h[key])
		positions = append(positions, r.pos)
	}

	// Ties keep encounter order.
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].TotalExposure > positions[j].TotalExposure
	})

	summary := a.summarize(positions)

	if a.MinUSDFilter > 0 {
		emitted := positions[:0]
		for _, p := range positions {
			if p.TotalExposure >= a.MinUSDFilter {
				emitted = append(emitted, p)
			}
		}
		positions = emitted
	}

	return models.AggregatedBook{Positions: positions, Summary: summary}
}

// summarize computes concentration metrics over the unfiltered, sorted set.
func (a *Aggregator) summarize(positions []models.AggregatedPosition) models.PortfolioSummary {
	var s models.PortfolioSummary

	total := 0.0
	markets := make(map[string]struct{})
	for _, p := range positions {
		total += p.TotalExposure
		markets[p.ConditionID] = struct{}{}
	}
	s.TotalExposure = round2(total)
	s.DistinctMarkets = len(markets)

	if len(positions) == 0 || total <= 0 {
		return s
	}
	s.Top1Share = round4(positions[0].TotalExposure / total)

	top5 := 0.0
	for i, p := range positions {
		if i >= 5 {
			break
		}
		top5 += p.TotalExposure
	}
	s.Top5Share = round4(top5 / total)

	return s
}

// changeMap24h accumulates signed trade flow per market outcome over the
// trailing 24 hours.
func (a *Aggregator) changeMap24h(events []models.ActivityEvent, now time.Time) map[string]float64 {
	cutoff := now.Add(-24 * time.Hour).Unix()
	out := make(map[string]float64)
	for _, e := range events {
		if !e.IsTrade() || e.Timestamp < cutoff {
			continue
		}
		out[positionKey(e.ConditionID, e.OutcomeIndex)] += e.SignedDelta()
	}
	return out
}
