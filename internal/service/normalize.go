package service

import (
	"github.com/shopspring/decimal"

	"whaletrack/internal/client/polymarket/data"
	"whaletrack/internal/models"
)

// Normalization happens once at the fetch boundary: the loosely-typed API
// payloads are mapped into concrete records with the documented fallback
// precedence, so downstream code never re-checks for absent fields.

// resolveOutcome settles the outcomeIndex/outcome pair. An absent index is
// derived from the outcome string (Yes=1, everything else 0); when both are
// given and disagree on a Yes/No market, the index is authoritative.
func resolveOutcome(index *int, outcome string) (int, string) {
	if index == nil {
		if outcome == "Yes" {
			return 1, outcome
		}
		if outcome == "" {
			return 0, "No"
		}
		return 0, outcome
	}
	idx := *index
	switch outcome {
	case "":
		if idx == 1 {
			return idx, "Yes"
		}
		return idx, "No"
	case "Yes":
		if idx != 1 {
			return idx, "No"
		}
	case "No":
		if idx == 1 {
			return idx, "Yes"
		}
	}
	return idx, outcome
}

func normalizePosition(w data.Position) models.Position {
	idx, outcome := resolveOutcome(w.OutcomeIndex, w.Outcome)

	currentValue := 0.0
	if w.CurrentValue != nil {
		currentValue = *w.CurrentValue
	}
	cashPnL := 0.0
	if w.CashPnL != nil {
		cashPnL = *w.CashPnL
	} else if w.PnL != nil {
		cashPnL = *w.PnL
	}

	return models.Position{
		ConditionID:  w.ConditionID,
		OutcomeIndex: idx,
		Outcome:      outcome,
		Title:        w.Title,
		Slug:         w.Slug,
		Icon:         w.Icon,
		EventSlug:    w.EventSlug,
		Size:         w.Size,
		AvgPrice:     w.AvgPrice,
		CurPrice:     w.CurPrice,
		CurrentValue: currentValue,
		CashPnL:      cashPnL,
	}
}

func normalizePositions(ws []data.Position) []models.Position {
	out := make([]models.Position, 0, len(ws))
	for _, w := range ws {
		out = append(out, normalizePosition(w))
	}
	return out
}

func normalizeActivity(w data.Activity, traderAddress string) models.ActivityEvent {
	idx, outcome := resolveOutcome(w.OutcomeIndex, w.Outcome)

	usdcSize := 0.0
	if w.UsdcSize != nil {
		usdcSize = *w.UsdcSize
	}
	addr := traderAddress
	if addr == "" {
		addr = w.ProxyWallet
	}

	return models.ActivityEvent{
		Timestamp:     w.Timestamp,
		Type:          w.Type,
		Side:          w.Side,
		ConditionID:   w.ConditionID,
		OutcomeIndex:  idx,
		Outcome:       outcome,
		Size:          w.Size,
		UsdcSize:      usdcSize,
		Price:         w.Price,
		TraderAddress: addr,
		Title:         w.Title,
		Slug:          w.Slug,
		EventSlug:     w.EventSlug,
	}
}

// round2 and round1 settle the documented output precision: money to two
// decimals, percentages to one, shares to four.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func round4(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}
