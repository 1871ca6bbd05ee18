package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"whaletrack/internal/client/polymarket/data"
	"whaletrack/internal/config"
	"whaletrack/internal/fetcher"
	"whaletrack/internal/models"
)

// positionsLimit bounds one trader's /positions page. The tracked rosters
// are small whales, not market makers; a single page is enough.
const positionsLimit = 500

// DataClient is the slice of the data-api client the sync needs.
type DataClient interface {
	GetPositions(ctx context.Context, user string, limit int) ([]data.Position, error)
	GetActivity(ctx context.Context, user string, limit int, start int64) ([]data.Activity, error)
	GetValue(ctx context.Context, user string) (float64, error)
}

// RunResult carries the four output documents of one completed run.
type RunResult struct {
	Metadata   models.RunMetadata
	Portfolios map[string]models.TraderPortfolio
	Aggregated models.AggregatedBook
	Changes    models.RecentChanges
}

// TrackerSyncService runs the full acquisition and aggregation pipeline:
// batch-fetch positions, values and activity for every tracked trader,
// build portfolios, aggregate, window, compose. Each run is a pure
// function of the roster, config and upstream state; nothing is cached
// across runs.
type TrackerSyncService struct {
	Client DataClient
	Logger *zap.Logger
	Config config.TrackerConfig

	// Now is replaced in tests.
	Now func() time.Time
}

// Run executes one sync over the given roster. Per-trader failures degrade
// into FetchSuccess=false entries; only run-level problems (empty roster,
// cancelled context) return an error, in which case no documents exist.
func (s *TrackerSyncService) Run(ctx context.Context, traders []models.Trader) (*RunResult, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("data client is nil")
	}
	if len(traders) == 0 {
		return nil, fmt.Errorf("trader roster is empty")
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}

	addresses := make([]string, 0, len(traders))
	for _, t := range traders {
		addresses = append(addresses, t.Address)
	}

	concurrency := s.Config.ConcurrencyLimit
	activityLimit := s.Config.ActivityLimitPerTrader
	activityStart := now.Add(-30 * 24 * time.Hour).Unix()

	positions := fetcher.BatchFetch(ctx, addresses, concurrency, func(ctx context.Context, addr string) ([]models.Position, error) {
		raw, err := s.Client.GetPositions(ctx, addr, positionsLimit)
		if err != nil {
			return nil, err
		}
		return normalizePositions(raw), nil
	})

	values := fetcher.BatchFetch(ctx, addresses, concurrency, func(ctx context.Context, addr string) (float64, error) {
		return s.Client.GetValue(ctx, addr)
	})

	activity := fetcher.BatchFetch(ctx, addresses, concurrency, func(ctx context.Context, addr string) ([]models.ActivityEvent, error) {
		raw, err := s.Client.GetActivity(ctx, addr, activityLimit, activityStart)
		if err != nil {
			return nil, err
		}
		out := make([]models.ActivityEvent, 0, len(raw))
		for _, a := range raw {
			out = append(out, normalizeActivity(a, addr))
		}
		return out, nil
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	portfolios := BuildPortfolios(traders, positions, values, now)

	// Flatten the activity feeds in address order so every later stage
	// sees a deterministic event sequence. An activity failure only costs
	// that trader's ledger entries, never the run.
	events := make([]models.ActivityEvent, 0)
	for _, addr := range sortedKeys(activity) {
		res := activity[addr]
		if res.Err != nil {
			if s.Logger != nil {
				s.Logger.Warn("activity fetch failed, trader excluded from ledger",
					zap.String("address", addr),
					zap.Error(res.Err),
				)
			}
			continue
		}
		events = append(events, res.Value...)
	}

	aggregator := &Aggregator{
		MinUSDFilter: s.Config.MinUSDFilter,
		Now:          func() time.Time { return now },
	}
	book := aggregator.Aggregate(portfolios, events)

	windower := &ActivityWindower{
		MaxRecentEvents: s.Config.MaxRecentEvents,
		Now:             func() time.Time { return now },
	}
	changes := windower.ProcessRecentChanges(events, portfolios)

	// Summary composition: the aggregate summary's 24h net flow comes from
	// the windowing engine, so this assignment must stay after both stages.
	book.Summary.NetFlow24h = changes.WindowSummaries["24h"]

	fetched := 0
	for _, p := range portfolios {
		if p.FetchSuccess {
			fetched++
		}
	}

	result := &RunResult{
		Metadata: models.RunMetadata{
			LastUpdated:    now,
			TraderCount:    len(traders),
			TradersFetched: fetched,
			MarketCount:    book.Summary.DistinctMarkets,
			TotalExposure:  book.Summary.TotalExposure,
			ActivityCount:  len(changes.Changes),
		},
		Portfolios: portfolios,
		Aggregated: book,
		Changes:    changes,
	}

	if s.Logger != nil {
		s.Logger.Info("tracker sync complete",
			zap.Int("traders", len(traders)),
			zap.Int("fetched", fetched),
			zap.Int("markets", book.Summary.DistinctMarkets),
			zap.Float64("total_exposure", book.Summary.TotalExposure),
			zap.Int("changes", len(changes.Changes)),
		)
	}
	return result, nil
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
