package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"whaletrack/internal/models"
	"whaletrack/internal/repository"
)

type stubRepo struct {
	latest *models.RunSnapshot
	items  []models.RunSnapshot
}

func (s *stubRepo) InsertRunSnapshot(ctx context.Context, item *models.RunSnapshot) error {
	s.items = append(s.items, *item)
	return nil
}

func (s *stubRepo) GetLatestRunSnapshot(ctx context.Context) (*models.RunSnapshot, error) {
	return s.latest, nil
}

func (s *stubRepo) ListRunSnapshots(ctx context.Context, params repository.ListRunSnapshotsParams) ([]models.RunSnapshot, error) {
	return s.items, nil
}

func (s *stubRepo) CountRunSnapshots(ctx context.Context, params repository.ListRunSnapshotsParams) (int64, error) {
	return int64(len(s.items)), nil
}

func (s *stubRepo) DeleteRunSnapshotsBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func testEngine(repo repository.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := &TrackerHandler{Repo: repo}
	h.Register(engine)
	return engine
}

func sampleSnapshot(t *testing.T) *models.RunSnapshot {
	t.Helper()
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	changes, err := json.Marshal(models.RecentChanges{
		Changes: []models.ChangeRecord{{
			Timestamp:     now.Add(-time.Minute).Unix(),
			Trader:        "alpha",
			TraderAddress: "0xaaa",
			ConditionID:   "0xc1",
			OutcomeIndex:  1,
			Action:        "increased",
			Delta:         30,
		}},
		WindowSummaries: map[string]float64{"1h": 30, "6h": 30, "24h": 30, "7d": 30, "30d": 30},
	})
	if err != nil {
		t.Fatalf("marshal changes: %v", err)
	}
	return &models.RunSnapshot{
		ID:             1,
		RunAt:          now,
		TraderCount:    2,
		TradersFetched: 2,
		MarketCount:    1,
		TotalExposure:  decimal.NewFromFloat(77.5),
		ActivityCount:  1,
		Portfolios:     []byte(`{}`),
		Aggregated:     []byte(`{"positions":[],"summary":{}}`),
		Changes:        changes,
	}
}

func get(t *testing.T, engine *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not json: %v (%s)", err, rec.Body.String())
	}
	return rec, body
}

func TestMetadata_FromLatestSnapshot(t *testing.T) {
	engine := testEngine(&stubRepo{latest: sampleSnapshot(t)})

	rec, body := get(t, engine, "/api/v1/metadata")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("no data envelope: %v", body)
	}
	if data["trader_count"].(float64) != 2 {
		t.Fatalf("trader_count=%v", data["trader_count"])
	}
	if data["total_exposure"].(float64) != 77.5 {
		t.Fatalf("total_exposure=%v", data["total_exposure"])
	}
}

func TestLatest_NoRunsYet(t *testing.T) {
	engine := testEngine(&stubRepo{})

	rec, _ := get(t, engine, "/api/v1/metadata")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", rec.Code)
	}
}

func TestPositionChanges_RequiresConditionID(t *testing.T) {
	engine := testEngine(&stubRepo{latest: sampleSnapshot(t)})

	rec, _ := get(t, engine, "/api/v1/changes/position")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rec.Code)
	}
}

func TestPositionChanges_RepliesPerWindow(t *testing.T) {
	engine := testEngine(&stubRepo{latest: sampleSnapshot(t)})

	rec, body := get(t, engine, "/api/v1/changes/position?condition_id=0xc1&outcome_index=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	windows, ok := body["data"].([]any)
	if !ok || len(windows) != 3 {
		t.Fatalf("data=%v want 3 windows", body["data"])
	}
}

func TestRuns_ListWithPagingMeta(t *testing.T) {
	snap := sampleSnapshot(t)
	engine := testEngine(&stubRepo{latest: snap, items: []models.RunSnapshot{*snap}})

	rec, body := get(t, engine, "/api/v1/runs?limit=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	rows, ok := body["data"].([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("data=%v want 1 row", body["data"])
	}
	row := rows[0].(map[string]any)
	if _, hasDocs := row["portfolios"]; hasDocs {
		t.Fatalf("history row must not carry document payloads: %v", row)
	}
	meta := body["meta"].(map[string]any)
	if meta["total"].(float64) != 1 {
		t.Fatalf("meta=%v", meta)
	}
}
