package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"whaletrack/internal/models"
	"whaletrack/internal/repository"
	"whaletrack/internal/service"
)

// TrackerHandler serves the latest run documents and the snapshot history.
type TrackerHandler struct {
	Repo repository.Repository
}

func (h *TrackerHandler) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.GET("/metadata", h.metadata)
	v1.GET("/portfolios", h.portfolios)
	v1.GET("/aggregated", h.aggregated)
	v1.GET("/changes", h.changes)
	v1.GET("/changes/position", h.positionChanges)
	v1.GET("/runs", h.runs)
}

func (h *TrackerHandler) latest(c *gin.Context) *models.RunSnapshot {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return nil
	}
	snap, err := h.Repo.GetLatestRunSnapshot(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return nil
	}
	if snap == nil {
		Error(c, http.StatusNotFound, "no completed runs yet", nil)
		return nil
	}
	return snap
}

func (h *TrackerHandler) metadata(c *gin.Context) {
	snap := h.latest(c)
	if snap == nil {
		return
	}
	Ok(c, models.RunMetadata{
		LastUpdated:    snap.RunAt,
		TraderCount:    snap.TraderCount,
		TradersFetched: snap.TradersFetched,
		MarketCount:    snap.MarketCount,
		TotalExposure:  snap.TotalExposure.InexactFloat64(),
		ActivityCount:  snap.ActivityCount,
	}, nil)
}

func (h *TrackerHandler) portfolios(c *gin.Context) {
	snap := h.latest(c)
	if snap == nil {
		return
	}
	Ok(c, json.RawMessage(snap.Portfolios), runMeta(snap))
}

func (h *TrackerHandler) aggregated(c *gin.Context) {
	snap := h.latest(c)
	if snap == nil {
		return
	}
	Ok(c, json.RawMessage(snap.Aggregated), runMeta(snap))
}

func (h *TrackerHandler) changes(c *gin.Context) {
	snap := h.latest(c)
	if snap == nil {
		return
	}
	Ok(c, json.RawMessage(snap.Changes), runMeta(snap))
}

func (h *TrackerHandler) positionChanges(c *gin.Context) {
	conditionID := strings.TrimSpace(c.Query("condition_id"))
	if conditionID == "" {
		Error(c, http.StatusBadRequest, "condition_id is required", nil)
		return
	}
	outcomeIndex := intQuery(c, "outcome_index", 0)

	snap := h.latest(c)
	if snap == nil {
		return
	}
	var recent models.RecentChanges
	if err := json.Unmarshal(snap.Changes, &recent); err != nil {
		Error(c, http.StatusInternalServerError, "stored changes document is unreadable", nil)
		return
	}
	out := service.PositionChanges(recent.Changes, conditionID, outcomeIndex, time.Now().UTC())
	Ok(c, out, runMeta(snap))
}

func (h *TrackerHandler) runs(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListRunSnapshotsParams{
		Limit:  limit,
		Offset: offset,
		Since:  timeQuery(c, "since"),
		Until:  timeQuery(c, "until"),
	}
	items, err := h.Repo.ListRunSnapshots(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountRunSnapshots(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	// History listing omits the document payloads.
	type runRow struct {
		ID             uint64    `json:"id"`
		RunAt          time.Time `json:"run_at"`
		TraderCount    int       `json:"trader_count"`
		TradersFetched int       `json:"traders_fetched"`
		MarketCount    int       `json:"market_count"`
		TotalExposure  float64   `json:"total_exposure"`
		ActivityCount  int       `json:"activity_count"`
	}
	rows := make([]runRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, runRow{
			ID:             it.ID,
			RunAt:          it.RunAt,
			TraderCount:    it.TraderCount,
			TradersFetched: it.TradersFetched,
			MarketCount:    it.MarketCount,
			TotalExposure:  it.TotalExposure.InexactFloat64(),
			ActivityCount:  it.ActivityCount,
		})
	}
	Ok(c, rows, map[string]any{"limit": limit, "offset": offset, "total": total})
}

func runMeta(snap *models.RunSnapshot) map[string]any {
	return map[string]any{"run_at": snap.RunAt, "run_id": snap.ID}
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func timeQuery(c *gin.Context, name string) *time.Time {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	t := ts.UTC()
	return &t
}
