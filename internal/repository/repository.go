package repository

import (
	"context"
	"time"

	"whaletrack/internal/models"
)

// Repository stores run snapshots for the read API and history queries.
type Repository interface {
	InsertRunSnapshot(ctx context.Context, item *models.RunSnapshot) error
	GetLatestRunSnapshot(ctx context.Context) (*models.RunSnapshot, error)
	ListRunSnapshots(ctx context.Context, params ListRunSnapshotsParams) ([]models.RunSnapshot, error)
	CountRunSnapshots(ctx context.Context, params ListRunSnapshotsParams) (int64, error)
	DeleteRunSnapshotsBefore(ctx context.Context, before time.Time) (int64, error)
}

type ListRunSnapshotsParams struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}
