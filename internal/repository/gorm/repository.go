package gormrepository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"whaletrack/internal/models"
	"whaletrack/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repository.Repository = (*Store)(nil)

func (s *Store) InsertRunSnapshot(ctx context.Context, item *models.RunSnapshot) error {
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetLatestRunSnapshot(ctx context.Context) (*models.RunSnapshot, error) {
	var item models.RunSnapshot
	err := s.db.WithContext(ctx).Order("run_at DESC").First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListRunSnapshots(ctx context.Context, params repository.ListRunSnapshotsParams) ([]models.RunSnapshot, error) {
	q := s.listQuery(ctx, params)
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	var items []models.RunSnapshot
	err := q.Order("run_at DESC").Limit(limit).Offset(params.Offset).Find(&items).Error
	return items, err
}

func (s *Store) CountRunSnapshots(ctx context.Context, params repository.ListRunSnapshotsParams) (int64, error) {
	var n int64
	err := s.listQuery(ctx, params).Count(&n).Error
	return n, err
}

func (s *Store) DeleteRunSnapshotsBefore(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("run_at < ?", before).Delete(&models.RunSnapshot{})
	return res.RowsAffected, res.Error
}

func (s *Store) listQuery(ctx context.Context, params repository.ListRunSnapshotsParams) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.RunSnapshot{})
	if params.Since != nil {
		q = q.Where("run_at >= ?", *params.Since)
	}
	if params.Until != nil {
		q = q.Where("run_at <= ?", *params.Until)
	}
	return q
}
