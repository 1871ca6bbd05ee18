package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RunSnapshot persists the four documents of one completed run so the read
// API can serve the latest state and a bounded history.
type RunSnapshot struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	RunAt          time.Time       `gorm:"type:timestamptz;not null;index" json:"run_at"`
	TraderCount    int             `gorm:"not null;default:0" json:"trader_count"`
	TradersFetched int             `gorm:"not null;default:0" json:"traders_fetched"`
	MarketCount    int             `gorm:"not null;default:0" json:"market_count"`
	TotalExposure  decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0" json:"total_exposure"`
	ActivityCount  int             `gorm:"not null;default:0" json:"activity_count"`
	Portfolios     datatypes.JSON  `gorm:"type:jsonb" json:"portfolios"`
	Aggregated     datatypes.JSON  `gorm:"type:jsonb" json:"aggregated"`
	Changes        datatypes.JSON  `gorm:"type:jsonb" json:"changes"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (RunSnapshot) TableName() string {
	return "run_snapshots"
}
