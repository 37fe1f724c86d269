package models

import (
	"time"

	"github.com/angelmondragon/rental-pricing/pkg/types"
)

// SpecialPricing overrides a product's day rate on one calendar date.
type SpecialPricing struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	TenantID    int64      `gorm:"column:tenant_id;not null"`
	ProductID   int64      `gorm:"column:product_id;not null"`
	PriceDate   types.Date `gorm:"column:price_date;not null"`
	Price       int64      `gorm:"column:price;not null"`
	Deleted     int        `gorm:"column:deleted;not null;default:0"`
	CreatedTime time.Time  `gorm:"column:created_time;autoCreateTime"`
	UpdatedTime time.Time  `gorm:"column:updated_time;autoUpdateTime"`
}

func (SpecialPricing) TableName() string { return "special_pricing" }
