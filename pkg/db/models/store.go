package models

import (
	"time"

	"github.com/angelmondragon/rental-pricing/pkg/types"
)

const (
	StoreAuditApproved = 1
	StoreOnline        = 1
)

// Store mirrors the base-data store row the quote engine reads.
type Store struct {
	ID                int64            `gorm:"column:id;primaryKey"`
	TenantID          int64            `gorm:"column:tenant_id;not null"`
	StoreName         string           `gorm:"column:store_name;not null"`
	City              *string          `gorm:"column:city"`
	Address           *string          `gorm:"column:address"`
	Longitude         float64          `gorm:"column:longitude;not null"`
	Latitude          float64          `gorm:"column:latitude;not null"`
	BusinessStartTime *types.TimeOfDay `gorm:"column:business_start_time"`
	BusinessEndTime   *types.TimeOfDay `gorm:"column:business_end_time"`
	AuditStatus       int              `gorm:"column:audit_status;not null;default:0"`
	OnlineStatus      int              `gorm:"column:online_status;not null;default:0"`
	MinAdvanceHours   *int             `gorm:"column:min_advance_hours"`
	MaxAdvanceDays    *int             `gorm:"column:max_advance_days"`
	ServiceFee        *int64           `gorm:"column:service_fee"`
	Deleted           int              `gorm:"column:deleted;not null;default:0"`
	CreatedTime       time.Time        `gorm:"column:created_time;autoCreateTime"`
	UpdatedTime       time.Time        `gorm:"column:updated_time;autoUpdateTime"`
}

func (Store) TableName() string { return "store" }
