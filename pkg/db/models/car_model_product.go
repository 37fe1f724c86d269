package models

import "time"

const ProductOnline = 1

// CarModelProduct is a rentable offering of one car model at one store.
// Prices and deposits are in cents.
type CarModelProduct struct {
	ID                      int64     `gorm:"column:id;primaryKey"`
	TenantID                int64     `gorm:"column:tenant_id;not null"`
	StoreID                 int64     `gorm:"column:store_id;not null;index"`
	CarModelID              int64     `gorm:"column:car_model_id;not null"`
	ProductName             string    `gorm:"column:product_name"`
	DamageDeposit           *int64    `gorm:"column:damage_deposit"`
	ViolationDeposit        *int64    `gorm:"column:violation_deposit"`
	WeekdayPrice            *int64    `gorm:"column:weekday_price"`
	WeekendPrice            *int64    `gorm:"column:weekend_price"`
	VASTemplateID           *int64    `gorm:"column:vas_template_id"`
	VASTemplateIDVip        *int64    `gorm:"column:vas_template_id_vip"`
	VASTemplateIDVvip       *int64    `gorm:"column:vas_template_id_vvip"`
	CancellationTemplateID  *int64    `gorm:"column:cancellation_template_id"`
	ServicePolicyTemplateID *int64    `gorm:"column:service_policy_template_id"`
	OnlineStatus            int       `gorm:"column:online_status;not null;default:0"`
	Deleted                 int       `gorm:"column:deleted;not null;default:0"`
	CreatedTime             time.Time `gorm:"column:created_time;autoCreateTime"`
	UpdatedTime             time.Time `gorm:"column:updated_time;autoUpdateTime"`
}

func (CarModelProduct) TableName() string { return "car_model_product" }
