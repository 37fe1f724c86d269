package models

import "time"

// ServiceArea is a pickup (area_type 1) or return (area_type 2) rule of a store.
type ServiceArea struct {
	ID                 int64     `gorm:"column:id;primaryKey"`
	TenantID           int64     `gorm:"column:tenant_id;not null"`
	StoreID            int64     `gorm:"column:store_id;not null;index"`
	AreaName           string    `gorm:"column:area_name"`
	AreaType           int       `gorm:"column:area_type;not null"`
	DoorToDoorDelivery int       `gorm:"column:door_to_door_delivery;not null;default:0"`
	DeliveryFee        *int64    `gorm:"column:delivery_fee"`
	Deleted            int       `gorm:"column:deleted;not null;default:0"`
	CreatedTime        time.Time `gorm:"column:created_time;autoCreateTime"`
	UpdatedTime        time.Time `gorm:"column:updated_time;autoUpdateTime"`
}

func (ServiceArea) TableName() string { return "service_area" }
