package models

// ValueAddedServiceTemplate is an insurance style add-on. Flag columns hold 0 or 1.
type ValueAddedServiceTemplate struct {
	ID                     int64  `gorm:"column:id;primaryKey"`
	TenantID               int64  `gorm:"column:tenant_id;not null"`
	TemplateName           string `gorm:"column:template_name"`
	ServiceType            *int   `gorm:"column:service_type"`
	Price                  *int64 `gorm:"column:price"`
	Deductible             *int64 `gorm:"column:deductible"`
	IncludeTireDamage      *int   `gorm:"column:include_tire_damage"`
	IncludeGlassDamage     *int   `gorm:"column:include_glass_damage"`
	ThirdPartyCoverage     *int64 `gorm:"column:third_party_coverage"`
	ChargeDepreciation     *int   `gorm:"column:charge_depreciation"`
	DepreciationDeductible *int64 `gorm:"column:depreciation_deductible"`
	DepreciationRate       *int   `gorm:"column:depreciation_rate"`
	Deleted                int    `gorm:"column:deleted;not null;default:0"`
}

func (ValueAddedServiceTemplate) TableName() string { return "value_added_service_template" }

type CancellationRuleTemplate struct {
	ID           int64   `gorm:"column:id;primaryKey"`
	TenantID     int64   `gorm:"column:tenant_id;not null"`
	TemplateName string  `gorm:"column:template_name"`
	WeekdayRule  *string `gorm:"column:weekday_rule"`
	HolidayRule  *string `gorm:"column:holiday_rule"`
	Deleted      int     `gorm:"column:deleted;not null;default:0"`
}

func (CancellationRuleTemplate) TableName() string { return "cancellation_rule_template" }

// ServicePolicyTemplate holds the free-text rental terms shown on a quote detail.
type ServicePolicyTemplate struct {
	ID                     int64   `gorm:"column:id;primaryKey"`
	TenantID               int64   `gorm:"column:tenant_id;not null"`
	TemplateName           string  `gorm:"column:template_name"`
	MileageLimit           *string `gorm:"column:mileage_limit"`
	EarlyPickup            *string `gorm:"column:early_pickup"`
	LatePickup             *string `gorm:"column:late_pickup"`
	EarlyReturn            *string `gorm:"column:early_return"`
	Renewal                *string `gorm:"column:renewal"`
	ForcedRenewal          *string `gorm:"column:forced_renewal"`
	PickupMaterials        *string `gorm:"column:pickup_materials"`
	CityRestriction        *string `gorm:"column:city_restriction"`
	UsageAreaLimit         *string `gorm:"column:usage_area_limit"`
	FuelFee                *string `gorm:"column:fuel_fee"`
	PersonalBelongingsLoss *string `gorm:"column:personal_belongings_loss"`
	ViolationHandling      *string `gorm:"column:violation_handling"`
	RoadsideAssistance     *string `gorm:"column:roadside_assistance"`
	ForcedRecovery         *string `gorm:"column:forced_recovery"`
	EtcFee                 *string `gorm:"column:etc_fee"`
	CleaningFee            *string `gorm:"column:cleaning_fee"`
	InvoiceInfo            *string `gorm:"column:invoice_info"`
	Deleted                int     `gorm:"column:deleted;not null;default:0"`
}

func (ServicePolicyTemplate) TableName() string { return "service_policy_template" }
