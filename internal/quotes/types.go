package quotes

import (
	"time"

	"github.com/angelmondragon/rental-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/rental-pricing/pkg/errors"
	"github.com/angelmondragon/rental-pricing/pkg/geo"
	"github.com/angelmondragon/rental-pricing/pkg/money"
	"github.com/angelmondragon/rental-pricing/pkg/types"
)

// Request is a customer's search: where and when they want to pick a car up.
type Request struct {
	Date      types.Date
	Time      types.TimeOfDay
	Longitude float64
	Latitude  float64
}

// Validate checks the request shape. Date and time are parsed by the caller.
func (r Request) Validate() error {
	details := map[string]string{}
	if r.Date.IsZero() {
		details["date"] = "required"
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		details["longitude"] = "must be between -180 and 180"
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		details["latitude"] = "must be between -90 and 90"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid quote request").WithDetails(details)
	}
	return nil
}

// PickupAt is the pickup instant in the business time zone.
func (r Request) PickupAt(loc *time.Location) time.Time {
	return r.Date.At(r.Time, loc)
}

// Point is the pickup location as a geo point.
func (r Request) Point() geo.Point {
	return geo.Point{Lat: r.Latitude, Lng: r.Longitude}
}

// StoreCandidate is a store returned by the nearby lookup. Nil pointers mean
// the upstream record is missing the field.
type StoreCandidate struct {
	ID              int64
	TenantID        int64
	Name            string
	City            string
	Address         string
	Location        geo.Point
	DistanceKm      float64
	BusinessStart   *types.TimeOfDay
	BusinessEnd     *types.TimeOfDay
	MinAdvanceHours *int
	MaxAdvanceDays  *int
	ServiceFeeCents *int64
}

// ServiceAreaRule describes how a store hands over (pickup) or takes back
// (return) a car.
type ServiceAreaRule struct {
	ID                 int64
	StoreID            int64
	Name               string
	AreaType           enums.AreaType
	DoorToDoorDelivery bool
	DeliveryFeeCents   *int64
}

// ProductOffering is one car model offered by one store. Amounts are in cents.
type ProductOffering struct {
	ID                      int64
	StoreID                 int64
	TenantID                int64
	CarModelID              int64
	Name                    string
	WeekdayPriceCents       *int64
	WeekendPriceCents       *int64
	DamageDepositCents      *int64
	ViolationDepositCents   *int64
	VASTemplateID           *int64
	VASTemplateIDVip        *int64
	VASTemplateIDVvip       *int64
	CancellationTemplateID  *int64
	ServicePolicyTemplateID *int64
}

// ValueAddedServiceTemplateIDs lists the standard, vip and vvip template ids that are set.
func (p ProductOffering) ValueAddedServiceTemplateIDs() []int64 {
	ids := make([]int64, 0, 3)
	for _, id := range []*int64{p.VASTemplateID, p.VASTemplateIDVip, p.VASTemplateIDVvip} {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	return ids
}

// SpecialPricingOverride replaces the day rate of a product on one date.
type SpecialPricingOverride struct {
	ProductID  int64
	Date       types.Date
	PriceCents int64
}

// Quote is an immutable priced offer, redeemable by ID until ExpiresAt.
type Quote struct {
	ID                  string             `json:"quote_id"`
	StoreID             int64              `json:"store_id"`
	StoreName           string             `json:"store_name"`
	TenantID            int64              `json:"tenant_id"`
	ProductID           int64              `json:"product_id"`
	ProductName         string             `json:"product_name"`
	CarModelID          int64              `json:"car_model_id"`
	PickupDate          types.Date         `json:"pickup_date"`
	PickupTime          types.TimeOfDay    `json:"pickup_time"`
	DailyRate           money.Money        `json:"daily_rate"`
	SpecialPricing      bool               `json:"special_pricing"`
	StoreFee            money.Money        `json:"store_fee"`
	BaseProtectionPrice money.Money        `json:"base_protection_price"`
	DeliveryType        enums.DeliveryType `json:"delivery_type"`
	PickupFee           money.Money        `json:"pickup_fee"`
	ReturnFee           money.Money        `json:"return_fee"`
	TotalPrice          money.Money        `json:"total_price"`
	DamageDeposit       money.Money        `json:"damage_deposit"`
	ViolationDeposit    money.Money        `json:"violation_deposit"`
	CreatedAt           time.Time          `json:"created_at"`
	ExpiresAt           time.Time          `json:"expires_at"`
}

// ValueAddedServiceTemplate is an add-on as stored by the product catalog.
// PriceCents is in cents; the other amounts are passed through untouched.
type ValueAddedServiceTemplate struct {
	ID                     int64
	Name                   string
	ServiceType            *int
	PriceCents             *int64
	Deductible             *int64
	IncludeTireDamage      *int
	IncludeGlassDamage     *int
	ThirdPartyCoverage     *int64
	ChargeDepreciation     *int
	DepreciationDeductible *int64
	DepreciationRate       *int
}

// ValueAddedService is an add-on offered on a quote detail.
type ValueAddedService struct {
	ID                     int64       `json:"id"`
	Name                   string      `json:"template_name"`
	ServiceType            *int        `json:"service_type,omitempty"`
	Price                  money.Money `json:"price"`
	Deductible             *int64      `json:"deductible,omitempty"`
	IncludeTireDamage      bool        `json:"include_tire_damage"`
	IncludeGlassDamage     bool        `json:"include_glass_damage"`
	ThirdPartyCoverage     *int64      `json:"third_party_coverage,omitempty"`
	ChargeDepreciation     bool        `json:"charge_depreciation"`
	DepreciationDeductible *int64      `json:"depreciation_deductible,omitempty"`
	DepreciationRate       *int        `json:"depreciation_rate,omitempty"`
}

// CancellationPolicy is the cancellation rule template shown on a quote detail.
type CancellationPolicy struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"template_name,omitempty"`
	WeekdayRule string `json:"weekday_rule,omitempty"`
	HolidayRule string `json:"holiday_rule,omitempty"`
}

// ServicePolicy is the free-text rental terms of a product.
type ServicePolicy struct {
	ID                     int64  `json:"id,omitempty"`
	Name                   string `json:"template_name,omitempty"`
	MileageLimit           string `json:"mileage_limit,omitempty"`
	EarlyPickup            string `json:"early_pickup,omitempty"`
	LatePickup             string `json:"late_pickup,omitempty"`
	EarlyReturn            string `json:"early_return,omitempty"`
	Renewal                string `json:"renewal,omitempty"`
	ForcedRenewal          string `json:"forced_renewal,omitempty"`
	PickupMaterials        string `json:"pickup_materials,omitempty"`
	CityRestriction        string `json:"city_restriction,omitempty"`
	UsageAreaLimit         string `json:"usage_area_limit,omitempty"`
	FuelFee                string `json:"fuel_fee,omitempty"`
	PersonalBelongingsLoss string `json:"personal_belongings_loss,omitempty"`
	ViolationHandling      string `json:"violation_handling,omitempty"`
	RoadsideAssistance     string `json:"roadside_assistance,omitempty"`
	ForcedRecovery         string `json:"forced_recovery,omitempty"`
	EtcFee                 string `json:"etc_fee,omitempty"`
	CleaningFee            string `json:"cleaning_fee,omitempty"`
	InvoiceInfo            string `json:"invoice_info,omitempty"`
}

// Detail is a cached quote enriched with the product's policies at read time.
type Detail struct {
	Quote              Quote               `json:"quote"`
	ValueAddedServices []ValueAddedService `json:"value_added_services"`
	CancellationPolicy CancellationPolicy  `json:"cancellation_policy"`
	ServicePolicy      ServicePolicy       `json:"service_policy"`
}
