package directory

import (
	"github.com/angelmondragon/rental-pricing/internal/quotes"
	"github.com/angelmondragon/rental-pricing/pkg/db/models"
	"github.com/angelmondragon/rental-pricing/pkg/enums"
	"github.com/angelmondragon/rental-pricing/pkg/geo"
	"github.com/angelmondragon/rental-pricing/pkg/types"
)

// Upstream amounts are integer cents.

type storeDTO struct {
	ID                int64            `json:"id"`
	TenantID          int64            `json:"tenantId"`
	StoreName         string           `json:"storeName"`
	City              string           `json:"city"`
	Address           string           `json:"address"`
	Longitude         float64          `json:"longitude"`
	Latitude          float64          `json:"latitude"`
	BusinessStartTime *types.TimeOfDay `json:"businessStartTime"`
	BusinessEndTime   *types.TimeOfDay `json:"businessEndTime"`
	MinAdvanceHours   *int             `json:"minAdvanceHours"`
	MaxAdvanceDays    *int             `json:"maxAdvanceDays"`
	ServiceFee        *int64           `json:"serviceFee"`
	AuditStatus       *int             `json:"auditStatus"`
	OnlineStatus      *int             `json:"onlineStatus"`
}

// listed drops stores the upstream marks as unaudited or offline. Missing
// statuses are trusted since the nearby endpoint already filters.
func (s storeDTO) listed() bool {
	if s.AuditStatus != nil && *s.AuditStatus != models.StoreAuditApproved {
		return false
	}
	if s.OnlineStatus != nil && *s.OnlineStatus != models.StoreOnline {
		return false
	}
	return true
}

func (s storeDTO) toCandidate() quotes.StoreCandidate {
	return quotes.StoreCandidate{
		ID:              s.ID,
		TenantID:        s.TenantID,
		Name:            s.StoreName,
		City:            s.City,
		Address:         s.Address,
		Location:        geo.Point{Lat: s.Latitude, Lng: s.Longitude},
		BusinessStart:   s.BusinessStartTime,
		BusinessEnd:     s.BusinessEndTime,
		MinAdvanceHours: s.MinAdvanceHours,
		MaxAdvanceDays:  s.MaxAdvanceDays,
		ServiceFeeCents: s.ServiceFee,
	}
}

type serviceAreaDTO struct {
	ID                 int64  `json:"id"`
	StoreID            int64  `json:"storeId"`
	AreaName           string `json:"areaName"`
	AreaType           int    `json:"areaType"`
	DoorToDoorDelivery *int   `json:"doorToDoorDelivery"`
	DeliveryFee        *int64 `json:"deliveryFee"`
}

func (a serviceAreaDTO) toRule() quotes.ServiceAreaRule {
	return quotes.ServiceAreaRule{
		ID:                 a.ID,
		StoreID:            a.StoreID,
		Name:               a.AreaName,
		AreaType:           enums.AreaType(a.AreaType),
		DoorToDoorDelivery: a.DoorToDoorDelivery != nil && *a.DoorToDoorDelivery == 1,
		DeliveryFeeCents:   a.DeliveryFee,
	}
}

type productDTO struct {
	ID                      int64  `json:"id"`
	StoreID                 int64  `json:"storeId"`
	TenantID                int64  `json:"tenantId"`
	CarModelID              int64  `json:"carModelId"`
	ProductName             string `json:"productName"`
	DamageDeposit           *int64 `json:"damageDeposit"`
	ViolationDeposit        *int64 `json:"violationDeposit"`
	WeekdayPrice            *int64 `json:"weekdayPrice"`
	WeekendPrice            *int64 `json:"weekendPrice"`
	VASTemplateID           *int64 `json:"vasTemplateId"`
	VASTemplateIDVip        *int64 `json:"vasTemplateIdVip"`
	VASTemplateIDVvip       *int64 `json:"vasTemplateIdVvip"`
	CancellationTemplateID  *int64 `json:"cancellationTemplateId"`
	ServicePolicyTemplateID *int64 `json:"servicePolicyTemplateId"`
}

func (p productDTO) toOffering() quotes.ProductOffering {
	return quotes.ProductOffering{
		ID:                      p.ID,
		StoreID:                 p.StoreID,
		TenantID:                p.TenantID,
		CarModelID:              p.CarModelID,
		Name:                    p.ProductName,
		WeekdayPriceCents:       p.WeekdayPrice,
		WeekendPriceCents:       p.WeekendPrice,
		DamageDepositCents:      p.DamageDeposit,
		ViolationDepositCents:   p.ViolationDeposit,
		VASTemplateID:           p.VASTemplateID,
		VASTemplateIDVip:        p.VASTemplateIDVip,
		VASTemplateIDVvip:       p.VASTemplateIDVvip,
		CancellationTemplateID:  p.CancellationTemplateID,
		ServicePolicyTemplateID: p.ServicePolicyTemplateID,
	}
}

type specialPricingDTO struct {
	ProductID int64  `json:"productId"`
	Price     *int64 `json:"price"`
}

type valueAddedServiceDTO struct {
	ID                     int64  `json:"id"`
	TemplateName           string `json:"templateName"`
	ServiceType            *int   `json:"serviceType"`
	Price                  *int64 `json:"price"`
	Deductible             *int64 `json:"deductible"`
	IncludeTireDamage      *int   `json:"includeTireDamage"`
	IncludeGlassDamage     *int   `json:"includeGlassDamage"`
	ThirdPartyCoverage     *int64 `json:"thirdPartyCoverage"`
	ChargeDepreciation     *int   `json:"chargeDepreciation"`
	DepreciationDeductible *int64 `json:"depreciationDeductible"`
	DepreciationRate       *int   `json:"depreciationRate"`
}

func (v valueAddedServiceDTO) toTemplate() quotes.ValueAddedServiceTemplate {
	return quotes.ValueAddedServiceTemplate{
		ID:                     v.ID,
		Name:                   v.TemplateName,
		ServiceType:            v.ServiceType,
		PriceCents:             v.Price,
		Deductible:             v.Deductible,
		IncludeTireDamage:      v.IncludeTireDamage,
		IncludeGlassDamage:     v.IncludeGlassDamage,
		ThirdPartyCoverage:     v.ThirdPartyCoverage,
		ChargeDepreciation:     v.ChargeDepreciation,
		DepreciationDeductible: v.DepreciationDeductible,
		DepreciationRate:       v.DepreciationRate,
	}
}

// Field order must match quotes.CancellationPolicy for the conversion.
type cancellationPolicyDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"templateName"`
	WeekdayRule string `json:"weekdayRule"`
	HolidayRule string `json:"holidayRule"`
}

// Field order must match quotes.ServicePolicy for the conversion.
type servicePolicyDTO struct {
	ID                     int64  `json:"id"`
	Name                   string `json:"templateName"`
	MileageLimit           string `json:"mileageLimit"`
	EarlyPickup            string `json:"earlyPickup"`
	LatePickup             string `json:"latePickup"`
	EarlyReturn            string `json:"earlyReturn"`
	Renewal                string `json:"renewal"`
	ForcedRenewal          string `json:"forcedRenewal"`
	PickupMaterials        string `json:"pickupMaterials"`
	CityRestriction        string `json:"cityRestriction"`
	UsageAreaLimit         string `json:"usageAreaLimit"`
	FuelFee                string `json:"fuelFee"`
	PersonalBelongingsLoss string `json:"personalBelongingsLoss"`
	ViolationHandling      string `json:"violationHandling"`
	RoadsideAssistance     string `json:"roadsideAssistance"`
	ForcedRecovery         string `json:"forcedRecovery"`
	EtcFee                 string `json:"etcFee"`
	CleaningFee            string `json:"cleaningFee"`
	InvoiceInfo            string `json:"invoiceInfo"`
}
