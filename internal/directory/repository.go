package directory

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/angelmondragon/rental-pricing/internal/quotes"
	"github.com/angelmondragon/rental-pricing/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rental-pricing/pkg/errors"
	"github.com/angelmondragon/rental-pricing/pkg/geo"
	"github.com/angelmondragon/rental-pricing/pkg/types"
	"gorm.io/gorm"
)

const notDeleted = "deleted = 0"

// Repository serves the directory from the local read model.
type Repository struct {
	db *gorm.DB
}

var (
	_ quotes.Directory     = (*Repository)(nil)
	_ quotes.PolicyCatalog = (*Repository)(nil)
)

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("gorm db required")
	}
	return &Repository{db: db}, nil
}

// FindStoresNear returns audited, online stores within radiusKm of center,
// nearest first.
func (r *Repository) FindStoresNear(ctx context.Context, center geo.Point, radiusKm float64) ([]quotes.StoreCandidate, error) {
	box := geo.BoundingBox(center, radiusKm)

	query := r.db.WithContext(ctx).
		Where(notDeleted).
		Where("audit_status = ? AND online_status = ?", models.StoreAuditApproved, models.StoreOnline).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)

	ranges := box.LngRanges()
	if len(ranges) == 1 {
		query = query.Where("longitude BETWEEN ? AND ?", ranges[0][0], ranges[0][1])
	} else {
		query = query.Where("(longitude BETWEEN ? AND ?) OR (longitude BETWEEN ? AND ?)",
			ranges[0][0], ranges[0][1], ranges[1][0], ranges[1][1])
	}

	var rows []models.Store
	if err := query.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query nearby stores")
	}

	out := make([]quotes.StoreCandidate, 0, len(rows))
	for _, row := range rows {
		candidate := storeFromModel(row)
		if !geo.WithinRadius(center, candidate.Location, radiusKm) {
			continue
		}
		candidate.DistanceKm = geo.DistanceKm(center, candidate.Location)
		out = append(out, candidate)
	}
	slices.SortStableFunc(out, func(a, b quotes.StoreCandidate) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *Repository) FindServiceAreasByStore(ctx context.Context, storeID int64) ([]quotes.ServiceAreaRule, error) {
	var rows []models.ServiceArea
	err := r.db.WithContext(ctx).
		Where(notDeleted).
		Where("store_id = ?", storeID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query service areas")
	}

	out := make([]quotes.ServiceAreaRule, 0, len(rows))
	for _, row := range rows {
		out = append(out, serviceAreaDTO{
			ID:                 row.ID,
			StoreID:            row.StoreID,
			AreaName:           row.AreaName,
			AreaType:           row.AreaType,
			DoorToDoorDelivery: &row.DoorToDoorDelivery,
			DeliveryFee:        row.DeliveryFee,
		}.toRule())
	}
	return out, nil
}

// FindProductsByStore lists the store's online products in id order.
func (r *Repository) FindProductsByStore(ctx context.Context, storeID int64) ([]quotes.ProductOffering, error) {
	var rows []models.CarModelProduct
	err := r.db.WithContext(ctx).
		Where(notDeleted).
		Where("store_id = ? AND online_status = ?", storeID, models.ProductOnline).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query store products")
	}

	out := make([]quotes.ProductOffering, 0, len(rows))
	for _, row := range rows {
		out = append(out, productFromModel(row))
	}
	return out, nil
}

func (r *Repository) FindSpecialPricing(ctx context.Context, tenantID, productID int64, date types.Date) (*quotes.SpecialPricingOverride, error) {
	var row models.SpecialPricing
	err := r.db.WithContext(ctx).
		Where(notDeleted).
		Where("tenant_id = ? AND product_id = ? AND price_date = ?", tenantID, productID, date).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query special pricing")
	}
	return &quotes.SpecialPricingOverride{ProductID: row.ProductID, Date: row.PriceDate, PriceCents: row.Price}, nil
}

func (r *Repository) FindProductByStoreAndModel(ctx context.Context, storeID, carModelID int64) (*quotes.ProductOffering, error) {
	var row models.CarModelProduct
	err := r.db.WithContext(ctx).
		Where(notDeleted).
		Where("store_id = ? AND car_model_id = ?", storeID, carModelID).
		Order("id").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query product by model")
	}
	offering := productFromModel(row)
	return &offering, nil
}

func (r *Repository) ListValueAddedServiceTemplates(ctx context.Context) ([]quotes.ValueAddedServiceTemplate, error) {
	var rows []models.ValueAddedServiceTemplate
	if err := r.db.WithContext(ctx).Where(notDeleted).Order("id").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query value added services")
	}

	out := make([]quotes.ValueAddedServiceTemplate, 0, len(rows))
	for _, row := range rows {
		out = append(out, quotes.ValueAddedServiceTemplate{
			ID:                     row.ID,
			Name:                   row.TemplateName,
			ServiceType:            row.ServiceType,
			PriceCents:             row.Price,
			Deductible:             row.Deductible,
			IncludeTireDamage:      row.IncludeTireDamage,
			IncludeGlassDamage:     row.IncludeGlassDamage,
			ThirdPartyCoverage:     row.ThirdPartyCoverage,
			ChargeDepreciation:     row.ChargeDepreciation,
			DepreciationDeductible: row.DepreciationDeductible,
			DepreciationRate:       row.DepreciationRate,
		})
	}
	return out, nil
}

func (r *Repository) FindCancellationPolicy(ctx context.Context, templateID int64) (*quotes.CancellationPolicy, error) {
	var row models.CancellationRuleTemplate
	err := r.db.WithContext(ctx).Where(notDeleted).Where("id = ?", templateID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query cancellation policy")
	}
	return &quotes.CancellationPolicy{
		ID:          row.ID,
		Name:        row.TemplateName,
		WeekdayRule: deref(row.WeekdayRule),
		HolidayRule: deref(row.HolidayRule),
	}, nil
}

func (r *Repository) FindServicePolicy(ctx context.Context, templateID int64) (*quotes.ServicePolicy, error) {
	var row models.ServicePolicyTemplate
	err := r.db.WithContext(ctx).Where(notDeleted).Where("id = ?", templateID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query service policy")
	}
	return &quotes.ServicePolicy{
		ID:                     row.ID,
		Name:                   row.TemplateName,
		MileageLimit:           deref(row.MileageLimit),
		EarlyPickup:            deref(row.EarlyPickup),
		LatePickup:             deref(row.LatePickup),
		EarlyReturn:            deref(row.EarlyReturn),
		Renewal:                deref(row.Renewal),
		ForcedRenewal:          deref(row.ForcedRenewal),
		PickupMaterials:        deref(row.PickupMaterials),
		CityRestriction:        deref(row.CityRestriction),
		UsageAreaLimit:         deref(row.UsageAreaLimit),
		FuelFee:                deref(row.FuelFee),
		PersonalBelongingsLoss: deref(row.PersonalBelongingsLoss),
		ViolationHandling:      deref(row.ViolationHandling),
		RoadsideAssistance:     deref(row.RoadsideAssistance),
		ForcedRecovery:         deref(row.ForcedRecovery),
		EtcFee:                 deref(row.EtcFee),
		CleaningFee:            deref(row.CleaningFee),
		InvoiceInfo:            deref(row.InvoiceInfo),
	}, nil
}

func storeFromModel(row models.Store) quotes.StoreCandidate {
	return quotes.StoreCandidate{
		ID:              row.ID,
		TenantID:        row.TenantID,
		Name:            row.StoreName,
		City:            deref(row.City),
		Address:         deref(row.Address),
		Location:        geo.Point{Lat: row.Latitude, Lng: row.Longitude},
		BusinessStart:   row.BusinessStartTime,
		BusinessEnd:     row.BusinessEndTime,
		MinAdvanceHours: row.MinAdvanceHours,
		MaxAdvanceDays:  row.MaxAdvanceDays,
		ServiceFeeCents: row.ServiceFee,
	}
}

func productFromModel(row models.CarModelProduct) quotes.ProductOffering {
	return productDTO{
		ID:                      row.ID,
		StoreID:                 row.StoreID,
		TenantID:                row.TenantID,
		CarModelID:              row.CarModelID,
		ProductName:             row.ProductName,
		DamageDeposit:           row.DamageDeposit,
		ViolationDeposit:        row.ViolationDeposit,
		WeekdayPrice:            row.WeekdayPrice,
		WeekendPrice:            row.WeekendPrice,
		VASTemplateID:           row.VASTemplateID,
		VASTemplateIDVip:        row.VASTemplateIDVip,
		VASTemplateIDVvip:       row.VASTemplateIDVvip,
		CancellationTemplateID:  row.CancellationTemplateID,
		ServicePolicyTemplateID: row.ServicePolicyTemplateID,
	}.toOffering()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
