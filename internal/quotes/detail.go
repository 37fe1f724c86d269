package quotes

import (
	"context"

	"github.com/angelmondragon/rental-pricing/pkg/money"
)

func (s *service) enrich(ctx context.Context, quote Quote) Detail {
	detail := Detail{
		Quote:              quote,
		ValueAddedServices: []ValueAddedService{},
	}

	product, err := s.policies.FindProductByStoreAndModel(ctx, quote.StoreID, quote.CarModelID)
	if err != nil {
		s.logg.Error(ctx, "product lookup for quote detail failed", err)
		return detail
	}
	if product == nil {
		s.logg.Warn(ctx, "product for quote detail no longer exists")
		return detail
	}

	detail.ValueAddedServices = s.valueAddedServices(ctx, *product, quote.TotalPrice.Currency)

	if product.CancellationTemplateID != nil {
		policy, err := s.policies.FindCancellationPolicy(ctx, *product.CancellationTemplateID)
		switch {
		case err != nil:
			s.logg.Error(ctx, "cancellation policy lookup failed", err)
		case policy != nil:
			detail.CancellationPolicy = *policy
		}
	}

	if product.ServicePolicyTemplateID != nil {
		policy, err := s.policies.FindServicePolicy(ctx, *product.ServicePolicyTemplateID)
		switch {
		case err != nil:
			s.logg.Error(ctx, "service policy lookup failed", err)
		case policy != nil:
			detail.ServicePolicy = *policy
		}
	}

	return detail
}

func (s *service) valueAddedServices(ctx context.Context, product ProductOffering, currency string) []ValueAddedService {
	out := []ValueAddedService{}
	ids := product.ValueAddedServiceTemplateIDs()
	if len(ids) == 0 {
		return out
	}

	templates, err := s.policies.ListValueAddedServiceTemplates(ctx)
	if err != nil {
		s.logg.Error(ctx, "value added service lookup failed", err)
		return out
	}

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for _, tpl := range templates {
		if _, ok := wanted[tpl.ID]; ok {
			out = append(out, toValueAddedService(tpl, currency))
		}
	}
	return out
}

func toValueAddedService(tpl ValueAddedServiceTemplate, currency string) ValueAddedService {
	price := money.Zero(currency)
	if tpl.PriceCents != nil {
		price = money.Money{Amount: *tpl.PriceCents, Currency: price.Currency}
	}
	return ValueAddedService{
		ID:                     tpl.ID,
		Name:                   tpl.Name,
		ServiceType:            tpl.ServiceType,
		Price:                  price,
		Deductible:             tpl.Deductible,
		IncludeTireDamage:      flag(tpl.IncludeTireDamage),
		IncludeGlassDamage:     flag(tpl.IncludeGlassDamage),
		ThirdPartyCoverage:     tpl.ThirdPartyCoverage,
		ChargeDepreciation:     flag(tpl.ChargeDepreciation),
		DepreciationDeductible: tpl.DepreciationDeductible,
		DepreciationRate:       tpl.DepreciationRate,
	}
}

func flag(v *int) bool {
	return v != nil && *v == 1
}
