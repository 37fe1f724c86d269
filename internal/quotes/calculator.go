package quotes

import (
	"errors"
	"fmt"

	"github.com/angelmondragon/rental-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/rental-pricing/pkg/errors"
	"github.com/angelmondragon/rental-pricing/pkg/money"
)

// ErrMissingField reports a store or product without a value the price depends on.
var ErrMissingField = errors.New("required pricing field is missing")

// Calculator prices a single store/product pair. It holds no mutable state.
type Calculator struct {
	currency       string
	baseProtection money.Money
}

func NewCalculator(currency string, baseProtectionCents int64) (*Calculator, error) {
	base, err := money.New(baseProtectionCents, currency)
	if err != nil {
		return nil, fmt.Errorf("base protection: %w", err)
	}
	if baseProtectionCents < 0 {
		return nil, fmt.Errorf("base protection must not be negative")
	}
	return &Calculator{currency: base.Currency, baseProtection: base}, nil
}

// PriceFor computes the quote for product at store. The returned quote has
// no ID or timestamps yet.
func (c *Calculator) PriceFor(store StoreCandidate, product ProductOffering, req Request, rules []ServiceAreaRule, override *SpecialPricingOverride) (Quote, error) {
	rate, special, err := c.dailyRate(product, req, override)
	if err != nil {
		return Quote{}, err
	}
	if store.ServiceFeeCents == nil {
		return Quote{}, missing("store service_fee")
	}
	storeFee := c.cents(*store.ServiceFeeCents)

	delivery, pickupFee, returnFee, err := c.delivery(rules)
	if err != nil {
		return Quote{}, err
	}

	total, err := money.Sum(c.currency, rate, pickupFee, returnFee, storeFee, c.baseProtection)
	if err != nil {
		return Quote{}, pkgerrors.Wrap(pkgerrors.CodeComputation, err, "sum quote total")
	}

	return Quote{
		StoreID:             store.ID,
		StoreName:           store.Name,
		TenantID:            product.TenantID,
		ProductID:           product.ID,
		ProductName:         product.Name,
		CarModelID:          product.CarModelID,
		PickupDate:          req.Date,
		PickupTime:          req.Time,
		DailyRate:           rate,
		SpecialPricing:      special,
		StoreFee:            storeFee,
		BaseProtectionPrice: c.baseProtection,
		DeliveryType:        delivery,
		PickupFee:           pickupFee,
		ReturnFee:           returnFee,
		TotalPrice:          total,
		DamageDeposit:       c.optionalCents(product.DamageDepositCents),
		ViolationDeposit:    c.optionalCents(product.ViolationDepositCents),
	}, nil
}

func (c *Calculator) dailyRate(product ProductOffering, req Request, override *SpecialPricingOverride) (money.Money, bool, error) {
	if override != nil && override.ProductID == product.ID && override.Date == req.Date {
		return c.cents(override.PriceCents), true, nil
	}
	price, field := product.WeekdayPriceCents, "weekday_price"
	if req.Date.IsWeekend() {
		price, field = product.WeekendPriceCents, "weekend_price"
	}
	if price == nil {
		return money.Money{}, false, missing("product " + field)
	}
	return c.cents(*price), false, nil
}

// delivery is door-to-door only when the store offers it for both pickup and
// return; the first matching rule of each kind sets the fee.
func (c *Calculator) delivery(rules []ServiceAreaRule) (enums.DeliveryType, money.Money, money.Money, error) {
	zero := money.Zero(c.currency)
	pickup := firstDoorToDoor(rules, enums.AreaTypePickup)
	ret := firstDoorToDoor(rules, enums.AreaTypeReturn)
	if pickup == nil || ret == nil {
		return enums.DeliveryTypeInStore, zero, zero, nil
	}
	if pickup.DeliveryFeeCents == nil || ret.DeliveryFeeCents == nil {
		return "", zero, zero, missing("service area delivery_fee")
	}
	return enums.DeliveryTypeDoorToDoor, c.cents(*pickup.DeliveryFeeCents), c.cents(*ret.DeliveryFeeCents), nil
}

func firstDoorToDoor(rules []ServiceAreaRule, kind enums.AreaType) *ServiceAreaRule {
	for i := range rules {
		if rules[i].AreaType == kind && rules[i].DoorToDoorDelivery {
			return &rules[i]
		}
	}
	return nil
}

func (c *Calculator) cents(amount int64) money.Money {
	return money.Money{Amount: amount, Currency: c.currency}
}

func (c *Calculator) optionalCents(amount *int64) money.Money {
	if amount == nil {
		return money.Zero(c.currency)
	}
	return c.cents(*amount)
}

func missing(field string) error {
	return pkgerrors.Wrap(pkgerrors.CodeComputation, fmt.Errorf("%w: %s", ErrMissingField, field), "price quote")
}
