package quotes

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/angelmondragon/rental-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/rental-pricing/pkg/errors"
	"github.com/angelmondragon/rental-pricing/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator("CNY", 3000)
	require.NoError(t, err)
	return calc
}

func requestOn(date string) Request {
	return Request{Date: mustDate(date), Time: types.MustTimeOfDay("10:00"), Longitude: 121.47, Latitude: 31.23}
}

func TestPriceForUsesWeekendRateOnSaturday(t *testing.T) {
	calc := newTestCalculator(t)
	q, err := calc.PriceFor(openStore(1), product(11, 1), requestOn("2025-03-15"), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "400.00", q.DailyRate.String())
	assert.False(t, q.SpecialPricing)
	assert.Equal(t, "10.00", q.StoreFee.String())
	assert.Equal(t, "30.00", q.BaseProtectionPrice.String())
	assert.Equal(t, "440.00", q.TotalPrice.String())
	assert.Equal(t, "CNY", q.TotalPrice.Currency)
}

func TestPriceForUsesWeekdayRateOnMonday(t *testing.T) {
	calc := newTestCalculator(t)
	q, err := calc.PriceFor(openStore(1), product(11, 1), requestOn("2025-03-17"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "300.00", q.DailyRate.String())
}

func TestPriceForOverrideReplacesRate(t *testing.T) {
	calc := newTestCalculator(t)
	req := requestOn("2025-03-15")
	override := &SpecialPricingOverride{ProductID: 11, Date: req.Date, PriceCents: 12345}

	q, err := calc.PriceFor(openStore(1), product(11, 1), req, nil, override)
	require.NoError(t, err)
	assert.Equal(t, "123.45", q.DailyRate.String())
	assert.True(t, q.SpecialPricing)
	assert.Equal(t, "163.45", q.TotalPrice.String())
}

func TestPriceForIgnoresOverrideForOtherProductOrDate(t *testing.T) {
	calc := newTestCalculator(t)
	req := requestOn("2025-03-15")

	for _, o := range []*SpecialPricingOverride{
		{ProductID: 99, Date: req.Date, PriceCents: 1},
		{ProductID: 11, Date: types.Date{Year: req.Date.Year, Month: req.Date.Month, Day: req.Date.Day + 1}, PriceCents: 1},
	} {
		q, err := calc.PriceFor(openStore(1), product(11, 1), req, nil, o)
		require.NoError(t, err)
		assert.Equal(t, "400.00", q.DailyRate.String())
		assert.False(t, q.SpecialPricing)
	}
}

func TestPriceForOverrideCoversMissingDayPrice(t *testing.T) {
	calc := newTestCalculator(t)
	req := requestOn("2025-03-15")
	p := product(11, 1)
	p.WeekendPriceCents = nil

	_, err := calc.PriceFor(openStore(1), p, req, nil, nil)
	require.ErrorIs(t, err, ErrMissingField)

	q, err := calc.PriceFor(openStore(1), p, req, nil, &SpecialPricingOverride{ProductID: 11, Date: req.Date, PriceCents: 5000})
	require.NoError(t, err)
	assert.Equal(t, "50.00", q.DailyRate.String())
}

func TestPriceForPickupOnlyDoorToDoorFallsBackToInStore(t *testing.T) {
	calc := newTestCalculator(t)
	rules := []ServiceAreaRule{pickupRule(1, 2000)}

	q, err := calc.PriceFor(openStore(1), product(11, 1), requestOn("2025-03-17"), rules, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryTypeInStore, q.DeliveryType)
	assert.Zero(t, q.PickupFee.Amount)
	assert.Zero(t, q.ReturnFee.Amount)
	assert.Equal(t, "340.00", q.TotalPrice.String())
}

func TestPriceForDoorToDoorNeedsBothRules(t *testing.T) {
	calc := newTestCalculator(t)
	notDoor := ServiceAreaRule{StoreID: 1, AreaType: enums.AreaTypeReturn, DoorToDoorDelivery: false, DeliveryFeeCents: int64Ptr(9999)}
	rules := []ServiceAreaRule{notDoor, pickupRule(1, 2000), returnRule(1, 1500), returnRule(1, 7000)}

	q, err := calc.PriceFor(openStore(1), product(11, 1), requestOn("2025-03-17"), rules, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryTypeDoorToDoor, q.DeliveryType)
	assert.Equal(t, "20.00", q.PickupFee.String())
	assert.Equal(t, "15.00", q.ReturnFee.String())
	assert.Equal(t, "375.00", q.TotalPrice.String())
}

func TestPriceForMissingFieldsAreComputationErrors(t *testing.T) {
	calc := newTestCalculator(t)

	noFee := openStore(1)
	noFee.ServiceFeeCents = nil
	_, err := calc.PriceFor(noFee, product(11, 1), requestOn("2025-03-17"), nil, nil)
	require.ErrorIs(t, err, ErrMissingField)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeComputation))

	noWeekday := product(11, 1)
	noWeekday.WeekdayPriceCents = nil
	_, err = calc.PriceFor(openStore(1), noWeekday, requestOn("2025-03-17"), nil, nil)
	require.ErrorIs(t, err, ErrMissingField)

	rules := []ServiceAreaRule{
		{AreaType: enums.AreaTypePickup, DoorToDoorDelivery: true},
		returnRule(1, 100),
	}
	_, err = calc.PriceFor(openStore(1), product(11, 1), requestOn("2025-03-17"), rules, nil)
	require.True(t, errors.Is(err, ErrMissingField))
}

func TestPriceForCarriesIdentityAndDeposits(t *testing.T) {
	calc := newTestCalculator(t)
	p := product(11, 1)
	p.DamageDepositCents = int64Ptr(500000)
	req := requestOn("2025-03-17")

	q, err := calc.PriceFor(openStore(1), p, req, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), q.StoreID)
	assert.Equal(t, "store-1", q.StoreName)
	assert.Equal(t, int64(11), q.ProductID)
	assert.Equal(t, int64(110), q.CarModelID)
	assert.Equal(t, int64(7), q.TenantID)
	assert.Equal(t, req.Date, q.PickupDate)
	assert.Equal(t, "5000.00", q.DamageDeposit.String())
	assert.Zero(t, q.ViolationDeposit.Amount)
	assert.Equal(t, "340.00", q.TotalPrice.String(), "deposits are not part of the total")
	assert.Empty(t, q.ID)
}

func TestPriceForTotalIsExactSum(t *testing.T) {
	calc := newTestCalculator(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		store := openStore(1)
		store.ServiceFeeCents = int64Ptr(rng.Int63n(100000))
		p := product(11, 1)
		p.WeekdayPriceCents = int64Ptr(rng.Int63n(10_000_000))
		rules := []ServiceAreaRule{pickupRule(1, rng.Int63n(50000)), returnRule(1, rng.Int63n(50000))}

		q, err := calc.PriceFor(store, p, requestOn("2025-03-17"), rules, nil)
		require.NoError(t, err)

		want := decimal.Zero
		for _, part := range []int64{*p.WeekdayPriceCents, *store.ServiceFeeCents, *rules[0].DeliveryFeeCents, *rules[1].DeliveryFeeCents, 3000} {
			want = want.Add(decimal.New(part, -2))
		}
		require.True(t, want.Equal(q.TotalPrice.Decimal()), "iteration %d: want %s got %s", i, want, q.TotalPrice)
	}
}

func TestNewCalculatorValidates(t *testing.T) {
	_, err := NewCalculator("yuan", 3000)
	assert.Error(t, err)
	_, err = NewCalculator("CNY", -1)
	assert.Error(t, err)
}
