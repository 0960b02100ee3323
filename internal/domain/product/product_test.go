package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/store-inventory/internal/domain/promotion"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newMacBook(t *testing.T, quantity int) *Standard {
	t.Helper()
	p, err := NewStandard("MacBook Air M2", d("1450"), quantity)
	require.NoError(t, err)
	return p
}

func TestNewStandard(t *testing.T) {
	p := newMacBook(t, 100)

	assert.Equal(t, "MacBook Air M2", p.Name())
	assert.True(t, d("1450").Equal(p.Price()))
	assert.Equal(t, 100, p.Quantity())
	assert.True(t, p.IsActive())
	assert.NotEmpty(t, p.ID())
	assert.Equal(t, KindStandard, p.Kind())
	assert.Nil(t, p.Promotion())
}

func TestNewStandard_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		price    decimal.Decimal
		quantity int
	}{
		{name: "empty name", title: "", price: d("1450"), quantity: 100},
		{name: "blank name", title: "   ", price: d("1450"), quantity: 100},
		{name: "negative price", title: "MacBook Air M2", price: d("-10"), quantity: 100},
		{name: "negative quantity", title: "MacBook Air M2", price: d("1450"), quantity: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStandard(tt.title, tt.price, tt.quantity)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestNewStandard_ZeroQuantityInactive(t *testing.T) {
	p := newMacBook(t, 0)
	assert.False(t, p.IsActive())
}

func TestNewStandard_FreeProduct(t *testing.T) {
	p, err := NewStandard("Sticker", decimal.Zero, 3)
	require.NoError(t, err)
	assert.True(t, p.Price().IsZero())
}

func TestBuy(t *testing.T) {
	p := newMacBook(t, 100)

	cost, err := p.Buy(5)
	require.NoError(t, err)
	assert.True(t, d("7250").Equal(cost), "got %s", cost)
	assert.Equal(t, 95, p.Quantity())
	assert.True(t, p.IsActive())
}

func TestBuy_AllStockDeactivates(t *testing.T) {
	p := newMacBook(t, 5)

	cost, err := p.Buy(5)
	require.NoError(t, err)
	assert.True(t, d("7250").Equal(cost))
	assert.Equal(t, 0, p.Quantity())
	assert.False(t, p.IsActive())
}

func TestBuy_InsufficientStock(t *testing.T) {
	p := newMacBook(t, 100)

	_, err := p.Buy(150)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 100, p.Quantity())
	assert.True(t, p.IsActive())
}

func TestBuy_NonPositiveAmount(t *testing.T) {
	p := newMacBook(t, 10)

	for _, amount := range []int{0, -3} {
		_, err := p.Buy(amount)
		require.ErrorIs(t, err, ErrInvalidArgument)
	}
	assert.Equal(t, 10, p.Quantity())
}

func TestBuy_QuantityMonotonic(t *testing.T) {
	p := newMacBook(t, 10)

	for _, n := range []int{1, 2, 3, 4} {
		before := p.Quantity()
		_, err := p.Buy(n)
		require.NoError(t, err)
		assert.Equal(t, before-n, p.Quantity())
		assert.Equal(t, p.Quantity() > 0, p.IsActive())
	}
	assert.False(t, p.IsActive())
}

func TestBuy_NeverReactivates(t *testing.T) {
	p := newMacBook(t, 10)
	p.Deactivate()

	_, err := p.Buy(1)
	require.NoError(t, err)
	assert.False(t, p.IsActive())
}

func TestBuy_WithPromotion(t *testing.T) {
	p, err := NewStandard("Bose QuietComfort Earbuds", d("250"), 500)
	require.NoError(t, err)
	p.SetPromotion(promotion.NewSecondHalfPrice("Second Half price!"))

	cost, err := p.Buy(5)
	require.NoError(t, err)
	assert.True(t, d("1000").Equal(cost), "got %s", cost)
	assert.Equal(t, 495, p.Quantity())

	p.RemovePromotion()
	assert.Nil(t, p.Promotion())

	cost, err = p.Buy(5)
	require.NoError(t, err)
	assert.True(t, d("1250").Equal(cost), "got %s", cost)
}

func TestSetQuantity(t *testing.T) {
	p := newMacBook(t, 10)

	require.NoError(t, p.SetQuantity(0))
	assert.Equal(t, 0, p.Quantity())
	assert.False(t, p.IsActive())

	require.NoError(t, p.SetQuantity(7))
	assert.Equal(t, 7, p.Quantity())
	assert.True(t, p.IsActive())

	require.ErrorIs(t, p.SetQuantity(-1), ErrInvalidArgument)
	assert.Equal(t, 7, p.Quantity())
}

func TestActivateDeactivate_Idempotent(t *testing.T) {
	p := newMacBook(t, 10)

	p.Deactivate()
	p.Deactivate()
	assert.False(t, p.IsActive())
	assert.Equal(t, 10, p.Quantity())

	p.Activate()
	p.Activate()
	assert.True(t, p.IsActive())
}

func TestActivate_IndependentOfQuantity(t *testing.T) {
	p := newMacBook(t, 0)

	p.Activate()
	assert.True(t, p.IsActive())
	assert.Equal(t, 0, p.Quantity())
}

func TestNonStocked(t *testing.T) {
	p, err := NewNonStocked("Windows License", d("125"))
	require.NoError(t, err)

	assert.True(t, p.IsActive())
	assert.Equal(t, 0, p.Quantity())
	assert.Equal(t, KindNonStocked, p.Kind())

	cost, err := p.Buy(1000)
	require.NoError(t, err)
	assert.True(t, d("125000").Equal(cost))
	assert.Equal(t, 0, p.Quantity())
	assert.True(t, p.IsActive())

	require.NoError(t, p.SetQuantity(0))
	require.ErrorIs(t, p.SetQuantity(5), ErrUnsupportedOperation)
	assert.Equal(t, 0, p.Quantity())

	_, err = p.Buy(0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNonStocked_WithPromotion(t *testing.T) {
	p, err := NewNonStocked("Windows License", d("10"))
	require.NoError(t, err)
	p.SetPromotion(promotion.NewThirdOneFree("Third One Free!"))

	cost, err := p.Buy(9)
	require.NoError(t, err)
	assert.True(t, d("60").Equal(cost))
}

func TestNonStocked_Invalid(t *testing.T) {
	_, err := NewNonStocked("", d("125"))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewNonStocked("Windows License", d("-1"))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLimited(t *testing.T) {
	p, err := NewLimited("Shipping", d("10"), 250, 1)
	require.NoError(t, err)
	assert.Equal(t, KindLimited, p.Kind())
	assert.Equal(t, 1, p.MaxPerOrder())

	_, err = p.Buy(2)
	require.ErrorIs(t, err, ErrOrderLimitExceeded)
	assert.Equal(t, 250, p.Quantity())

	cost, err := p.Buy(1)
	require.NoError(t, err)
	assert.True(t, d("10").Equal(cost))
	assert.Equal(t, 249, p.Quantity())
}

func TestLimited_CapCheckedBeforeStock(t *testing.T) {
	p, err := NewLimited("Shipping", d("10"), 1, 2)
	require.NoError(t, err)

	_, err = p.Buy(3)
	require.ErrorIs(t, err, ErrOrderLimitExceeded)

	_, err = p.Buy(2)
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = p.Buy(1)
	require.NoError(t, err)
	assert.False(t, p.IsActive())
}

func TestLimited_Invalid(t *testing.T) {
	for _, limit := range []int{0, -1} {
		_, err := NewLimited("Shipping", d("10"), 250, limit)
		require.ErrorIs(t, err, ErrInvalidArgument)
	}

	_, err := NewLimited("Shipping", d("10"), -5, 1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDescribe(t *testing.T) {
	std := newMacBook(t, 100)
	assert.Equal(t, "MacBook Air M2, Price: 1450, Quantity: 100, Promotion: None", std.Describe())

	std.SetPromotion(promotion.NewPercentDiscount("30% off!", d("30")))
	assert.Equal(t, "MacBook Air M2, Price: 1450, Quantity: 100, Promotion: 30% off!", std.String())

	ns, err := NewNonStocked("Windows License", d("125"))
	require.NoError(t, err)
	assert.Equal(t, "Windows License, Price: 125, Quantity: 0, Promotion: None, unlimited stock", ns.Describe())
	assert.Equal(t, ns.Describe(), ns.String())

	lim, err := NewLimited("Shipping", d("10"), 250, 1)
	require.NoError(t, err)
	assert.Equal(t, "Shipping, Price: 10, Quantity: 250, Promotion: None, limited to 1 per order", lim.Describe())
}

func TestSnapshot(t *testing.T) {
	std := newMacBook(t, 100)
	promo := promotion.NewPercentDiscount("30% off!", d("30"))
	std.SetPromotion(promo)

	v := Snapshot(std)
	assert.Equal(t, std.ID(), v.ID)
	assert.Equal(t, KindStandard, v.Kind)
	assert.True(t, d("1450").Equal(v.Price))
	assert.Equal(t, 100, v.Quantity)
	assert.True(t, v.Active)
	assert.Zero(t, v.MaxPerOrder)
	assert.Same(t, promo, v.Promotion)
	assert.Equal(t, std.Describe(), v.Description)

	// Later changes do not reach the copy.
	_, err := std.Buy(100)
	require.NoError(t, err)
	std.RemovePromotion()
	assert.Equal(t, 100, v.Quantity)
	assert.True(t, v.Active)
	assert.NotNil(t, v.Promotion)

	lim, err := NewLimited("Shipping", d("10"), 250, 1)
	require.NoError(t, err)
	lv := Snapshot(lim)
	assert.Equal(t, KindLimited, lv.Kind)
	assert.Equal(t, 1, lv.MaxPerOrder)
	assert.Nil(t, lv.Promotion)
}
