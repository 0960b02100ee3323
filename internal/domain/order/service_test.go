package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/store-inventory/internal/domain/product"
	"github.com/xenking/store-inventory/internal/domain/promotion"
	"github.com/xenking/store-inventory/internal/domain/store"
)

// --- Helpers ---

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestProduct(t *testing.T, name string, price decimal.Decimal, quantity int) *product.Standard {
	t.Helper()
	p, err := product.NewStandard(name, price, quantity)
	require.NoError(t, err)
	return p
}

func newService(t *testing.T, s *store.Store) *Service {
	t.Helper()
	svc, err := NewService(s, tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)
	return svc
}

// --- Tests ---

func TestPlaceOrder_EmptyItems(t *testing.T) {
	svc := newService(t, store.New())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{})
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	p1 := newTestProduct(t, "Widget", d("10"), 5)
	svc := newService(t, store.New(p1))

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []OrderItem{{ProductID: p1.ID(), Quantity: 0}},
	})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, p1.ID(), iqErr.ProductID)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 5, p1.Quantity())
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	p1 := newTestProduct(t, "Widget", d("10"), 5)
	svc := newService(t, store.New(p1))

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []OrderItem{
			{ProductID: p1.ID(), Quantity: 1},
			{ProductID: "missing", Quantity: 1},
		},
	})

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, "missing", pnfErr.ProductID)
	// Unknown ids are rejected before any line is applied.
	assert.Equal(t, 5, p1.Quantity())
}

func TestPlaceOrder(t *testing.T) {
	p1 := newTestProduct(t, "Widget", d("10.00"), 5)
	p2 := newTestProduct(t, "Gadget", d("20.00"), 5)
	p2.SetPromotion(promotion.NewPercentDiscount("50% off", d("50")))
	svc := newService(t, store.New(p1, p2))

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []OrderItem{
			{ProductID: p1.ID(), Quantity: 2},
			{ProductID: p2.ID(), Quantity: 1},
		},
	})

	require.NoError(t, err)
	assert.True(t, d("30.00").Equal(result.Order.Total), "got %s", result.Order.Total)
	assert.NotEmpty(t, result.Order.ID)
	assert.Len(t, result.Order.Items, 2)
	require.Len(t, result.Products, 2)
	assert.Equal(t, p1.ID(), result.Products[0].ID)
	assert.Equal(t, 3, result.Products[0].Quantity)
	assert.Equal(t, 3, p1.Quantity())
	assert.Equal(t, 4, p2.Quantity())
}

func TestPlaceOrder_UnavailableProduct(t *testing.T) {
	p1 := newTestProduct(t, "Widget", d("10"), 5)
	p2 := newTestProduct(t, "Gadget", d("20"), 5)
	p2.Deactivate()
	svc := newService(t, store.New(p1, p2))

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []OrderItem{
			{ProductID: p1.ID(), Quantity: 2},
			{ProductID: p2.ID(), Quantity: 1},
		},
	})

	require.ErrorIs(t, err, store.ErrProductUnavailable)
	assert.Contains(t, err.Error(), "process order")
	// The first line is not rolled back.
	assert.Equal(t, 3, p1.Quantity())
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	p1 := newTestProduct(t, "Widget", d("10"), 1)
	svc := newService(t, store.New(p1))

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []OrderItem{{ProductID: p1.ID(), Quantity: 2}},
	})
	require.ErrorIs(t, err, product.ErrInsufficientStock)
}

func TestPlaceOrder_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	p1 := newTestProduct(t, "Widget", d("10"), 5)
	svc, err := NewService(store.New(p1), tracenoop.NewTracerProvider(), mp)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.PlaceOrder(ctx, PlaceOrderRequest{Items: []OrderItem{{ProductID: p1.ID(), Quantity: 1}}})
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, PlaceOrderRequest{})
	require.Error(t, err)
	_, err = svc.PlaceOrder(ctx, PlaceOrderRequest{Items: []OrderItem{{ProductID: p1.ID(), Quantity: 10}}})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, m.Name)
			for _, dp := range sum.DataPoints {
				got[m.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{
		"store.orders.placed": 1,
		"store.orders.failed": 2,
	}, got)
}
