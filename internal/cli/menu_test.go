package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/store-inventory/internal/catalog"
	"github.com/xenking/store-inventory/internal/domain/order"
	"github.com/xenking/store-inventory/internal/domain/product"
	"github.com/xenking/store-inventory/internal/domain/promotion"
	"github.com/xenking/store-inventory/internal/domain/store"
)

type fixture struct {
	macbook *product.Standard
	license *product.NonStocked
	store   *store.Store
	promos  []catalog.Entry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	macbook, err := product.NewStandard("MacBook Air M2", decimal.NewFromInt(1450), 100)
	require.NoError(t, err)
	license, err := product.NewNonStocked("Windows License", decimal.NewFromInt(125))
	require.NoError(t, err)

	return &fixture{
		macbook: macbook,
		license: license,
		store:   store.New(macbook, license),
		promos: []catalog.Entry{
			{ID: "half", Promotion: promotion.NewSecondHalfPrice("Second Half price!")},
		},
	}
}

func run(t *testing.T, f *fixture, input ...string) string {
	t.Helper()

	orders, err := order.NewService(f.store, tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)

	var out bytes.Buffer
	m := New(Config{}, f.store, orders, f.promos, zaptest.NewLogger(t),
		strings.NewReader(strings.Join(input, "\n")+"\n"), &out)
	require.NoError(t, m.Run(context.Background()))
	return out.String()
}

func TestMenu_ListAndTotal(t *testing.T) {
	f := newFixture(t)

	out := run(t, f, "1", "2", "6")

	assert.Contains(t, out, "Welcome to Best Buy!")
	assert.Contains(t, out, "1. MacBook Air M2, Price: 1450, Quantity: 100, Promotion: None")
	assert.Contains(t, out, "2. Windows License, Price: 125, Quantity: 0, Promotion: None, unlimited stock")
	assert.Contains(t, out, "Total quantity of all products in store: 100")
	assert.Contains(t, out, "Thank you for visiting Best Buy!")
}

func TestMenu_Order(t *testing.T) {
	f := newFixture(t)

	out := run(t, f,
		"3",
		"1", "5", // 5 MacBooks
		"2", "3", // 3 licenses
		"",
		"6",
	)

	assert.Contains(t, out, "Added 5x MacBook Air M2 to your order.")
	assert.Contains(t, out, "Added 3x Windows License to your order.")
	assert.Contains(t, out, "Your order has been processed. Total cost: 7625")
	assert.Equal(t, 95, f.macbook.Quantity())
}

func TestMenu_OrderInputValidation(t *testing.T) {
	f := newFixture(t)

	out := run(t, f,
		"3",
		"abc",
		"9",
		"1", "0",
		"1", "x",
		"1", "101",
		"",
		"6",
	)

	assert.Contains(t, out, "Invalid input. Please enter a number.")
	assert.Contains(t, out, "Invalid selection. Please try again.")
	assert.Contains(t, out, "Invalid amount. Please enter a positive number.")
	assert.Contains(t, out, "Insufficient quantity of MacBook Air M2 in stock.")
	assert.Contains(t, out, "No items in your order.")
	assert.Equal(t, 100, f.macbook.Quantity())
}

func TestMenu_OrderFailureIsReported(t *testing.T) {
	f := newFixture(t)

	// Both lines pass the menu's own checks, but together exceed the stock.
	out := run(t, f,
		"3",
		"1", "60",
		"1", "60",
		"",
		"6",
	)

	assert.Contains(t, out, "Error processing order:")
	assert.Contains(t, out, "already taken from stock")
	assert.Equal(t, 40, f.macbook.Quantity())
}

func TestMenu_Promotions(t *testing.T) {
	f := newFixture(t)

	out := run(t, f,
		"4", "1", "1",
		"3", "1", "5", "",
		"5", "1",
		"5", "1",
		"6",
	)

	assert.Contains(t, out, `Promotion "Second Half price!" applied to MacBook Air M2.`)
	// 3 x 1450 + 2 x 725
	assert.Contains(t, out, "Total cost: 5800")
	assert.Contains(t, out, "Promotion removed from MacBook Air M2.")
	assert.Contains(t, out, "MacBook Air M2 has no promotion.")
	assert.Nil(t, f.macbook.Promotion())
}

func TestMenu_InvalidChoice(t *testing.T) {
	f := newFixture(t)

	out := run(t, f, "7", "6")
	assert.Contains(t, out, "Invalid choice. Please enter a number between 1 and 6.")
}

func TestMenu_EndOfInput(t *testing.T) {
	f := newFixture(t)

	var out bytes.Buffer
	orders, err := order.NewService(f.store, tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)

	m := New(Config{StoreName: "Corner Shop"}, f.store, orders, nil, zaptest.NewLogger(t),
		strings.NewReader("1\n"), &out)
	require.NoError(t, m.Run(context.Background()))

	assert.Contains(t, out.String(), "Welcome to Corner Shop!")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestMenu_NoPromotionsConfigured(t *testing.T) {
	f := newFixture(t)
	f.promos = nil

	out := run(t, f, "4", "1", "6")
	assert.Contains(t, out, "No promotions available.")
}

func TestMayBePartial(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"empty", order.ErrEmptyItems, false},
		{"invalid quantity", &order.InvalidQuantityError{ProductID: "x"}, false},
		{"unknown product", &order.ProductNotFoundError{ProductID: "x"}, false},
		{"unavailable", errors.Wrap(&store.ProductUnavailableError{Name: "x"}, "process order"), true},
		{"insufficient stock", errors.Wrap(product.ErrInsufficientStock, "process order"), true},
		{"order limit", errors.Wrap(product.ErrOrderLimitExceeded, "process order"), true},
		{"invalid argument", errors.Wrap(product.ErrInvalidArgument, "process order"), true},
		{"unexpected", errors.New("boom"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mayBePartial(tt.err))
		})
	}
}
