package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/store-inventory/internal/domain/store"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems      = errors.New("items required")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// Is matches ErrInvalidQuantity.
func (e *InvalidQuantityError) Is(target error) bool {
	return target == ErrInvalidQuantity
}

// Service encapsulates order placement against a store.
type Service struct {
	store  *store.Store
	tracer trace.Tracer
	placed metric.Int64Counter
	failed metric.Int64Counter
}

// NewService creates an order Service on top of s.
func NewService(s *store.Store, tp trace.TracerProvider, mp metric.MeterProvider) (*Service, error) {
	meter := mp.Meter("store-inventory/order")

	placed, err := meter.Int64Counter("store.orders.placed",
		metric.WithDescription("Orders processed successfully"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create placed counter")
	}
	failed, err := meter.Int64Counter("store.orders.failed",
		metric.WithDescription("Orders rejected or stopped on an invalid line"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create failed counter")
	}

	return &Service{
		store:  s,
		tracer: tp.Tracer("store-inventory/order"),
		placed: placed,
		failed: failed,
	}, nil
}

// PlaceOrder validates the request, resolves every product id in the store
// and runs the order.
//
// Request-level problems (no items, bad quantity, unknown product) are
// reported before any stock changes. Errors from store.Order keep its
// semantics: lines applied before the failing one stay applied.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (_ *PlaceOrderResult, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder",
		trace.WithAttributes(attribute.Int("order.lines", len(req.Items))),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
			s.failed.Add(ctx, 1)
		} else {
			s.placed.Add(ctx, 1)
		}
		span.End()
	}()

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	selections := make([]store.Selection, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}

		p, err := s.store.Lookup(item.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: item.ProductID}
			}
			return nil, errors.Wrap(err, "lookup product")
		}
		selections[i] = store.Selection{Product: p, Amount: item.Quantity}
	}

	receipt, err := s.store.Checkout(selections)
	if err != nil {
		return nil, errors.Wrap(err, "process order")
	}

	o := &Order{
		ID:    uuid.New().String(),
		Items: req.Items,
		Total: receipt.Total,
	}
	span.SetAttributes(attribute.String("order.id", o.ID))

	return &PlaceOrderResult{
		Order:    o,
		Products: receipt.Products,
	}, nil
}
