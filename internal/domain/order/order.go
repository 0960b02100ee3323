package order

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/store-inventory/internal/domain/product"
)

// Order is the outcome of a processed order. It is not retained by the
// store; ID only correlates logs and responses.
type Order struct {
	ID    string
	Items []OrderItem
	Total decimal.Decimal
}

// OrderItem represents a single requested line.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Items []OrderItem
}

// PlaceOrderResult holds the output of a successfully placed order.
// Products are snapshots taken as the order completed, one per item.
type PlaceOrderResult struct {
	Order    *Order
	Products []product.View
}
