package product

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-inventory/internal/domain/promotion"
)

// Sentinel errors returned by product constructors and operations.
var (
	// ErrInvalidArgument is returned for an empty name, a negative price or
	// quantity, a non-positive per-order cap or a non-positive buy amount.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientStock is returned when a buy exceeds the quantity in stock.
	ErrInsufficientStock = errors.New("not enough quantity in stock")
	// ErrOrderLimitExceeded is returned when a buy exceeds a limited
	// product's per-order cap.
	ErrOrderLimitExceeded = errors.New("order limit exceeded")
	// ErrUnsupportedOperation is returned when setting a nonzero quantity on
	// a non-stocked product.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Kind identifies the product variant.
type Kind string

const (
	KindStandard   Kind = "standard"
	KindNonStocked Kind = "non_stocked"
	KindLimited    Kind = "limited"
)

// Product is the capability shared by every product variant.
//
// A product is owned by a single actor: methods do no locking of their own.
type Product interface {
	ID() string
	Name() string
	Kind() Kind
	Price() decimal.Decimal
	Quantity() int
	// SetQuantity replaces the stock quantity. Zero deactivates the product
	// and a positive value activates it.
	SetQuantity(quantity int) error
	IsActive() bool
	Activate()
	Deactivate()
	// Buy removes amount units from stock and returns their cost. The
	// attached promotion, when present, fully replaces amount × price. A
	// failed buy leaves the product untouched.
	Buy(amount int) (decimal.Decimal, error)
	Promotion() promotion.Promotion
	SetPromotion(p promotion.Promotion)
	RemovePromotion()
	Describe() string
}

var (
	_ Product = (*Standard)(nil)
	_ Product = (*NonStocked)(nil)
	_ Product = (*Limited)(nil)
)
