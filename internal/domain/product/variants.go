package product

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// NonStocked is a product without inventory, such as a license or a
// digital download. Its quantity is always zero and buying never touches
// stock.
type NonStocked struct {
	*Standard
}

// NewNonStocked creates an always-active product with no stock.
func NewNonStocked(name string, price decimal.Decimal) (*NonStocked, error) {
	s, err := NewStandard(name, price, 0)
	if err != nil {
		return nil, err
	}
	s.Activate()

	return &NonStocked{Standard: s}, nil
}

func (n *NonStocked) Kind() Kind { return KindNonStocked }

// SetQuantity accepts only zero, which is a no-op.
func (n *NonStocked) SetQuantity(quantity int) error {
	if quantity != 0 {
		return errors.Wrap(ErrUnsupportedOperation, "cannot set quantity for non-stocked products")
	}
	return nil
}

// Buy prices amount units without checking or reducing stock.
func (n *NonStocked) Buy(amount int) (decimal.Decimal, error) {
	if amount <= 0 {
		return decimal.Zero, errors.Wrapf(ErrInvalidArgument, "amount must be positive, got %d", amount)
	}
	return n.cost(amount), nil
}

// Describe implements Product.
func (n *NonStocked) Describe() string {
	return n.Standard.Describe() + ", unlimited stock"
}

func (n *NonStocked) String() string { return n.Describe() }

// Limited is a stock-tracked product with a cap on the amount bought at once.
type Limited struct {
	*Standard
	maxPerOrder int
}

// NewLimited creates a stock-tracked product that can be bought at most
// maxPerOrder units at a time.
func NewLimited(name string, price decimal.Decimal, quantity, maxPerOrder int) (*Limited, error) {
	if maxPerOrder <= 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "max per order must be positive")
	}

	s, err := NewStandard(name, price, quantity)
	if err != nil {
		return nil, err
	}

	return &Limited{Standard: s, maxPerOrder: maxPerOrder}, nil
}

func (l *Limited) Kind() Kind { return KindLimited }

// MaxPerOrder returns the per-order cap.
func (l *Limited) MaxPerOrder() int { return l.maxPerOrder }

// Buy rejects amounts above the cap regardless of stock, then behaves like
// a standard product.
func (l *Limited) Buy(amount int) (decimal.Decimal, error) {
	if amount > l.maxPerOrder {
		return decimal.Zero, errors.Wrapf(ErrOrderLimitExceeded,
			"cannot purchase more than %d of %s per order", l.maxPerOrder, l.name)
	}
	return l.Standard.Buy(amount)
}

// Describe implements Product.
func (l *Limited) Describe() string {
	return fmt.Sprintf("%s, limited to %d per order", l.Standard.Describe(), l.maxPerOrder)
}

func (l *Limited) String() string { return l.Describe() }
