package product

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-inventory/internal/domain/promotion"
)

// Standard is a stock-tracked product.
type Standard struct {
	id       string
	name     string
	price    decimal.Decimal
	quantity int
	active   bool
	promo    promotion.Promotion
}

// NewStandard creates a stock-tracked product. It is active iff quantity > 0.
func NewStandard(name string, price decimal.Decimal, quantity int) (*Standard, error) {
	if err := validate(name, price); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "quantity cannot be negative")
	}

	return &Standard{
		id:       uuid.NewString(),
		name:     name,
		price:    price,
		quantity: quantity,
		active:   quantity > 0,
	}, nil
}

func validate(name string, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return errors.Wrap(ErrInvalidArgument, "product name cannot be empty")
	}
	if price.IsNegative() {
		return errors.Wrap(ErrInvalidArgument, "price cannot be negative")
	}
	return nil
}

func (s *Standard) ID() string { return s.id }

func (s *Standard) Name() string { return s.name }

func (s *Standard) Kind() Kind { return KindStandard }

func (s *Standard) Price() decimal.Decimal { return s.price }

func (s *Standard) Quantity() int { return s.quantity }

func (s *Standard) IsActive() bool { return s.active }

func (s *Standard) Activate() { s.active = true }

func (s *Standard) Deactivate() { s.active = false }

func (s *Standard) Promotion() promotion.Promotion { return s.promo }

func (s *Standard) SetPromotion(p promotion.Promotion) { s.promo = p }

func (s *Standard) RemovePromotion() { s.promo = nil }

// SetQuantity implements Product.
func (s *Standard) SetQuantity(quantity int) error {
	if quantity < 0 {
		return errors.Wrap(ErrInvalidArgument, "quantity cannot be negative")
	}

	s.quantity = quantity
	s.active = quantity > 0
	return nil
}

// Buy implements Product.
func (s *Standard) Buy(amount int) (decimal.Decimal, error) {
	if amount <= 0 {
		return decimal.Zero, errors.Wrapf(ErrInvalidArgument, "amount must be positive, got %d", amount)
	}
	if amount > s.quantity {
		return decimal.Zero, errors.Wrapf(ErrInsufficientStock, "requested %d, available %d", amount, s.quantity)
	}

	s.quantity -= amount
	if s.quantity == 0 {
		s.Deactivate()
	}
	return s.cost(amount), nil
}

// cost prices amount units, honoring the attached promotion.
func (s *Standard) cost(amount int) decimal.Decimal {
	if s.promo != nil {
		return s.promo.Apply(s, amount)
	}
	return s.price.Mul(decimal.NewFromInt(int64(amount)))
}

// Describe implements Product.
func (s *Standard) Describe() string {
	promo := "None"
	if s.promo != nil {
		promo = s.promo.Name()
	}
	return fmt.Sprintf("%s, Price: %s, Quantity: %d, Promotion: %s", s.name, s.price, s.quantity, promo)
}

func (s *Standard) String() string { return s.Describe() }
