package promotion

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind enumerates the supported promotion rules.
type Kind string

const (
	// KindSecondHalfPrice charges every second unit at half price.
	KindSecondHalfPrice Kind = "second_half_price"
	// KindThirdOneFree makes every third unit free.
	KindThirdOneFree Kind = "third_one_free"
	// KindPercentDiscount takes a percentage off the whole line.
	KindPercentDiscount Kind = "percent_discount"
)

// ErrInvalidArgument is returned when a promotion cannot be constructed from
// the given kind, name or parameter.
var ErrInvalidArgument = errors.New("invalid promotion")

// Priced is anything with a unit price a promotion can be applied to.
type Priced interface {
	Price() decimal.Decimal
}

// Promotion is a pricing rule that replaces unit price × quantity.
//
// Implementations are immutable after construction and may be shared by any
// number of products.
type Promotion interface {
	Name() string
	Kind() Kind
	// Apply returns the total cost of quantity units of item. It must not
	// depend on or alter the item's stock state.
	Apply(item Priced, quantity int) decimal.Decimal
}

// New builds a promotion of the given kind. Percent is only used by
// KindPercentDiscount and is taken as-is, without clamping to [0, 100].
func New(kind Kind, name string, percent decimal.Decimal) (Promotion, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "name cannot be empty")
	}

	switch kind {
	case KindSecondHalfPrice:
		return NewSecondHalfPrice(name), nil
	case KindThirdOneFree:
		return NewThirdOneFree(name), nil
	case KindPercentDiscount:
		return NewPercentDiscount(name, percent), nil
	default:
		return nil, errors.Wrapf(ErrInvalidArgument, "unsupported kind %q", kind)
	}
}
