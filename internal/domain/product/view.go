package product

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/store-inventory/internal/domain/promotion"
)

// View is a point-in-time copy of a product's state. It is safe to read
// while the product keeps changing.
type View struct {
	ID       string
	Name     string
	Kind     Kind
	Price    decimal.Decimal
	Quantity int
	Active   bool
	// MaxPerOrder is zero unless Kind is KindLimited.
	MaxPerOrder int
	// Promotion is nil when none is attached. Promotions are immutable.
	Promotion   promotion.Promotion
	Description string
}

// Snapshot copies the current state of p. The caller must hold whatever
// lock guards p.
func Snapshot(p Product) View {
	v := View{
		ID:          p.ID(),
		Name:        p.Name(),
		Kind:        p.Kind(),
		Price:       p.Price(),
		Quantity:    p.Quantity(),
		Active:      p.IsActive(),
		Promotion:   p.Promotion(),
		Description: p.Describe(),
	}
	if l, ok := p.(*Limited); ok {
		v.MaxPerOrder = l.MaxPerOrder()
	}
	return v
}
