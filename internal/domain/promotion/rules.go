package promotion

import "github.com/shopspring/decimal"

var (
	hundred  = decimal.NewFromInt(100)
	halfRate = decimal.New(5, -1)
)

// SecondHalfPrice charges ceil(q/2) units at full price and floor(q/2) units
// at half price.
type SecondHalfPrice struct {
	name string
}

// NewSecondHalfPrice creates a SecondHalfPrice promotion.
func NewSecondHalfPrice(name string) *SecondHalfPrice {
	return &SecondHalfPrice{name: name}
}

func (p *SecondHalfPrice) Name() string { return p.name }

func (p *SecondHalfPrice) Kind() Kind { return KindSecondHalfPrice }

// Apply implements Promotion.
func (p *SecondHalfPrice) Apply(item Priced, quantity int) decimal.Decimal {
	price := item.Price()
	full := units((quantity + 1) / 2)
	half := units(quantity / 2)

	return price.Mul(full).Add(price.Mul(half).Mul(halfRate))
}

// ThirdOneFree charges for quantity - floor(quantity/3) units.
type ThirdOneFree struct {
	name string
}

// NewThirdOneFree creates a ThirdOneFree promotion.
func NewThirdOneFree(name string) *ThirdOneFree {
	return &ThirdOneFree{name: name}
}

func (p *ThirdOneFree) Name() string { return p.name }

func (p *ThirdOneFree) Kind() Kind { return KindThirdOneFree }

// Apply implements Promotion.
func (p *ThirdOneFree) Apply(item Priced, quantity int) decimal.Decimal {
	paid := quantity - quantity/3
	return item.Price().Mul(units(paid))
}

// PercentDiscount takes Percent percent off quantity × unit price.
type PercentDiscount struct {
	name    string
	percent decimal.Decimal
}

// NewPercentDiscount creates a PercentDiscount promotion. Values outside
// [0, 100] are kept: 150 yields a negative total, -10 a surcharge.
func NewPercentDiscount(name string, percent decimal.Decimal) *PercentDiscount {
	return &PercentDiscount{name: name, percent: percent}
}

func (p *PercentDiscount) Name() string { return p.name }

func (p *PercentDiscount) Kind() Kind { return KindPercentDiscount }

// Percent returns the configured discount percentage.
func (p *PercentDiscount) Percent() decimal.Decimal { return p.percent }

// Apply implements Promotion.
func (p *PercentDiscount) Apply(item Priced, quantity int) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(p.percent.Div(hundred))
	return item.Price().Mul(units(quantity)).Mul(factor)
}

func units(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
