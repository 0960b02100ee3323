// Package catalog builds the initial product catalog of a store from a YAML
// definition.
package catalog

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/xenking/store-inventory/internal/domain/product"
	"github.com/xenking/store-inventory/internal/domain/promotion"
)

// File is the on-disk catalog definition.
type File struct {
	Promotions []PromotionSpec `yaml:"promotions"`
	Products   []ProductSpec   `yaml:"products"`
}

// PromotionSpec describes a promotion that products reference by ID.
type PromotionSpec struct {
	ID      string         `yaml:"id"`
	Kind    promotion.Kind `yaml:"kind"`
	Name    string         `yaml:"name"`
	Percent string         `yaml:"percent"`
}

// ProductSpec describes one product. Type defaults to standard.
type ProductSpec struct {
	Name        string       `yaml:"name"`
	Type        product.Kind `yaml:"type"`
	Price       string       `yaml:"price"`
	Quantity    int          `yaml:"quantity"`
	MaxPerOrder int          `yaml:"max_per_order"`
	Promotion   string       `yaml:"promotion"`
	Active      *bool        `yaml:"active"`
}

// Entry is a promotion together with the ID it was declared under.
type Entry struct {
	ID        string
	Promotion promotion.Promotion
}

// Catalog is a built catalog: products in declaration order and the shared
// promotions they may reference.
type Catalog struct {
	Products   []product.Product
	Promotions []Entry
}

// Promotion returns the promotion declared under id.
func (c *Catalog) Promotion(id string) (promotion.Promotion, bool) {
	for _, e := range c.Promotions {
		if e.ID == id {
			return e.Promotion, true
		}
	}
	return nil, false
}

// Build validates f and constructs its promotions and products. All problems
// are reported together.
func Build(f File) (*Catalog, error) {
	var (
		c    Catalog
		errs error
	)

	seen := make(map[string]bool, len(f.Promotions))
	for i, spec := range f.Promotions {
		p, err := buildPromotion(spec)
		switch {
		case err != nil:
			errs = multierr.Append(errs, errors.Wrapf(err, "promotion #%d (%s)", i+1, spec.ID))
			continue
		case spec.ID == "":
			errs = multierr.Append(errs, errors.Errorf("promotion #%d: id is required", i+1))
			continue
		case seen[spec.ID]:
			errs = multierr.Append(errs, errors.Errorf("promotion #%d: duplicate id %q", i+1, spec.ID))
			continue
		}
		seen[spec.ID] = true
		c.Promotions = append(c.Promotions, Entry{ID: spec.ID, Promotion: p})
	}

	for i, spec := range f.Products {
		p, err := buildProduct(spec)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "product #%d (%s)", i+1, spec.Name))
			continue
		}

		if spec.Promotion != "" {
			promo, ok := c.Promotion(spec.Promotion)
			if !ok {
				errs = multierr.Append(errs, errors.Errorf("product #%d (%s): unknown promotion %q",
					i+1, spec.Name, spec.Promotion))
				continue
			}
			p.SetPromotion(promo)
		}
		if spec.Active != nil {
			if *spec.Active {
				p.Activate()
			} else {
				p.Deactivate()
			}
		}
		c.Products = append(c.Products, p)
	}

	if errs != nil {
		return nil, errs
	}
	return &c, nil
}

func buildPromotion(spec PromotionSpec) (promotion.Promotion, error) {
	percent := decimal.Zero
	if spec.Percent != "" {
		v, err := decimal.NewFromString(spec.Percent)
		if err != nil {
			return nil, errors.Wrap(err, "parse percent")
		}
		percent = v
	}
	return promotion.New(spec.Kind, spec.Name, percent)
}

func buildProduct(spec ProductSpec) (product.Product, error) {
	price, err := decimal.NewFromString(spec.Price)
	if err != nil {
		return nil, errors.Wrap(err, "parse price")
	}

	var p product.Product
	switch spec.Type {
	case product.KindStandard, "":
		p, err = product.NewStandard(spec.Name, price, spec.Quantity)
	case product.KindNonStocked:
		p, err = product.NewNonStocked(spec.Name, price)
	case product.KindLimited:
		p, err = product.NewLimited(spec.Name, price, spec.Quantity, spec.MaxPerOrder)
	default:
		return nil, errors.Errorf("unsupported product type %q", spec.Type)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
