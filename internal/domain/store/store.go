package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-inventory/internal/domain/product"
	"github.com/xenking/store-inventory/internal/domain/promotion"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a product is not part of the store.
	ErrNotFound = errors.New("product not found in store")
	// ErrProductUnavailable is matched by ProductUnavailableError.
	ErrProductUnavailable = errors.New("product unavailable")
)

// ProductUnavailableError indicates an order line referencing a product that
// is not in the store or is inactive.
type ProductUnavailableError struct {
	Name string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available in the store", e.Name)
}

// Is reports ErrProductUnavailable as the error's kind.
func (e *ProductUnavailableError) Is(target error) bool {
	return target == ErrProductUnavailable
}

// Selection is a single order line: a product and the amount requested.
type Selection struct {
	Product product.Product
	Amount  int
}

// Store owns an ordered collection of products. Insertion order is the
// display order.
//
// Every method holds the store lock, so concurrent orders run one after
// another. Products mutated directly, outside the store, are not guarded.
type Store struct {
	mu       sync.Mutex
	products []product.Product
}

// New creates a store holding a copy of the given product sequence.
func New(products ...product.Product) *Store {
	return &Store{products: slices.Clone(products)}
}

// AddProduct appends p to the catalog.
func (s *Store) AddProduct(p product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, p)
}

// RemoveProduct deletes p, matched by reference, from the catalog.
func (s *Store) RemoveProduct(p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(p)
	if i < 0 {
		return errors.Wrapf(ErrNotFound, "remove %s", p.Name())
	}
	s.products = slices.Delete(s.products, i, i+1)
	return nil
}

// Products returns the active products in insertion order.
func (s *Store) Products() []product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active
}

// All returns every product, active or not, in insertion order.
func (s *Store) All() []product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.products)
}

// Lookup finds a product by its ID.
func (s *Store) Lookup(id string) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "lookup %s", id)
}

// Views snapshots the active products in store order.
func (s *Store) Views() []product.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]product.View, 0, len(s.products))
	for _, p := range s.products {
		if p.IsActive() {
			out = append(out, product.Snapshot(p))
		}
	}
	return out
}

// ViewByID snapshots the product with the given ID, active or not.
func (s *Store) ViewByID(id string) (product.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.ID() == id {
			return product.Snapshot(p), nil
		}
	}
	return product.View{}, errors.Wrapf(ErrNotFound, "lookup %s", id)
}

// ViewOf snapshots p, which must still be in the store.
func (s *Store) ViewOf(p product.Product) (product.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(p) < 0 {
		return product.View{}, errors.Wrapf(ErrNotFound, "view %s", p.Name())
	}
	return product.Snapshot(p), nil
}

// TotalQuantity sums the quantity of every product, including inactive and
// non-stocked ones.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, p := range s.products {
		total += p.Quantity()
	}
	return total
}

// Order buys every selection in sequence and returns the summed cost.
//
// Each line is validated and applied immediately. Processing stops at the
// first line whose product is not in the store or is inactive, returning a
// *ProductUnavailableError, or whose Buy fails. Stock already taken by
// earlier lines of the same call is NOT restored, and the returned cost is
// zero: callers must report the failure as a possibly partial order.
func (s *Store) Order(selections []Selection) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buy(selections)
}

// Receipt is the outcome of Checkout.
type Receipt struct {
	Total decimal.Decimal
	// Products holds one snapshot per selection, taken right after the
	// whole order was applied.
	Products []product.View
}

// Checkout is Order that also snapshots the bought products before the
// store lock is released.
func (s *Store) Checkout(selections []Selection) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total, err := s.buy(selections)
	if err != nil {
		return Receipt{Total: decimal.Zero}, err
	}

	views := make([]product.View, len(selections))
	for i, sel := range selections {
		views[i] = product.Snapshot(sel.Product)
	}
	return Receipt{Total: total, Products: views}, nil
}

func (s *Store) buy(selections []Selection) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, sel := range selections {
		if sel.Product == nil {
			return decimal.Zero, &ProductUnavailableError{Name: "<nil>"}
		}
		if s.index(sel.Product) < 0 || !sel.Product.IsActive() {
			return decimal.Zero, &ProductUnavailableError{Name: sel.Product.Name()}
		}

		cost, err := sel.Product.Buy(sel.Amount)
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "buy %s", sel.Product.Name())
		}
		total = total.Add(cost)
	}
	return total, nil
}

// AddPromotion attaches promo to p, replacing any previous promotion.
func (s *Store) AddPromotion(p product.Product, promo promotion.Promotion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(p) < 0 {
		return errors.Wrapf(ErrNotFound, "add promotion to %s", p.Name())
	}
	p.SetPromotion(promo)
	return nil
}

// RemovePromotion clears the promotion attached to p.
func (s *Store) RemovePromotion(p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(p) < 0 {
		return errors.Wrapf(ErrNotFound, "remove promotion from %s", p.Name())
	}
	p.RemovePromotion()
	return nil
}

// index returns the position of p by reference, or -1. Callers hold s.mu.
func (s *Store) index(p product.Product) int {
	return slices.IndexFunc(s.products, func(q product.Product) bool {
		return q == p
	})
}
