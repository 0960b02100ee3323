// Package cli implements the interactive text menu of the store.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/store-inventory/internal/catalog"
	"github.com/xenking/store-inventory/internal/domain/order"
	"github.com/xenking/store-inventory/internal/domain/product"
	"github.com/xenking/store-inventory/internal/domain/store"
)

const separator = "----------------------------------------"

// errQuit ends the menu loop when input is exhausted.
var errQuit = errors.New("quit")

// Menu is a numeric-choice menu over a store. It only talks to the store
// and the order service through their public operations.
type Menu struct {
	name       string
	store      *store.Store
	orders     *order.Service
	promotions []catalog.Entry
	lg         *zap.Logger

	in  *bufio.Scanner
	out io.Writer
}

// Config holds non-dependency settings of the menu.
type Config struct {
	// StoreName is shown in the greeting.
	StoreName string
}

// New creates a Menu reading choices from in and writing to out.
func New(
	cfg Config,
	s *store.Store,
	orders *order.Service,
	promotions []catalog.Entry,
	lg *zap.Logger,
	in io.Reader,
	out io.Writer,
) *Menu {
	name := cfg.StoreName
	if name == "" {
		name = "Best Buy"
	}
	return &Menu{
		name:       name,
		store:      s,
		orders:     orders,
		promotions: promotions,
		lg:         lg,
		in:         bufio.NewScanner(in),
		out:        out,
	}
}

// Run shows the menu until the user quits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.showMenu()
		choice, err := m.prompt("Please enter your choice (1-6): ")
		if err != nil {
			return m.finish(err)
		}

		switch choice {
		case "1":
			m.listProducts()
		case "2":
			m.printf("Total quantity of all products in store: %d\n", m.store.TotalQuantity())
		case "3":
			err = m.makeOrder(ctx)
		case "4":
			err = m.addPromotion()
		case "5":
			err = m.removePromotion()
		case "6":
			m.printf("Thank you for visiting %s!\n", m.name)
			return nil
		default:
			m.printf("Invalid choice. Please enter a number between 1 and 6.\n")
		}
		if err != nil {
			return m.finish(err)
		}
	}
}

func (m *Menu) finish(err error) error {
	if errors.Is(err, errQuit) {
		m.printf("\nGoodbye!\n")
		return nil
	}
	return err
}

func (m *Menu) showMenu() {
	m.printf("\nWelcome to %s!\n", m.name)
	m.printf("1. List all products in store\n")
	m.printf("2. Show total amount in store\n")
	m.printf("3. Make an order\n")
	m.printf("4. Add a promotion to a product\n")
	m.printf("5. Remove a promotion from a product\n")
	m.printf("6. Quit\n")
}

// listProducts prints the active products with their 1-based index and
// returns them.
func (m *Menu) listProducts() []product.Product {
	active := m.store.Products()
	m.printf("%s\n", separator)
	for i, p := range active {
		m.printf("%d. %s\n", i+1, p.Describe())
	}
	m.printf("%s\n", separator)
	return active
}

func (m *Menu) makeOrder(ctx context.Context) error {
	var items []order.OrderItem
	m.printf("\nWhen you want to finish your order, enter an empty text.\n")

	for {
		active := m.listProducts()
		if len(active) == 0 {
			m.printf("No products available.\n")
			break
		}

		input, err := m.prompt("Which product # do you want? ")
		if err != nil {
			return err
		}
		if input == "" {
			break
		}

		p, ok := m.pick(active, input)
		if !ok {
			continue
		}

		input, err = m.prompt("What amount do you want? ")
		if err != nil {
			return err
		}
		amount, err := strconv.Atoi(input)
		if err != nil {
			m.printf("Invalid input. Please enter a number.\n")
			continue
		}
		if amount <= 0 {
			m.printf("Invalid amount. Please enter a positive number.\n")
			continue
		}
		if p.Kind() != product.KindNonStocked && amount > p.Quantity() {
			m.printf("Insufficient quantity of %s in stock.\n", p.Name())
			continue
		}

		items = append(items, order.OrderItem{ProductID: p.ID(), Quantity: amount})
		m.printf("Added %dx %s to your order.\n", amount, p.Name())
	}

	if len(items) == 0 {
		m.printf("No items in your order.\n")
		return nil
	}

	result, err := m.orders.PlaceOrder(ctx, order.PlaceOrderRequest{Items: items})
	if err != nil {
		m.lg.Warn("Order failed", zap.Int("lines", len(items)), zap.Error(err))
		m.printf("Error processing order: %v\n", err)
		if mayBePartial(err) {
			m.printf("Items listed before the failing one were already taken from stock.\n")
		}
		return nil
	}

	m.lg.Debug("Order placed", zap.String("order_id", result.Order.ID))
	m.printf("\nYour order has been processed. Total cost: %s\n", result.Order.Total)
	return nil
}

// mayBePartial reports whether err can follow stock already taken for
// earlier lines. Only validation done before the store is touched rules
// that out.
func mayBePartial(err error) bool {
	var pnfErr *order.ProductNotFoundError
	switch {
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.As(err, &pnfErr):
		return false
	}
	return true
}

func (m *Menu) addPromotion() error {
	p, ok, err := m.chooseProduct()
	if err != nil || !ok {
		return err
	}
	if len(m.promotions) == 0 {
		m.printf("No promotions available.\n")
		return nil
	}

	for i, e := range m.promotions {
		m.printf("%d. %s\n", i+1, e.Promotion.Name())
	}
	input, err := m.prompt("Which promotion # do you want to apply? ")
	if err != nil {
		return err
	}
	idx, ok := m.index(input, len(m.promotions))
	if !ok {
		return nil
	}

	promo := m.promotions[idx].Promotion
	if err := m.store.AddPromotion(p, promo); err != nil {
		m.printf("Error adding promotion: %v\n", err)
		return nil
	}
	m.printf("Promotion %q applied to %s.\n", promo.Name(), p.Name())
	return nil
}

func (m *Menu) removePromotion() error {
	p, ok, err := m.chooseProduct()
	if err != nil || !ok {
		return err
	}
	if p.Promotion() == nil {
		m.printf("%s has no promotion.\n", p.Name())
		return nil
	}

	if err := m.store.RemovePromotion(p); err != nil {
		m.printf("Error removing promotion: %v\n", err)
		return nil
	}
	m.printf("Promotion removed from %s.\n", p.Name())
	return nil
}

func (m *Menu) chooseProduct() (product.Product, bool, error) {
	active := m.listProducts()
	if len(active) == 0 {
		m.printf("No products available.\n")
		return nil, false, nil
	}

	input, err := m.prompt("Which product #? ")
	if err != nil {
		return nil, false, err
	}
	p, ok := m.pick(active, input)
	return p, ok, nil
}

func (m *Menu) pick(products []product.Product, input string) (product.Product, bool) {
	idx, ok := m.index(input, len(products))
	if !ok {
		return nil, false
	}
	return products[idx], true
}

// index parses a 1-based choice into a 0-based index below n.
func (m *Menu) index(input string, n int) (int, bool) {
	v, err := strconv.Atoi(input)
	if err != nil {
		m.printf("Invalid input. Please enter a number.\n")
		return 0, false
	}
	if v < 1 || v > n {
		m.printf("Invalid selection. Please try again.\n")
		return 0, false
	}
	return v - 1, true
}

func (m *Menu) prompt(text string) (string, error) {
	m.printf("%s", text)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", errors.Wrap(err, "read input")
		}
		return "", errQuit
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}
