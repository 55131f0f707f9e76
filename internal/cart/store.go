// Package cart holds the shopping cart of one browser session.
package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"techshop_back_end/internal/models"

	"github.com/shopspring/decimal"
)

var ErrInvalidItem = errors.New("cart: invalid item")

// MaxLineQuantity bounds a single line; order_items.quantity is a CQL int.
const MaxLineQuantity = math.MaxInt32

// Persister saves and restores the full line list of a cart.
// Load returns an empty list when nothing was stored under key.
type Persister interface {
	Load(ctx context.Context, key string) ([]models.CartLineItem, error)
	Save(ctx context.Context, key string, items []models.CartLineItem) error
}

// Store is the cart of a single session. Every mutation is persisted
// before it becomes visible; a failed save leaves the store unchanged.
type Store struct {
	mu        sync.Mutex
	key       string
	persister Persister
	items     []models.CartLineItem
}

// Open restores the cart saved under key.
func Open(ctx context.Context, persister Persister, key string) (*Store, error) {
	items, err := persister.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", key, err)
	}
	return &Store{key: key, persister: persister, items: items}, nil
}

func (s *Store) Key() string { return s.key }

// Add increments the quantity of an existing line by item.Quantity (a
// non-positive quantity counts as 1), or appends a new line with quantity 1.
// A line never grows past MaxLineQuantity.
func (s *Store) Add(ctx context.Context, item models.CartLineItem) error {
	item, err := normalize(item)
	if err != nil {
		return err
	}

	return s.mutate(ctx, func(items []models.CartLineItem) []models.CartLineItem {
		if i := indexOf(items, item.ID); i >= 0 {
			items[i].Quantity = addQuantity(items[i].Quantity, item.Quantity)
			return items
		}
		item.Quantity = 1
		return append(items, item)
	})
}

// Merge folds lines from another cart (e.g. the guest cart kept by the
// browser) into this one. Lines already present grow by the incoming
// quantity; new lines keep the quantity they had in the other cart.
func (s *Store) Merge(ctx context.Context, incoming []models.CartLineItem) error {
	lines := make([]models.CartLineItem, 0, len(incoming))
	for _, item := range incoming {
		item, err := normalize(item)
		if err != nil {
			return err
		}
		lines = append(lines, item)
	}

	return s.mutate(ctx, func(items []models.CartLineItem) []models.CartLineItem {
		for _, item := range lines {
			if i := indexOf(items, item.ID); i >= 0 {
				items[i].Quantity = addQuantity(items[i].Quantity, item.Quantity)
				continue
			}
			items = append(items, item)
		}
		return items
	})
}

// UpdateQuantity sets the quantity of line id; n <= 0 removes the line.
// Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, id string, n int) error {
	if n <= 0 {
		return s.Remove(ctx, id)
	}
	if n > MaxLineQuantity {
		return ErrInvalidItem
	}

	s.mu.Lock()
	idx := indexOf(s.items, id)
	s.mu.Unlock()
	if idx < 0 {
		return nil
	}

	return s.mutate(ctx, func(items []models.CartLineItem) []models.CartLineItem {
		if i := indexOf(items, id); i >= 0 {
			items[i].Quantity = n
		}
		return items
	})
}

func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := indexOf(s.items, id)
	s.mu.Unlock()
	if idx < 0 {
		return nil
	}

	return s.mutate(ctx, func(items []models.CartLineItem) []models.CartLineItem {
		if i := indexOf(items, id); i >= 0 {
			items = append(items[:i], items[i+1:]...)
		}
		return items
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, func([]models.CartLineItem) []models.CartLineItem {
		return nil
	})
}

// Subtract takes lines out of the cart as it is stored now, not as this
// Store last saw it: each listed line loses the quantity given in lines and
// disappears once it reaches zero. Lines added from elsewhere in the
// meantime are kept.
func (s *Store) Subtract(ctx context.Context, lines []models.CartLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.persister.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load cart %s: %w", s.key, err)
	}

	taken := make(map[string]int, len(lines))
	for _, l := range lines {
		taken[l.ID] += l.Quantity
	}
	var next []models.CartLineItem
	for _, item := range current {
		item.Quantity -= taken[item.ID]
		if item.Quantity > 0 {
			next = append(next, item)
		}
	}

	if err := s.persister.Save(ctx, s.key, next); err != nil {
		return fmt.Errorf("save cart %s: %w", s.key, err)
	}
	s.items = next
	return nil
}

// Items returns a copy of the lines in display order.
func (s *Store) Items() []models.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is exact; round with FormatPrice for display.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.items)
}

// Total sums unit price × quantity over items.
func Total(items []models.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// FormatPrice renders an amount with two fraction digits.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (s *Store) mutate(ctx context.Context, apply func([]models.CartLineItem) []models.CartLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := apply(clone(s.items))
	if err := s.persister.Save(ctx, s.key, next); err != nil {
		return fmt.Errorf("save cart %s: %w", s.key, err)
	}
	s.items = next
	return nil
}

// normalize validates an incoming line and defaults its quantity.
func normalize(item models.CartLineItem) (models.CartLineItem, error) {
	if item.ID == "" || item.UnitPrice.IsNegative() || item.Quantity > MaxLineQuantity {
		return item, ErrInvalidItem
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	return item, nil
}

// addQuantity saturates at MaxLineQuantity.
func addQuantity(have, more int) int {
	if more > MaxLineQuantity-have {
		return MaxLineQuantity
	}
	return have + more
}

func indexOf(items []models.CartLineItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(items []models.CartLineItem) []models.CartLineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]models.CartLineItem, len(items))
	copy(out, items)
	return out
}
