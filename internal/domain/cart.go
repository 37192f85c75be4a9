package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrDuplicateEntry = errors.New("duplicate cart entry")
	ErrInvalidAmount  = errors.New("cart entry amount must be positive")
)

// Product is the catalog metadata copied into a cart entry when it is first added.
type Product struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// CartEntry is one line of the cart. Amount is always >= 1 while the entry exists.
type CartEntry struct {
	Product
	Amount int `json:"amount"`
}

// Cart is the ordered sequence of entries, unique by product id.
type Cart []CartEntry

// StockInfo is the available quantity of a product as reported by the stock service.
type StockInfo struct {
	ProductID int64 `json:"id"`
	Amount    int   `json:"amount"`
}

// IndexOf returns the position of the entry for productID or -1.
func (c Cart) IndexOf(productID int64) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c))
	for _, entry := range c {
		if entry.Amount < 1 {
			return fmt.Errorf("product %d: %w", entry.ID, ErrInvalidAmount)
		}
		if _, ok := seen[entry.ID]; ok {
			return fmt.Errorf("product %d: %w", entry.ID, ErrDuplicateEntry)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

// Encode serializes the cart as a JSON array. A nil cart encodes as [].
func (c Cart) Encode() (string, error) {
	if c == nil {
		c = Cart{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cart failed: %w", err)
	}
	return string(data), nil
}

// DecodeCart parses a persisted blob and rejects carts that break the entry invariants.
func DecodeCart(blob string) (Cart, error) {
	var cart Cart
	if err := json.Unmarshal([]byte(blob), &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if err := cart.Validate(); err != nil {
		return nil, err
	}
	if cart == nil {
		cart = Cart{}
	}
	return cart, nil
}
