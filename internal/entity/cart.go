package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// MaxQuantity caps a single line; larger requests clamp down to it.
const MaxQuantity = 9999

var ErrIndexOutOfRange = errors.New("cart index out of range")

type LineItem struct {
	Name         string `json:"name"`
	DisplayPrice string `json:"displayPrice"`
	ImageRef     string `json:"imageRef,omitempty"`
	UnitPrice    int64  `json:"unitPrice"`
	Quantity     int    `json:"quantity"`
}

func (li LineItem) Subtotal() int64 {
	return satMul(li.UnitPrice, int64(li.Quantity))
}

// Cart keeps line items in insertion order. Names are unique (exact match).
type Cart struct {
	items []LineItem
}

func NewCart(items ...LineItem) *Cart {
	c := &Cart{items: append([]LineItem(nil), items...)}
	c.Normalize()
	return c
}

// Add merges by name: an existing item gains one unit, otherwise a new item
// is appended with its unit price parsed from displayPrice.
func (c *Cart) Add(name, displayPrice, imageRef string) LineItem {
	for i := range c.items {
		if c.items[i].Name == name {
			c.items[i].Quantity = clampQuantity(c.items[i].Quantity, 1)
			return c.items[i]
		}
	}
	li := LineItem{
		Name:         name,
		DisplayPrice: displayPrice,
		ImageRef:     imageRef,
		UnitPrice:    ParseUnitPrice(displayPrice),
		Quantity:     1,
	}
	c.items = append(c.items, li)
	return li
}

// SetQuantity clamps qty into [1, MaxQuantity].
func (c *Cart) SetQuantity(index, qty int) (LineItem, error) {
	if err := c.checkIndex(index); err != nil {
		return LineItem{}, err
	}
	c.items[index].Quantity = clampQuantity(0, qty)
	return c.items[index], nil
}

func (c *Cart) ChangeQuantity(index, delta int) (LineItem, error) {
	if err := c.checkIndex(index); err != nil {
		return LineItem{}, err
	}
	c.items[index].Quantity = clampQuantity(c.items[index].Quantity, delta)
	return c.items[index], nil
}

func (c *Cart) Remove(index int) (LineItem, error) {
	if err := c.checkIndex(index); err != nil {
		return LineItem{}, err
	}
	removed := c.items[index]
	c.items = append(c.items[:index], c.items[index+1:]...)
	return removed, nil
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Total() int64 {
	var total int64
	for _, li := range c.items {
		total = satAdd(total, li.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities, not the number of lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, li := range c.items {
		n += li.Quantity
	}
	return n
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Items returns a copy; callers cannot mutate the cart through it.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Normalize repairs state read back from storage: quantities are clamped
// into [1, MaxQuantity], out-of-range prices become 0 and duplicate names are
// merged into the first occurrence.
func (c *Cart) Normalize() {
	seen := make(map[string]int, len(c.items))
	out := c.items[:0]
	for _, li := range c.items {
		li.Quantity = clampQuantity(0, li.Quantity)
		if li.UnitPrice < 0 || li.UnitPrice > MaxUnitPrice {
			li.UnitPrice = 0
		}
		if pos, ok := seen[li.Name]; ok {
			out[pos].Quantity = clampQuantity(out[pos].Quantity, li.Quantity)
			continue
		}
		seen[li.Name] = len(out)
		out = append(out, li)
	}
	c.items = out
}

// clampQuantity returns cur+delta limited to [1, MaxQuantity] without
// overflowing. cur must already be in [0, MaxQuantity].
func clampQuantity(cur, delta int) int {
	switch {
	case delta >= MaxQuantity-cur:
		return MaxQuantity
	case delta <= 1-cur:
		return 1
	default:
		return cur + delta
	}
}

func satMul(a, b int64) int64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

func satAdd(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

func (c *Cart) checkIndex(index int) error {
	if index < 0 || index >= len(c.items) {
		return fmt.Errorf("%w: index %d, cart has %d items", ErrIndexOutOfRange, index, len(c.items))
	}
	return nil
}

// MarshalJSON encodes the cart as an ordered array of line items; an empty
// cart encodes as [].
func (c *Cart) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	for i := range items {
		if items[i].UnitPrice == 0 && items[i].DisplayPrice != "" {
			items[i].UnitPrice = ParseUnitPrice(items[i].DisplayPrice)
		}
	}
	c.items = items
	c.Normalize()
	return nil
}
