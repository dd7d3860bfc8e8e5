package domain

import (
	"fmt"
	"strings"
)

const fallbackCustomerName = "Customer"

// Order is the confirmation built from a cart at checkout. It is only ever
// rendered, never stored.
type Order struct {
	CustomerName string        `json:"customerName"`
	Total        int64         `json:"total"`
	Items        []string      `json:"items"`
	Method       PaymentMethod `json:"method"`
}

func NewOrder(cart *Cart, details CheckoutDetails, method PaymentMethod) Order {
	name := strings.TrimSpace(details.Name)
	if name == "" {
		name = fallbackCustomerName
	}
	items := cart.Items()
	lines := make([]string, 0, len(items))
	for _, li := range items {
		lines = append(lines, fmt.Sprintf("%s x %d", li.Name, li.Quantity))
	}
	return Order{
		CustomerName: name,
		Total:        cart.Total(),
		Items:        lines,
		Method:       method,
	}
}

func (o Order) Summary() string {
	return fmt.Sprintf("Order for %s (₹%d) - Items: %s. Payment: %s.",
		o.CustomerName, o.Total, strings.Join(o.Items, ", "), o.Method.Label())
}
