package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDetailsIncomplete    = errors.New("checkout details incomplete")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrUPIRequired          = errors.New("upi id required")
	ErrCardIncomplete       = errors.New("card details incomplete")
)

type CheckoutDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (d CheckoutDetails) Trimmed() CheckoutDetails {
	return CheckoutDetails{
		Name:    strings.TrimSpace(d.Name),
		Phone:   strings.TrimSpace(d.Phone),
		Email:   strings.TrimSpace(d.Email),
		Address: strings.TrimSpace(d.Address),
	}
}

// Validate only checks presence; formats are not inspected.
func (d CheckoutDetails) Validate() error {
	t := d.Trimmed()
	var missing []string
	if t.Name == "" {
		missing = append(missing, "name")
	}
	if t.Phone == "" {
		missing = append(missing, "phone")
	}
	if t.Email == "" {
		missing = append(missing, "email")
	}
	if t.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrDetailsIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case PaymentCash, PaymentUPI, PaymentCard:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
	}
}

// Label is the upper-cased method name shown on receipts.
func (m PaymentMethod) Label() string {
	return strings.ToUpper(string(m))
}

func (m PaymentMethod) String() string {
	return string(m)
}

type PaymentSelection struct {
	Method     PaymentMethod
	UPIID      string
	CardNumber string
	CardExpiry string
	CardCVV    string
}

func (p PaymentSelection) Validate() error {
	switch p.Method {
	case PaymentCash:
		return nil
	case PaymentUPI:
		if strings.TrimSpace(p.UPIID) == "" {
			return ErrUPIRequired
		}
		return nil
	case PaymentCard:
		if strings.TrimSpace(p.CardNumber) == "" ||
			strings.TrimSpace(p.CardExpiry) == "" ||
			strings.TrimSpace(p.CardCVV) == "" {
			return ErrCardIncomplete
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, string(p.Method))
	}
}

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
