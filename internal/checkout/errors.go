package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart            = errors.New("checkout: cart is empty")
	ErrMissingCustomerField = errors.New("checkout: missing customer field")
	ErrInvalidPaymentMethod = errors.New("checkout: invalid payment method")
)

type Phase string

const (
	PhaseHeader Phase = "header"
	PhaseItems  Phase = "items"
)

// SubmitError reports which write of an order failed. When Phase is
// PhaseItems the header with OrderNumber already exists in the store
// with items_confirmed=false.
type SubmitError struct {
	Phase       Phase
	OrderNumber string
	OrderID     string
	Err         error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit order %s: %s write failed: %v", e.OrderNumber, e.Phase, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// MissingFieldError names the empty customer field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("checkout: missing customer field %q", e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingCustomerField }
