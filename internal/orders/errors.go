package orders

import (
	"errors"
	"fmt"

	"github.com/chrisdamba/pupulse/internal/models"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrOrderNotFound        = errors.New("order not found")
	ErrPartnerNotFound      = errors.New("delivery partner not found")
	ErrPartnerUnavailable   = errors.New("delivery partner is not available")
	ErrAlreadyAssigned      = errors.New("order already has a delivery partner")
	ErrNotAssignedToPartner = errors.New("order is not assigned to this partner")
	ErrPartnerBusy          = errors.New("delivery partner is on a delivery")
	ErrInvalidPartnerStatus = errors.New("invalid partner status")
	ErrOrderIDsExhausted    = errors.New("no order ids left")
)

// ValidationError reports a missing or malformed checkout field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s is required", ErrValidation, e.Field)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// TransitionError reports a status change the state machine refused.
type TransitionError struct {
	OrderID string
	From    models.OrderStatus
	To      models.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: %s: %s -> %s", e.OrderID, models.ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return models.ErrInvalidTransition }
