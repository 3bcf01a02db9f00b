package entity

import (
	"errors"
	"strings"
)

var (
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
	ErrBelowMinimum        = errors.New("quantity is below the minimum order quantity")
	ErrLineNotFound        = errors.New("product is not in the cart")
	ErrProductNotFound     = errors.New("product not found")
	ErrFarmerNotFound      = errors.New("farmer not found")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMalformedPostalCode = errors.New("postal code must be exactly 6 digits")
)

// ValidationError reports input fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid or missing fields: " + strings.Join(e.Fields, ", ")
}
