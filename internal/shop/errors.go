package shop

import "errors"

var (
	// ErrInvalidInput rejects a malformed name, price or quantity.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound means the named item or transaction does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart rejects a checkout with no items.
	ErrEmptyCart = errors.New("cart is empty")
)
