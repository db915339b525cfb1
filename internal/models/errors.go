package models

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these onto HTTP status codes.
var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")
)

var (
	ErrUserNotFound     = newKindError(ErrNotFound, "user not found")
	ErrAdminNotFound    = newKindError(ErrNotFound, "admin not found")
	ErrProductNotFound  = newKindError(ErrNotFound, "product not found")
	ErrOrderNotFound    = newKindError(ErrNotFound, "order not found")
	ErrAddressNotFound  = newKindError(ErrNotFound, "address not found")
	ErrCartItemNotFound = newKindError(ErrNotFound, "cart item not found")
	ErrNotInWishlist    = newKindError(ErrNotFound, "item not found in wishlist")
	ErrAddressRequired  = newKindError(ErrInvalid, "address or addressId is required")
	ErrEmailTaken       = newKindError(ErrConflict, "email already registered")
	ErrStaleWrite       = newKindError(ErrConflict, "concurrent update, retry")
	ErrInvalidQuantity  = newKindError(ErrInvalid, "quantity must be at least 1")
	ErrInvalidRating    = newKindError(ErrInvalid, "rating must be between 1 and 5")
	ErrReviewIncomplete = newKindError(ErrInvalid, "rating and review are required")
	ErrInvalidStatus    = newKindError(ErrInvalid, "invalid order status")
	ErrEmptyOrder       = newKindError(ErrInvalid, "no products in order")
	ErrAlreadyCancelled = newKindError(ErrInvalid, "order is already cancelled")
	ErrNotCancellable   = newKindError(ErrInvalid, "order cannot be cancelled")
	ErrPaymentRequired  = newKindError(ErrInvalid, "paymentMethod is required")
)

type kindError struct {
	kind error
	msg  string
}

func newKindError(kind error, msg string) *kindError {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Invalidf builds a validation error with a message naming the failed constraint.
func Invalidf(format string, args ...any) error {
	return newKindError(ErrInvalid, fmt.Sprintf(format, args...))
}
