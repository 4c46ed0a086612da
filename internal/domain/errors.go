package domain

import "errors"

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrListingUnavailable = errors.New("listing unavailable")
	ErrListingInUse       = errors.New("listing referenced by existing orders")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidID          = errors.New("invalid id")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrBuyerRequired      = errors.New("buyer id required")
	ErrShippingRequired   = errors.New("shipping address required")
	ErrCurrencyMismatch   = errors.New("line items have mixed currencies")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrStatusFinal        = errors.New("order status is final")
	ErrTitleRequired      = errors.New("listing title required")
	ErrInvalidPrice       = errors.New("invalid listing price")
	ErrSellerRequired     = errors.New("seller id required")
)
