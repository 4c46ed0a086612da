package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing represents a single sellable unit (vehicle or part) offered by a seller.
// Price and Currency are immutable once the listing is created: orders always
// snapshot the value seen at validation time.
type Listing struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Currency    string
	CategoryID  int
	ListingType string
	Make        string
	Model       string
	Year        int
	SellerID    string
	Active      bool
	CreatedAt   time.Time
}
