package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vardarauto/marketplace-api/internal/clock"
	"github.com/vardarauto/marketplace-api/internal/domain"
)

type CheckoutRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetListingForUpdate(ctx context.Context, id string) (domain.Listing, error)
	DeactivateListing(ctx context.Context, id string) error
	InsertOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, id string) (domain.Order, error)
}

// CheckoutService turns a set of listing references into a priced, persisted
// order. Validation, pricing, order insert and listing deactivation all happen
// inside one transaction: two checkouts racing on the same listing cannot both
// commit, and a failed checkout leaves nothing behind.
type CheckoutService struct {
	repo  CheckoutRepository
	clock clock.Clock
}

func NewCheckoutService(repo CheckoutRepository, clk clock.Clock) *CheckoutService {
	return &CheckoutService{
		repo:  repo,
		clock: clk,
	}
}

type LineItem struct {
	ListingID string
	Quantity  int
}

type ShippingInfo struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

type CheckoutInput struct {
	BuyerID  string
	Shipping ShippingInfo
	Items    []LineItem
}

func (in CheckoutInput) validate() error {
	if in.BuyerID == "" {
		return domain.ErrBuyerRequired
	}
	if len(in.Items) == 0 {
		return domain.ErrEmptyOrder
	}
	if in.Shipping.Address == "" {
		return domain.ErrShippingRequired
	}
	for _, item := range in.Items {
		if item.ListingID == "" {
			return domain.ErrInvalidID
		}
		if item.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (domain.Order, error) {
	if err := in.validate(); err != nil {
		return domain.Order{}, err
	}

	now := s.clock.Now()
	orderID := newID()

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order := domain.Order{
			ID:                 orderID,
			BuyerID:            in.BuyerID,
			Status:             domain.OrderStatusPending,
			ShippingAddress:    in.Shipping.Address,
			ShippingCity:       in.Shipping.City,
			ShippingPostalCode: in.Shipping.PostalCode,
			ShippingCountry:    in.Shipping.Country,
			CreatedAt:          now,
		}

		total := decimal.Zero
		for _, item := range in.Items {
			listing, err := s.repo.GetListingForUpdate(txCtx, item.ListingID)
			if err != nil {
				return err
			}
			if !listing.Active {
				return domain.ErrListingUnavailable
			}

			// Orders record native-currency amounts; conversion is a
			// presentation concern and never happens here.
			if order.Currency == "" {
				order.Currency = listing.Currency
			} else if order.Currency != listing.Currency {
				return domain.ErrCurrencyMismatch
			}

			subtotal := listing.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
			order.Items = append(order.Items, domain.OrderItem{
				ID:        newID(),
				OrderID:   orderID,
				ListingID: listing.ID,
				Quantity:  item.Quantity,
				UnitPrice: listing.Price,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
		}
		order.TotalAmount = total.Round(2)

		if err := s.repo.InsertOrder(txCtx, order); err != nil {
			return err
		}

		// Rows are already locked FOR UPDATE; the compare-and-set in
		// DeactivateListing also rejects duplicate line items referencing
		// the same single-unit listing.
		for _, item := range order.Items {
			if err := s.repo.DeactivateListing(txCtx, item.ListingID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	// Re-read after commit so the returned order reflects persisted state.
	return s.repo.GetOrder(ctx, orderID)
}
