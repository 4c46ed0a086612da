package app

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vardarauto/marketplace-api/internal/clock"
	"github.com/vardarauto/marketplace-api/internal/domain"
)

type ListingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateListing(ctx context.Context, l domain.Listing) error
	GetListing(ctx context.Context, id string) (domain.Listing, error)
	ListListings(ctx context.Context, onlyActive bool, categoryID int) ([]domain.Listing, error)
	DeactivateListing(ctx context.Context, id string) error
	HasOrderReferences(ctx context.Context, id string) (bool, error)
	DeleteListing(ctx context.Context, id string) error
}

type ListingService struct {
	repo  ListingRepository
	clock clock.Clock
}

func NewListingService(repo ListingRepository, clk clock.Clock) *ListingService {
	return &ListingService{
		repo:  repo,
		clock: clk,
	}
}

type CreateListingInput struct {
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
}

func (s *ListingService) CreateListing(ctx context.Context, in CreateListingInput) (domain.Listing, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Listing{}, domain.ErrTitleRequired
	}
	if in.SellerID == "" {
		return domain.Listing{}, domain.ErrSellerRequired
	}
	if in.Price.LessThanOrEqual(decimal.Zero) {
		return domain.Listing{}, domain.ErrInvalidPrice
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	listing := domain.Listing{
		ID:          newID(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Currency:    currency,
		CategoryID:  in.CategoryID,
		ListingType: in.ListingType,
		Make:        in.Make,
		Model:       in.Model,
		Year:        in.Year,
		SellerID:    in.SellerID,
		Active:      true,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return domain.Listing{}, err
	}
	return listing, nil
}

func (s *ListingService) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	if id == "" {
		return domain.Listing{}, domain.ErrInvalidID
	}
	return s.repo.GetListing(ctx, id)
}

func (s *ListingService) ListListings(ctx context.Context, onlyActive bool, categoryID int) ([]domain.Listing, error) {
	return s.repo.ListListings(ctx, onlyActive, categoryID)
}

// WithdrawListing deactivates a listing exactly once; a listing already sold
// or withdrawn reports ErrListingUnavailable.
func (s *ListingService) WithdrawListing(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeactivateListing(ctx, id)
}

// DeleteListing permanently rejects deletion once any order item references
// the listing; withdrawal is the supported alternative.
func (s *ListingService) DeleteListing(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		inUse, err := s.repo.HasOrderReferences(txCtx, id)
		if err != nil {
			return err
		}
		if inUse {
			return domain.ErrListingInUse
		}
		return s.repo.DeleteListing(txCtx, id)
	})
}
