package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vardarauto/marketplace-api/internal/domain"
)

// CheckoutRepository spans listings and orders so checkout can validate,
// persist and deactivate inside one transaction scope.
type CheckoutRepository struct {
	pool     *pgxpool.Pool
	listings *ListingRepository
	orders   *OrderRepository
}

func NewCheckoutRepository(pool *pgxpool.Pool) *CheckoutRepository {
	return &CheckoutRepository{
		pool:     pool,
		listings: NewListingRepository(pool),
		orders:   NewOrderRepository(pool),
	}
}

func (r *CheckoutRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CheckoutRepository) GetListingForUpdate(ctx context.Context, id string) (domain.Listing, error) {
	return r.listings.GetListingForUpdate(ctx, id)
}

func (r *CheckoutRepository) DeactivateListing(ctx context.Context, id string) error {
	return r.listings.DeactivateListing(ctx, id)
}

func (r *CheckoutRepository) InsertOrder(ctx context.Context, order domain.Order) error {
	return r.orders.InsertOrder(ctx, order)
}

func (r *CheckoutRepository) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return r.orders.GetOrder(ctx, id)
}
