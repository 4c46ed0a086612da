package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vardarauto/marketplace-api/internal/domain"
)

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const listingColumns = `id, title, description, price, currency, category_id, listing_type, make, model, year, seller_id, active, created_at`

func (r *ListingRepository) scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID, &l.Title, &l.Description, &l.Price, &l.Currency, &l.CategoryID,
		&l.ListingType, &l.Make, &l.Model, &l.Year, &l.SellerID, &l.Active, &l.CreatedAt,
	)
	return l, err
}

func (r *ListingRepository) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	l, err := r.scanListing(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Listing{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Listing{}, domain.ErrListingNotFound
		}
		return domain.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

// GetListingForUpdate locks the listing row for the duration of the enclosing
// transaction so the availability check and the later deactivation form one
// atomic unit.
func (r *ListingRepository) GetListingForUpdate(ctx context.Context, id string) (domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`
	l, err := r.scanListing(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Listing{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Listing{}, domain.ErrListingNotFound
		}
		return domain.Listing{}, fmt.Errorf("get listing for update: %w", err)
	}
	return l, nil
}

func (r *ListingRepository) ListListings(ctx context.Context, onlyActive bool, categoryID int) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE ($1 = false OR active) AND ($2 = 0 OR category_id = $2) ORDER BY created_at DESC`
	rows, err := r.query(ctx, query, onlyActive, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := r.scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate listings: %w", rows.Err())
	}
	return listings, nil
}

func (r *ListingRepository) CreateListing(ctx context.Context, l domain.Listing) error {
	const stmt = `
INSERT INTO listings (id, title, description, price, currency, category_id, listing_type, make, model, year, seller_id, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.exec(ctx, stmt,
		l.ID, l.Title, l.Description, l.Price, l.Currency, l.CategoryID,
		l.ListingType, l.Make, l.Model, l.Year, l.SellerID, l.Active, l.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

// DeactivateListing flips the active flag with a compare-and-set: a listing
// already inactive reports ErrListingUnavailable, which is how the loser of a
// concurrent checkout race observes the conflict.
func (r *ListingRepository) DeactivateListing(ctx context.Context, id string) error {
	const stmt = `UPDATE listings SET active = false WHERE id = $1 AND active`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("deactivate listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM listings WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("deactivate listing: %w", err)
		}
		if !exists {
			return domain.ErrListingNotFound
		}
		return domain.ErrListingUnavailable
	}
	return nil
}

func (r *ListingRepository) HasOrderReferences(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM order_items WHERE listing_id = $1)`, id).Scan(&exists)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("check order references: %w", err)
	}
	return exists, nil
}

func (r *ListingRepository) DeleteListing(ctx context.Context, id string) error {
	tag, err := r.exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		// The FK on order_items is the backstop for a reference created
		// between the in-use check and the delete.
		if isForeignKeyViolation(err) {
			return domain.ErrListingInUse
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ListingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *ListingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
