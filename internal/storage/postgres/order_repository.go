package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vardarauto/marketplace-api/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// InsertOrder persists the order row and its items. Item order follows the
// slice, and item_position preserves it for reads.
func (r *OrderRepository) InsertOrder(ctx context.Context, order domain.Order) error {
	const orderStmt = `
INSERT INTO orders (id, buyer_id, status, total_amount, currency, shipping_address, shipping_city, shipping_postal_code, shipping_country, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, orderStmt,
		order.ID, order.BuyerID, order.Status, order.TotalAmount, order.Currency,
		order.ShippingAddress, order.ShippingCity, order.ShippingPostalCode,
		order.ShippingCountry, order.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("insert order: %w", err)
	}

	const itemStmt = `
INSERT INTO order_items (id, order_id, listing_id, quantity, unit_price, subtotal, item_position)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i, item := range order.Items {
		_, err := r.exec(ctx, itemStmt,
			item.ID, order.ID, item.ListingID, item.Quantity, item.UnitPrice, item.Subtotal, i,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrListingNotFound
			}
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	const query = `
SELECT id, buyer_id, status, total_amount, currency, shipping_address, shipping_city, shipping_postal_code, shipping_country, created_at
FROM orders
WHERE id = $1`

	var o domain.Order
	var status string
	err := r.queryRow(ctx, query, id).Scan(
		&o.ID, &o.BuyerID, &status, &o.TotalAmount, &o.Currency,
		&o.ShippingAddress, &o.ShippingCity, &o.ShippingPostalCode,
		&o.ShippingCountry, &o.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	o.Status = domain.OrderStatus(status)

	items, err := r.listItems(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepository) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	const query = `
SELECT id, buyer_id, status, total_amount, currency, shipping_address, shipping_city, shipping_postal_code, shipping_country, created_at
FROM orders
WHERE buyer_id = $1
ORDER BY created_at DESC`

	rows, err := r.query(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var status string
		if err := rows.Scan(
			&o.ID, &o.BuyerID, &status, &o.TotalAmount, &o.Currency,
			&o.ShippingAddress, &o.ShippingCity, &o.ShippingPostalCode,
			&o.ShippingCountry, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate orders: %w", rows.Err())
	}

	for i := range orders {
		items, err := r.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	tag, err := r.exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
SELECT id, order_id, listing_id, quantity, unit_price, subtotal
FROM order_items
WHERE order_id = $1
ORDER BY item_position ASC`

	rows, err := r.query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ListingID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate order items: %w", rows.Err())
	}
	return items, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
