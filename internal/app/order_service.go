package app

import (
	"context"

	"github.com/vardarauto/marketplace-api/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

// OrderService covers reads and status transitions after checkout.
type OrderService struct {
	repo OrderRepository
}

func NewOrderService(repo OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if id == "" {
		return domain.Order{}, domain.ErrInvalidID
	}
	return s.repo.GetOrder(ctx, id)
}

func (s *OrderService) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	if buyerID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListOrdersByBuyer(ctx, buyerID)
}

// UpdateOrderStatus applies a status transition. Delivered and cancelled are
// terminal; anything else may move to any known status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	if !domain.ValidOrderStatus(status) {
		return domain.ErrInvalidStatus
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrder(txCtx, id)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return domain.ErrStatusFinal
		}
		if order.Status == status {
			return nil
		}
		return s.repo.UpdateOrderStatus(txCtx, id, status)
	})
}
