package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/cache"
	"checkout-service/internal/infra/rabbitmq"
	"checkout-service/internal/repository"
)

const orderListTTL = 30 * time.Second

type OrderService struct {
	repo  repository.OrderRepository
	cache *cache.JSON
}

func NewOrderService(r repository.OrderRepository) *OrderService {
	return &OrderService{repo: r}
}

func (s *OrderService) SetCache(c *cache.JSON) {
	s.cache = c
}

func userOrdersKey(userID uint64) string {
	return fmt.Sprintf("orders:user:%d", userID)
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID uint64) ([]domain.Order, error) {
	key := userOrdersKey(userID)

	var cached []domain.Order
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.StorageError("list orders", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	if err := s.cache.Set(ctx, key, orders, orderListTTL); err != nil {
		log.Printf("cache orders for user %d: %v", userID, err)
	}
	return orders, nil
}

func (s *OrderService) GetForUser(ctx context.Context, userID, orderID uint64) (*domain.Order, error) {
	o, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, domain.StorageError("find order", err)
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.StorageError("list orders", err)
	}
	return orders, nil
}

// UpdateStatus applies an administrative status change. pending -> paid is
// the only transition and behaves exactly like a payment confirmation.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidInput, status)
	}
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, domain.StorageError("find order", err)
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	if !o.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: cannot move order %d from %s to %s", domain.ErrInvalidState, o.ID, o.Status, status)
	}
	return s.MarkPaid(ctx, orderID)
}

// MarkPaid moves a pending order to paid and deletes the owner's cart.
func (s *OrderService) MarkPaid(ctx context.Context, orderID uint64) (*domain.Order, error) {
	o, err := s.repo.CompletePayment(ctx, orderID)
	if err != nil {
		return nil, domain.StorageError("complete payment", err)
	}
	s.InvalidateUserOrders(ctx, o.UserID)
	return o, nil
}

func (s *OrderService) InvalidateUserOrders(ctx context.Context, userID uint64) {
	if err := s.cache.Delete(ctx, userOrdersKey(userID)); err != nil {
		log.Printf("invalidate orders cache for user %d: %v", userID, err)
	}
}

// HandlePaymentConfirmed is the consumer callback for payment.confirmed events.
func (s *OrderService) HandlePaymentConfirmed(ctx context.Context, data json.RawMessage) error {
	var evt domain.PaymentConfirmedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("%w: %v", rabbitmq.ErrMalformed, err)
	}
	if evt.OrderID == 0 {
		return fmt.Errorf("%w: orderId is required", rabbitmq.ErrMalformed)
	}
	o, err := s.MarkPaid(ctx, evt.OrderID)
	if err != nil {
		return err
	}
	log.Printf("payment confirmed for order %d", o.ID)
	return nil
}
