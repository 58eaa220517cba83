package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"
)

// CheckoutService turns a user's cart into a pending order. The cart is left
// untouched; it is released once the order is paid.
type CheckoutService struct {
	uow repository.CheckoutUnitOfWork
}

func NewCheckoutService(uow repository.CheckoutUnitOfWork) *CheckoutService {
	return &CheckoutService{uow: uow}
}

// Checkout creates an order from the cart of userID inside one transaction.
// Errors wrap domain.ErrNotFound, domain.ErrInvalidState or domain.ErrStorage;
// on any error nothing is persisted.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint64) (*domain.OrderSummary, error) {
	var summary domain.OrderSummary

	err := s.uow.WithinTransaction(ctx, func(store repository.CheckoutStore) error {
		cart, err := store.CartByUserID(userID)
		if err != nil {
			return domain.StorageError("find cart", err)
		}
		if cart == nil {
			return domain.ErrCartNotFound
		}

		items, err := store.CartItems(cart.ID)
		if err != nil {
			return domain.StorageError("load cart items", err)
		}
		if len(items) == 0 {
			return domain.ErrCartEmpty
		}

		order := &domain.Order{
			UserID: userID,
			Status: domain.StatusPending,
		}
		if err := store.CreateOrder(order); err != nil {
			return domain.StorageError("create order", err)
		}

		orderItems, expected, err := snapshotItems(store, order.ID, items)
		if err != nil {
			return err
		}
		if err := store.CreateOrderItems(orderItems); err != nil {
			return domain.StorageError("create order items", err)
		}

		total, err := store.SumOrderTotal(order.ID)
		if err != nil {
			return domain.StorageError("sum order total", err)
		}
		if total != expected {
			return fmt.Errorf("%w: order %d total %d does not match its items (%d)", domain.ErrStorage, order.ID, total, expected)
		}
		if err := store.SetOrderTotal(order.ID, total); err != nil {
			return domain.StorageError("set order total", err)
		}

		summary = domain.OrderSummary{OrderID: order.ID, TotalCents: total}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorage) || !domain.IsClassified(err) {
			log.Printf("checkout user=%d failed: %v", userID, err)
		}
		return nil, domain.StorageError("checkout", err)
	}

	log.Printf("checkout user=%d created order=%d total=%d", userID, summary.OrderID, summary.TotalCents)
	return &summary, nil
}

// snapshotItems copies the current catalog entry of every cart item into an
// order item. A cart item whose product no longer exists fails the checkout.
func snapshotItems(store repository.CheckoutStore, orderID uint64, items []domain.CartItem) ([]domain.OrderItem, int64, error) {
	ids := make([]uint64, 0, len(items))
	seen := make(map[uint64]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := store.ProductsByIDs(ids)
	if err != nil {
		return nil, 0, domain.StorageError("load products", err)
	}
	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]domain.OrderItem, 0, len(items))
	var total int64
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, 0, fmt.Errorf("%w (id %d)", domain.ErrProductNotFound, item.ProductID)
		}
		oi, err := domain.NewOrderItem(orderID, product, item.Quantity)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: cart item %d: %w", domain.ErrInvalidState, item.ID, err)
		}
		out = append(out, oi)
		total += oi.LineTotal()
	}
	return out, total, nil
}
