package repository

import (
	"context"

	"checkout-service/internal/domain"
)

// CheckoutStore is bound to a single open transaction. Every call runs on the
// same connection and observes the transaction's context.
type CheckoutStore interface {
	CartByUserID(userID uint64) (*domain.Cart, error)
	CartItems(cartID uint64) ([]domain.CartItem, error)
	CreateOrder(order *domain.Order) error
	ProductsByIDs(ids []uint64) ([]domain.Product, error)
	CreateOrderItems(items []domain.OrderItem) error
	SumOrderTotal(orderID uint64) (int64, error)
	SetOrderTotal(orderID uint64, totalCents int64) error
}

// CheckoutUnitOfWork runs fn inside one transaction. It commits when fn
// returns nil and rolls back on error, panic or context cancellation.
type CheckoutUnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(store CheckoutStore) error) error
}
