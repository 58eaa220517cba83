package repository

import (
	"context"

	"checkout-service/internal/domain"
)

// Finders return (nil, nil) when the record does not exist.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uint64) (bool, error)
	List(ctx context.Context) ([]domain.User, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (bool, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

type CartRepository interface {
	FindByUserID(ctx context.Context, userID uint64) (*domain.Cart, error)
	FindOrCreate(ctx context.Context, userID uint64) (*domain.Cart, error)
	Lines(ctx context.Context, cartID uint64) ([]domain.CartLine, error)
	FindItemByProduct(ctx context.Context, cartID, productID uint64) (*domain.CartItem, error)
	SaveItem(ctx context.Context, item *domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID uint64, quantity int64) (bool, error)
	DeleteItem(ctx context.Context, cartID, itemID uint64) (bool, error)
	ClearItems(ctx context.Context, cartID uint64) error
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindForUser(ctx context.Context, userID, orderID uint64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uint64) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	// CompletePayment moves a pending order to paid and deletes its owner's cart
	// in one transaction.
	CompletePayment(ctx context.Context, orderID uint64) (*domain.Order, error)
}
