package services

import (
	"context"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"
)

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

func (s *CartService) GetCart(ctx context.Context, userID uint64) (*domain.CartView, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, domain.StorageError("find cart", err)
	}
	if cart == nil {
		return nil, domain.ErrCartNotFound
	}
	lines, err := s.carts.Lines(ctx, cart.ID)
	if err != nil {
		return nil, domain.StorageError("load cart lines", err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return &domain.CartView{CartID: cart.ID, Lines: lines}, nil
}

// AddItem puts quantity units of productID in the user's cart, creating the
// cart on first use. Adding a product already in the cart raises its quantity.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint64, quantity int64) (*domain.CartItem, error) {
	if !domain.ValidQuantity(quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, domain.StorageError("find product", err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}

	cart, err := s.carts.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, domain.StorageError("find or create cart", err)
	}

	item, err := s.carts.FindItemByProduct(ctx, cart.ID, productID)
	if err != nil {
		return nil, domain.StorageError("find cart item", err)
	}
	if item == nil {
		created, err := domain.NewCartItem(cart.ID, productID, quantity)
		if err != nil {
			return nil, err
		}
		item = &created
	} else {
		if item.Quantity > domain.MaxItemQuantity-quantity {
			return nil, domain.ErrInvalidQuantity
		}
		item.Quantity += quantity
	}

	if err := s.carts.SaveItem(ctx, item); err != nil {
		return nil, domain.StorageError("save cart item", err)
	}
	return item, nil
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID uint64, quantity int64) error {
	if !domain.ValidQuantity(quantity) {
		return domain.ErrInvalidQuantity
	}
	cart, err := s.userCart(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := s.carts.UpdateItemQuantity(ctx, cart.ID, itemID, quantity)
	if err != nil {
		return domain.StorageError("update cart item", err)
	}
	if !ok {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint64) error {
	cart, err := s.userCart(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := s.carts.DeleteItem(ctx, cart.ID, itemID)
	if err != nil {
		return domain.StorageError("delete cart item", err)
	}
	if !ok {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint64) error {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return domain.StorageError("find cart", err)
	}
	if cart == nil {
		return domain.ErrCartNotFound
	}
	if err := s.carts.ClearItems(ctx, cart.ID); err != nil {
		return domain.StorageError("clear cart", err)
	}
	return nil
}

// userCart looks up the cart for item-level changes. A missing cart means the
// item cannot be in it.
func (s *CartService) userCart(ctx context.Context, userID uint64) (*domain.Cart, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, domain.StorageError("find cart", err)
	}
	if cart == nil {
		return nil, domain.ErrCartItemNotFound
	}
	return cart, nil
}
