package services

import "checkout-service/internal/domain"

func CreateMockCart(id, userID uint64) *domain.Cart {
	return &domain.Cart{ID: id, UserID: userID}
}

func CreateMockCartItem(id, cartID, productID uint64, quantity int64) domain.CartItem {
	return domain.CartItem{ID: id, CartID: cartID, ProductID: productID, Quantity: quantity}
}

func CreateMockProduct(id uint64, name string, priceCents int64) domain.Product {
	return domain.Product{ID: id, Name: name, PriceCents: priceCents, Description: name + " description"}
}

const (
	TestUserID    = uint64(10)
	TestCartID    = uint64(20)
	TestOrderID   = uint64(30)
	TestProductA  = uint64(1)
	TestProductB  = uint64(2)
	TestPriceA    = int64(500)
	TestPriceB    = int64(1200)
	TestQuantityA = int64(2)
	TestQuantityB = int64(1)
)
