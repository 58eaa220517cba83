package domain

import "time"

// Cart is the pre-checkout basket of exactly one user.
type Cart struct {
	ID        uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64     `json:"userId" gorm:"not null;uniqueIndex"`
	Items     []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
}

type CartItem struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	CartID    uint64    `json:"cartId" gorm:"not null;index"`
	ProductID uint64    `json:"productId" gorm:"not null;index"`
	Quantity  int64     `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// MaxItemQuantity bounds a single cart or order line. Together with
// MaxPriceCents it keeps line totals far from int64 overflow.
const MaxItemQuantity = 10_000

func ValidQuantity(quantity int64) bool {
	return quantity >= 1 && quantity <= MaxItemQuantity
}

func NewCartItem(cartID, productID uint64, quantity int64) (CartItem, error) {
	if !ValidQuantity(quantity) {
		return CartItem{}, ErrInvalidQuantity
	}
	return CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}, nil
}

// CartLine is a cart item joined with the current catalog entry for display.
// Available is false once the product has left the catalog; such a line
// blocks checkout until it is removed.
type CartLine struct {
	ItemID     uint64 `json:"itemId"`
	ProductID  uint64 `json:"productId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int64  `json:"quantity"`
	Available  bool   `json:"available"`
}

type CartView struct {
	CartID uint64     `json:"cartId"`
	Lines  []CartLine `json:"items"`
}
