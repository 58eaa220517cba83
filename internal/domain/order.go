package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusPaid    OrderStatus = "paid"
)

func (s OrderStatus) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// CanTransitionTo reports whether an order in status s may move to next.
// pending -> paid is the only transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == StatusPending && next == StatusPaid
}

type Order struct {
	ID         uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uint64      `json:"userId" gorm:"not null;index"`
	Status     OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalCents int64       `json:"totalCents" gorm:"not null;default:0"`
	Items      []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	ModifiedAt time.Time   `json:"modifiedAt" gorm:"autoUpdateTime"`
}

// OrderItem is a snapshot of a purchased line. Product fields are copied at
// checkout and never re-read from the catalog.
type OrderItem struct {
	ID                 uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID            uint64 `json:"orderId" gorm:"not null;index"`
	ProductID          uint64 `json:"productId" gorm:"not null;index"`
	ProductName        string `json:"productName" gorm:"size:255;not null"`
	ProductDescription string `json:"productDescription" gorm:"type:text"`
	PriceCents         int64  `json:"priceCents" gorm:"not null"`
	Quantity           int64  `json:"quantity" gorm:"not null"`
}

// NewOrderItem snapshots product for the given quantity.
func NewOrderItem(orderID uint64, product Product, quantity int64) (OrderItem, error) {
	if !ValidQuantity(quantity) {
		return OrderItem{}, ErrInvalidQuantity
	}
	if product.PriceCents < 0 {
		return OrderItem{}, fmt.Errorf("product %d: %w", product.ID, ErrNegativePrice)
	}
	if product.PriceCents > MaxPriceCents {
		return OrderItem{}, fmt.Errorf("product %d: %w", product.ID, ErrPriceTooHigh)
	}
	return OrderItem{
		OrderID:            orderID,
		ProductID:          product.ID,
		ProductName:        product.Name,
		ProductDescription: product.Description,
		PriceCents:         product.PriceCents,
		Quantity:           quantity,
	}, nil
}

func (i OrderItem) LineTotal() int64 {
	return i.PriceCents * i.Quantity
}

// OrderSummary is the result of a successful checkout.
type OrderSummary struct {
	OrderID    uint64 `json:"orderId"`
	TotalCents int64  `json:"totalCents"`
}
