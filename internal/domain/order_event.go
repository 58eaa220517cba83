package domain

import "time"

type OrderCreatedEvent struct {
	OrderID    uint64    `json:"orderId"`
	UserID     uint64    `json:"userId"`
	TotalCents int64     `json:"totalCents"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PaymentConfirmedEvent is sent by the payment collaborator once an order is paid.
type PaymentConfirmedEvent struct {
	OrderID uint64 `json:"orderId"`
}

const (
	EventOrderCreated     = "order.created"
	EventPaymentConfirmed = "payment.confirmed"
)
