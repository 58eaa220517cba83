package http

import (
	"time"

	"checkout-service/internal/domain"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	Password  *string `json:"password" binding:"omitempty,min=6"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	PriceCents  *int64 `json:"priceCents" binding:"required,min=0,max=10000000000"`
	Description string `json:"description"`
}

type AddCartItemRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1,max=10000"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity" binding:"required,min=1,max=10000"`
}

type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type SetAdminRequest struct {
	IsAdmin *bool `json:"isAdmin" binding:"required"`
}

type CheckoutResponse struct {
	Message    string `json:"message"`
	OrderID    uint64 `json:"orderId"`
	TotalCents int64  `json:"totalCents"`
	Total      string `json:"total"`
}

type OrderResponse struct {
	ID         uint64             `json:"id"`
	UserID     uint64             `json:"userId"`
	Status     domain.OrderStatus `json:"status"`
	TotalCents int64              `json:"totalCents"`
	Total      string             `json:"total"`
	CreatedAt  time.Time          `json:"createdAt"`
	ModifiedAt time.Time          `json:"modifiedAt"`
	Items      []OrderItemDTO     `json:"items,omitempty"`
}

type OrderItemDTO struct {
	ProductID          uint64 `json:"productId"`
	ProductName        string `json:"productName"`
	ProductDescription string `json:"productDescription"`
	PriceCents         int64  `json:"priceCents"`
	Quantity           int64  `json:"quantity"`
}

// formatCents renders minor units as a fixed two-decimal amount.
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func toOrderResponse(o domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		Total:      formatCents(o.TotalCents),
		CreatedAt:  o.CreatedAt,
		ModifiedAt: o.ModifiedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemDTO{
			ProductID:          it.ProductID,
			ProductName:        it.ProductName,
			ProductDescription: it.ProductDescription,
			PriceCents:         it.PriceCents,
			Quantity:           it.Quantity,
		})
	}
	return resp
}

func toOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}
