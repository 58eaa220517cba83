package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"log"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func itemsByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items", itemsByID).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID error: %v", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindForUser(ctx context.Context, userID, orderID uint64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", itemsByID).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindForUser error: %v", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID uint64) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		log.Printf("ListByUser error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) List(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		log.Printf("List orders error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) CompletePayment(ctx context.Context, orderID uint64) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Limit(1).Find(&order, orderID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}
		if !order.Status.CanTransitionTo(domain.StatusPaid) {
			return fmt.Errorf("%w: order %d is already %s", domain.ErrInvalidState, order.ID, order.Status)
		}

		res = tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", order.ID, domain.StatusPending).
			Update("status", domain.StatusPaid)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d changed concurrently", domain.ErrInvalidState, order.ID)
		}
		order.Status = domain.StatusPaid

		var cart domain.Cart
		res = tx.Where("user_id = ?", order.UserID).Limit(1).Find(&cart)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cart).Error
	})
	if err != nil {
		log.Printf("CompletePayment order=%d error: %v", orderID, err)
		return nil, domain.StorageError("complete payment", err)
	}

	log.Printf("Order %d marked paid, cart of user %d released", order.ID, order.UserID)
	return &order, nil
}
