package gormrepo

import (
	"context"
	"log"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"gorm.io/gorm"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) FindByUserID(ctx context.Context, userID uint64) (*domain.Cart, error) {
	var cart domain.Cart
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&cart)
	if res.Error != nil {
		log.Printf("FindByUserID cart error: %v", res.Error)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &cart, nil
}

// FindOrCreate returns the user's cart, creating it on first use.
func (r *cartRepo) FindOrCreate(ctx context.Context, userID uint64) (*domain.Cart, error) {
	var cart domain.Cart
	if err := r.db.WithContext(ctx).Where(domain.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		log.Printf("FindOrCreate cart error: %v", err)
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepo) Lines(ctx context.Context, cartID uint64) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	err := r.db.WithContext(ctx).
		Table("cart_items AS ci").
		Select("ci.id AS item_id, ci.product_id, COALESCE(p.name, '') AS name, " +
			"COALESCE(p.price_cents, 0) AS price_cents, ci.quantity, p.id IS NOT NULL AS available").
		Joins("LEFT JOIN products p ON p.id = ci.product_id").
		Where("ci.cart_id = ?", cartID).
		Order("ci.id").
		Scan(&lines).Error
	if err != nil {
		log.Printf("Lines cart error: %v", err)
		return nil, err
	}
	return lines, nil
}

func (r *cartRepo) FindItemByProduct(ctx context.Context, cartID, productID uint64) (*domain.CartItem, error) {
	var item domain.CartItem
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Limit(1).
		Find(&item)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *cartRepo) SaveItem(ctx context.Context, item *domain.CartItem) error {
	db := r.db.WithContext(ctx)
	if item.ID == 0 {
		return db.Create(item).Error
	}
	return db.Model(item).Update("quantity", item.Quantity).Error
}

func (r *cartRepo) UpdateItemQuantity(ctx context.Context, cartID, itemID uint64, quantity int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *cartRepo) DeleteItem(ctx context.Context, cartID, itemID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *cartRepo) ClearItems(ctx context.Context, cartID uint64) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error
}
