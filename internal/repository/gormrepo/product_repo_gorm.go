package gormrepo

import (
	"context"
	"errors"
	"log"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		log.Printf("Create product error: %v", err)
		return err
	}
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID product error: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		log.Printf("List products error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *productRepo) Update(ctx context.Context, product *domain.Product) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(product).
		Select("name", "price_cents", "description").
		Updates(product)
	if res.Error != nil {
		log.Printf("Update product error: %v", res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *productRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		log.Printf("Delete product error: %v", res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
