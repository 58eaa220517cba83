package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/cache"
	"checkout-service/internal/repository"
)

const productTTL = 5 * time.Minute

type ProductService struct {
	repo  repository.ProductRepository
	cache *cache.JSON
}

func NewProductService(r repository.ProductRepository) *ProductService {
	return &ProductService{repo: r}
}

func (s *ProductService) SetCache(c *cache.JSON) {
	s.cache = c
}

func productKey(id uint64) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.StorageError("list products", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id uint64) (*domain.Product, error) {
	var cached domain.Product
	if s.cache.Get(ctx, productKey(id), &cached) {
		return &cached, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.StorageError("find product", err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	if err := s.cache.Set(ctx, productKey(id), p, productTTL); err != nil {
		log.Printf("cache product %d: %v", id, err)
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, name string, priceCents int64, description string) (*domain.Product, error) {
	p, err := domain.NewProduct(name, priceCents, description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, domain.StorageError("create product", err)
	}
	return p, nil
}

// Update applies a partial update; fields left nil keep their value.
func (s *ProductService) Update(ctx context.Context, id uint64, patch domain.ProductPatch) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.StorageError("find product", err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	if err := p.Apply(patch); err != nil {
		return nil, err
	}
	ok, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, domain.StorageError("update product", err)
	}
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	s.evict(ctx, id)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return domain.StorageError("delete product", err)
	}
	if !ok {
		return domain.ErrProductNotFound
	}
	s.evict(ctx, id)
	return nil
}

func (s *ProductService) evict(ctx context.Context, id uint64) {
	if err := s.cache.Delete(ctx, productKey(id)); err != nil {
		log.Printf("evict product %d: %v", id, err)
	}
}
