package services

import (
	"context"
	"errors"
	"testing"

	"checkout-service/internal/domain"
	"checkout-service/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetIsCached(t *testing.T) {
	c, mr := newTestCache(t)
	product := CreateMockProduct(TestProductA, "Product A", TestPriceA)

	repo := new(mocks.MockProductRepository)
	repo.On("FindByID", mock.Anything, TestProductA).Return(&product, nil).Once()

	service := NewProductService(repo)
	service.SetCache(c)
	ctx := context.Background()

	first, err := service.Get(ctx, TestProductA)
	require.NoError(t, err)
	second, err := service.Get(ctx, TestProductA)
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, TestPriceA, second.PriceCents)
	assert.True(t, mr.Exists("product:1"))
	assert.True(t, mr.TTL("product:1") > 0)
	repo.AssertExpectations(t)
}

func TestProductService_GetWithoutCache(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	repo.On("FindByID", mock.Anything, TestProductA).Return(nil, nil)

	p, err := NewProductService(repo).Get(context.Background(), TestProductA)

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Nil(t, p)
}

func TestProductService_Create(t *testing.T) {
	tests := []struct {
		name          string
		productName   string
		price         int64
		setupMocks    func(*mocks.MockProductRepository)
		expectedError error
	}{
		{
			name:        "valid product",
			productName: "  Lamp ",
			price:       1999,
			setupMocks: func(repo *mocks.MockProductRepository) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
					return p.Name == "Lamp" && p.PriceCents == 1999
				})).Return(nil)
			},
		},
		{
			name:          "blank name",
			productName:   " ",
			price:         100,
			setupMocks:    func(*mocks.MockProductRepository) {},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "negative price",
			productName:   "Lamp",
			price:         -1,
			setupMocks:    func(*mocks.MockProductRepository) {},
			expectedError: domain.ErrNegativePrice,
		},
		{
			name:        "insert fails",
			productName: "Lamp",
			price:       100,
			setupMocks: func(repo *mocks.MockProductRepository) {
				repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
			},
			expectedError: domain.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockProductRepository)
			tt.setupMocks(repo)

			p, err := NewProductService(repo).Create(context.Background(), tt.productName, tt.price, "")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, p)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Lamp", p.Name)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestProductService_UpdateEvictsCache(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("product:1", `{"id":1,"name":"stale"}`))

	product := CreateMockProduct(TestProductA, "Product A", TestPriceA)
	repo := new(mocks.MockProductRepository)
	repo.On("FindByID", mock.Anything, TestProductA).Return(&product, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.PriceCents == 750 && p.Name == "Product A"
	})).Return(true, nil)

	service := NewProductService(repo)
	service.SetCache(c)

	price := int64(750)
	updated, err := service.Update(context.Background(), TestProductA, domain.ProductPatch{PriceCents: &price})

	require.NoError(t, err)
	assert.Equal(t, int64(750), updated.PriceCents)
	assert.False(t, mr.Exists("product:1"))
	repo.AssertExpectations(t)
}

func TestProductService_UpdateRejectsInvalidPatch(t *testing.T) {
	product := CreateMockProduct(TestProductA, "Product A", TestPriceA)
	repo := new(mocks.MockProductRepository)
	repo.On("FindByID", mock.Anything, TestProductA).Return(&product, nil)

	price := int64(-5)
	_, err := NewProductService(repo).Update(context.Background(), TestProductA, domain.ProductPatch{PriceCents: &price})

	assert.ErrorIs(t, err, domain.ErrNegativePrice)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_Delete(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("product:1", `{"id":1}`))

	repo := new(mocks.MockProductRepository)
	repo.On("Delete", mock.Anything, TestProductA).Return(true, nil).Once()
	repo.On("Delete", mock.Anything, TestProductA).Return(false, nil).Once()

	service := NewProductService(repo)
	service.SetCache(c)
	ctx := context.Background()

	require.NoError(t, service.Delete(ctx, TestProductA))
	assert.False(t, mr.Exists("product:1"))
	assert.ErrorIs(t, service.Delete(ctx, TestProductA), domain.ErrProductNotFound)
}
