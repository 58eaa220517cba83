package gormrepo

import (
	"context"
	"database/sql"
	"errors"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"gorm.io/gorm"
)

type checkoutUnitOfWork struct {
	db     *gorm.DB
	txOpts *sql.TxOptions
}

// NewCheckoutUnitOfWork returns a unit of work that opens one transaction per
// call. sql.LevelDefault leaves the isolation level to the database.
func NewCheckoutUnitOfWork(db *gorm.DB, isolation sql.IsolationLevel) repository.CheckoutUnitOfWork {
	u := &checkoutUnitOfWork{db: db}
	if isolation != sql.LevelDefault {
		u.txOpts = &sql.TxOptions{Isolation: isolation}
	}
	return u
}

func (u *checkoutUnitOfWork) WithinTransaction(ctx context.Context, fn func(store repository.CheckoutStore) error) error {
	run := func(tx *gorm.DB) error {
		return fn(&checkoutStore{tx: tx})
	}
	if u.txOpts == nil {
		return u.db.WithContext(ctx).Transaction(run)
	}
	return u.db.WithContext(ctx).Transaction(run, u.txOpts)
}

type checkoutStore struct {
	tx *gorm.DB
}

func (s *checkoutStore) CartByUserID(userID uint64) (*domain.Cart, error) {
	var cart domain.Cart
	res := s.tx.Where("user_id = ?", userID).Limit(1).Find(&cart)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &cart, nil
}

func (s *checkoutStore) CartItems(cartID uint64) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := s.tx.Where("cart_id = ?", cartID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *checkoutStore) CreateOrder(order *domain.Order) error {
	if err := s.tx.Create(order).Error; err != nil {
		return err
	}
	if order.ID == 0 {
		return errors.New("failed to assign order ID")
	}
	return nil
}

func (s *checkoutStore) ProductsByIDs(ids []uint64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []domain.Product
	if err := s.tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *checkoutStore) CreateOrderItems(items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return s.tx.Create(&items).Error
}

func (s *checkoutStore) SumOrderTotal(orderID uint64) (int64, error) {
	var total int64
	err := s.tx.Model(&domain.OrderItem{}).
		Select("COALESCE(SUM(price_cents * quantity), 0)").
		Where("order_id = ?", orderID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *checkoutStore) SetOrderTotal(orderID uint64, totalCents int64) error {
	res := s.tx.Model(&domain.Order{}).Where("id = ?", orderID).Update("total_cents", totalCents)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
