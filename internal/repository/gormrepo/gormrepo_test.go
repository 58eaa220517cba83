package gormrepo

import (
	"context"
	"fmt"
	"testing"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/database"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every statement on the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig("silent"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x", FirstName: "Test", LastName: "User"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, name string, priceCents int64) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, PriceCents: priceCents, Description: name + " description"}
	require.NoError(t, db.Create(p).Error)
	return p
}

type line struct {
	product  *domain.Product
	quantity int64
}

// seedCart creates a cart for userID holding lines in order.
func seedCart(t *testing.T, db *gorm.DB, userID uint64, lines ...line) *domain.Cart {
	t.Helper()
	cart := &domain.Cart{UserID: userID}
	require.NoError(t, db.Create(cart).Error)
	for _, l := range lines {
		require.NoError(t, db.Create(&domain.CartItem{CartID: cart.ID, ProductID: l.product.ID, Quantity: l.quantity}).Error)
	}
	return cart
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.WithContext(context.Background()).Model(model).Count(&n).Error)
	return n
}
