package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/obinnaukwu/storefront/internal/models"
	"github.com/obinnaukwu/storefront/internal/repo"
)

func newTestService(t *testing.T) *CartService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.CartItem{}, &models.Product{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	db.Create(&models.User{Username: "test_user", Email: "test@example.com", PasswordHash: "x", Role: "user"})
	db.Create(&models.User{Username: "other_user", Email: "other@example.com", PasswordHash: "x", Role: "user"})

	return &CartService{
		Repo:        &repo.GormRepo{DB: db},
		TaxRate:     0.08,
		ShippingFee: 10,
	}
}

func addItem(t *testing.T, svc *CartService, userID uint, productID string, qty uint, price float64) {
	t.Helper()
	err := svc.AddToCart(context.Background(), &models.CartItem{
		UserID:       userID,
		ProductID:    productID,
		ProductName:  "product " + productID,
		ProductImage: "https://img.example.com/" + productID,
		ProductPrice: price,
		Quantity:     qty,
	})
	require.NoError(t, err)
}

func TestAddToCartAccumulates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	addItem(t, svc, 1, "p1", 2, 10)
	addItem(t, svc, 1, "p1", 3, 10)
	addItem(t, svc, 1, "p1", 1, 10)

	view, err := svc.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.CartItems, 1)
	require.Equal(t, uint(6), view.CartItems[0].Quantity)
	require.Equal(t, "p1", view.CartItems[0].ProductID)
}

func TestAddToCartValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.AddToCart(ctx, &models.CartItem{UserID: 1, ProductID: "p1", Quantity: 0})
	require.ErrorIs(t, err, ErrValidation)

	err = svc.AddToCart(ctx, &models.CartItem{UserID: 1, ProductID: "", Quantity: 1})
	require.ErrorIs(t, err, ErrValidation)

	err = svc.AddToCart(ctx, &models.CartItem{UserID: 1, ProductID: "p1", ProductPrice: -5, Quantity: 1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateQuantitySetsAbsolute(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	addItem(t, svc, 1, "p1", 2, 10)

	item, err := svc.UpdateQuantity(ctx, 1, "p1", 7)
	require.NoError(t, err)
	require.Equal(t, uint(7), item.Quantity)

	item, err = svc.UpdateQuantity(ctx, 1, "p1", 1)
	require.NoError(t, err)
	require.Equal(t, uint(1), item.Quantity)
}

func TestUpdateQuantityNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpdateQuantity(context.Background(), 1, "missing", 3)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFromCart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	addItem(t, svc, 1, "p1", 2, 10)
	addItem(t, svc, 1, "p2", 1, 5)

	require.NoError(t, svc.DeleteFromCart(ctx, 1, "p1"))

	view, err := svc.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.CartItems, 1)
	require.Equal(t, "p2", view.CartItems[0].ProductID)

	err = svc.DeleteFromCart(ctx, 1, "p1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClearCartIsolation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	addItem(t, svc, 1, "p1", 2, 10)
	addItem(t, svc, 1, "p2", 3, 5)
	addItem(t, svc, 2, "p1", 4, 10)

	deleted, err := svc.ClearCart(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	total, err := svc.TotalQuantity(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint(0), total)

	otherTotal, err := svc.TotalQuantity(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, uint(4), otherTotal)
}

func TestClearEmptyCartIsNoOp(t *testing.T) {
	svc := newTestService(t)

	deleted, err := svc.ClearCart(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), deleted)
}

func TestTotalQuantitySumsAcrossRows(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	addItem(t, svc, 1, "p1", 2, 10)
	addItem(t, svc, 1, "p2", 3, 5)
	addItem(t, svc, 1, "p1", 1, 10)

	total, err := svc.TotalQuantity(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint(6), total)
}

func TestGetCartComputesTotals(t *testing.T) {
	svc := newTestService(t)

	addItem(t, svc, 1, "p1", 2, 10)
	addItem(t, svc, 1, "p2", 1, 5)

	view, err := svc.GetCart(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "test@example.com", view.UserEmail)
	require.Equal(t, 25.0, view.Totals.Subtotal)
	require.Equal(t, 2.0, view.Totals.Tax)
	require.Equal(t, 10.0, view.Totals.Shipping)
	require.Equal(t, 37.0, view.Totals.Total)
}

func TestUserSummary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	addItem(t, svc, 1, "p1", 2, 10)
	addItem(t, svc, 1, "p2", 5, 5)

	summary, err := svc.UserSummary(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "test_user", summary.Username)
	require.Equal(t, uint(7), summary.TotalItemsInCart)

	_, err = svc.UserSummary(ctx, 99)
	require.ErrorIs(t, err, ErrNotFound)
}
