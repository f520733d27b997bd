package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/obinnaukwu/storefront/internal/models"
	"github.com/obinnaukwu/storefront/internal/pricing"
	"github.com/obinnaukwu/storefront/internal/repo"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

type CartService struct {
	Repo        *repo.GormRepo
	TaxRate     float64
	ShippingFee float64
}

// CartView is what GET /cart returns: the rows, the owner's email for the
// payment form, and server-derived totals.
type CartView struct {
	CartItems []models.CartItem `json:"cartItems"`
	UserEmail string            `json:"userEmail"`
	Totals    pricing.Totals    `json:"totals"`
}

type UserSummary struct {
	Username         string `json:"username"`
	TotalItemsInCart uint   `json:"totalItemsInCart"`
}

func (s *CartService) AddToCart(ctx context.Context, item *models.CartItem) error {
	if item.ProductID == "" {
		return fmt.Errorf("product id must not be empty: %w", ErrValidation)
	}
	if item.Quantity == 0 {
		return fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}
	if item.ProductPrice < 0 {
		return fmt.Errorf("price must not be negative: %w", ErrValidation)
	}

	return s.Repo.AddToCart(ctx, item)
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID uint, productID string, quantity uint) (*models.CartItem, error) {
	if productID == "" {
		return nil, fmt.Errorf("product id must not be empty: %w", ErrValidation)
	}
	if quantity == 0 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	item, err := s.Repo.UpdateQuantity(ctx, userID, productID, quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product not in cart: %w", ErrNotFound)
	}
	return item, err
}

func (s *CartService) DeleteFromCart(ctx context.Context, userID uint, productID string) error {
	if productID == "" {
		return fmt.Errorf("product id must not be empty: %w", ErrValidation)
	}

	err := s.Repo.DeleteFromCart(ctx, userID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("product not in cart: %w", ErrNotFound)
	}
	return err
}

// ClearCart reports how many rows went away. Clearing an empty cart is a
// no-op success with zero deleted.
func (s *CartService) ClearCart(ctx context.Context, userID uint) (int64, error) {
	return s.Repo.ClearCart(ctx, userID)
}

func (s *CartService) GetCart(ctx context.Context, userID uint) (*CartView, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, err
	}

	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.LineItem, len(items))
	for i, it := range items {
		lines[i] = pricing.LineItem{Price: it.ProductPrice, Quantity: it.Quantity}
	}

	return &CartView{
		CartItems: items,
		UserEmail: user.Email,
		Totals:    pricing.ComputeTotals(lines, s.TaxRate, s.ShippingFee),
	}, nil
}

func (s *CartService) TotalQuantity(ctx context.Context, userID uint) (uint, error) {
	return s.Repo.TotalQuantity(ctx, userID)
}

func (s *CartService) UserSummary(ctx context.Context, userID uint) (*UserSummary, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, err
	}

	total, err := s.Repo.TotalQuantity(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserSummary{Username: user.Username, TotalItemsInCart: total}, nil
}
