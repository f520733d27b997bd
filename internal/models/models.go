package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

// CartItem keeps the product snapshot taken at add-time. The catalog price
// may change later, the cart keeps what the user saw.
type CartItem struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"                    json:"id"`
	UserID       uint      `gorm:"uniqueIndex:idx_user_product;index;not null" json:"user_id"`
	ProductID    string    `gorm:"uniqueIndex:idx_user_product;not null"       json:"product_id"`
	ProductName  string    `gorm:"not null"                                    json:"product_name"`
	ProductImage string    `json:"product_image"`
	ProductPrice float64   `gorm:"not null"                                    json:"product_price"`
	Quantity     uint      `gorm:"default:1;check:quantity>0"                  json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"not null"                  json:"name"`
	Description string  `gorm:"not null"                  json:"description"`
	Image       string  `json:"image"`
	Price       float64 `gorm:"not null"                  json:"price"`
	Count       uint    `json:"count"`
}
