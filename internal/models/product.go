package models

import "time"

// DefaultProductImage is used when a product is created without an image.
const DefaultProductImage = "https://via.placeholder.com/300x200?text=Product+Image"

// LowStockThreshold is the stock level at or below which a product counts as low stock.
const LowStockThreshold = 10

// Product is an inventory item owned by exactly one user.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	Brand       string    `json:"brand,omitempty" gorm:"type:varchar(100)"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price" gorm:"not null"`
	Category    string    `json:"category" gorm:"type:varchar(100);not null"`
	Image       string    `json:"image"`
	Stock       int       `json:"stock" gorm:"not null;default:0"`
	OwnerID     string    `json:"ownerId" gorm:"type:varchar(36);not null;index:idx_products_owner_created,priority:1"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index:idx_products_owner_created,priority:2"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateProductRequest carries the user-supplied fields of a new product.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Brand       string   `json:"brand" validate:"max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required,max=100"`
	Image       string   `json:"image" validate:"max=2048"`
	Stock       *int     `json:"stock" validate:"omitnil,gte=0"`
}

// UpdateProductRequest is a partial update. Nil fields are left untouched.
type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"omitnil,min=1,max=200"`
	Brand       *string  `json:"brand" validate:"omitnil,max=100"`
	Description *string  `json:"description" validate:"omitnil,max=2000"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0"`
	Category    *string  `json:"category" validate:"omitnil,min=1,max=100"`
	Image       *string  `json:"image" validate:"omitnil,max=2048"`
	Stock       *int     `json:"stock" validate:"omitnil,gte=0"`
}

// InventoryStats aggregates one owner's products from a single query.
type InventoryStats struct {
	TotalCount          int64   `json:"totalCount"`
	LowStockCount       int64   `json:"lowStockCount"`
	OutOfStockCount     int64   `json:"outOfStockCount"`
	TotalInventoryValue float64 `json:"totalInventoryValue"`
}
