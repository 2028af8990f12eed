package repositories

import (
	"context"

	"stockhive/internal/models"
)

// ProductRepository defines the interface for product data access.
// Every method is scoped to ownerID; a product owned by someone else behaves as if it did not exist.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Product, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Product, error)
	Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (*models.Product, error)
	Delete(ctx context.Context, ownerID, id string) error
	Search(ctx context.Context, ownerID, query string) ([]models.Product, error)
	ListByCategory(ctx context.Context, ownerID, category string) ([]models.Product, error)
	Categories(ctx context.Context, ownerID string) ([]string, error)
	Stats(ctx context.Context, ownerID string) (*models.InventoryStats, error)
}
