package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stockhive/internal/apperrors"
	"stockhive/internal/models"
)

const newestFirst = "created_at DESC, id DESC"

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
// Every query is bounded by timeout; a non-positive timeout uses DefaultTimeout.
func NewGORMProductRepository(db *gorm.DB, timeout time.Duration) *GORMProductRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GORMProductRepository{
		db:      db,
		timeout: timeout,
	}
}

func (r *GORMProductRepository) owned(ctx context.Context, ownerID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("owner_id = ?", ownerID)
}

// Create inserts a product. The caller sets OwnerID.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if product.OwnerID == "" {
		return fmt.Errorf("failed to create product: missing owner")
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	return translate("failed to create product", r.db.WithContext(ctx).Create(product).Error)
}

// ListByOwner returns the owner's products, newest first.
func (r *GORMProductRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	products := make([]models.Product, 0)
	if err := r.owned(ctx, ownerID).Order(newestFirst).Find(&products).Error; err != nil {
		return nil, translate("failed to list products", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID within the owner's scope.
func (r *GORMProductRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var product models.Product
	if err := r.owned(ctx, ownerID).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translate(fmt.Sprintf("failed to get product %s", id), err)
	}
	return &product, nil
}

// Update applies changes with one UPDATE filtered by id and owner, then reads the row back.
func (r *GORMProductRepository) Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	delete(changes, "owner_id")
	delete(changes, "id")
	changes["updated_at"] = r.db.NowFunc()

	res := r.owned(ctx, ownerID).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, translate("failed to update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("product %s not found for update: %w", id, apperrors.ErrNotFound)
	}

	var product models.Product
	if err := r.owned(ctx, ownerID).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translate("failed to reload product", err)
	}
	return &product, nil
}

// Delete removes a product with one DELETE filtered by id and owner.
func (r *GORMProductRepository) Delete(ctx context.Context, ownerID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Product{})
	if res.Error != nil {
		return translate("failed to delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s not found for deletion: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// Search matches query as a case-insensitive substring of name, description or category.
func (r *GORMProductRepository) Search(ctx context.Context, ownerID, query string) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pattern := containsPattern(query)
	products := make([]models.Product, 0)
	err := r.owned(ctx, ownerID).
		Where(`(LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(description) LIKE LOWER(?) ESCAPE '\' OR LOWER(category) LIKE LOWER(?) ESCAPE '\')`, pattern, pattern, pattern).
		Order(newestFirst).
		Find(&products).Error
	if err != nil {
		return nil, translate("failed to search products", err)
	}
	return products, nil
}

// ListByCategory matches category as a case-insensitive substring.
func (r *GORMProductRepository) ListByCategory(ctx context.Context, ownerID, category string) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	products := make([]models.Product, 0)
	err := r.owned(ctx, ownerID).
		Where(`LOWER(category) LIKE LOWER(?) ESCAPE '\'`, containsPattern(category)).
		Order(newestFirst).
		Find(&products).Error
	if err != nil {
		return nil, translate("failed to list products by category", err)
	}
	return products, nil
}

// Categories returns the owner's distinct categories in ascending order.
func (r *GORMProductRepository) Categories(ctx context.Context, ownerID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	categories := make([]string, 0)
	if err := r.owned(ctx, ownerID).Distinct().Order("category ASC").Pluck("category", &categories).Error; err != nil {
		return nil, translate("failed to list categories", err)
	}
	return categories, nil
}

// Stats computes all four figures in a single aggregate query.
func (r *GORMProductRepository) Stats(ctx context.Context, ownerID string) (*models.InventoryStats, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stats models.InventoryStats
	err := r.owned(ctx, ownerID).
		Select(`COUNT(*) AS total_count,
			COALESCE(SUM(CASE WHEN stock <= ? THEN 1 ELSE 0 END), 0) AS low_stock_count,
			COALESCE(SUM(CASE WHEN stock <= 0 THEN 1 ELSE 0 END), 0) AS out_of_stock_count,
			COALESCE(SUM(price * stock), 0) AS total_inventory_value`, models.LowStockThreshold).
		Scan(&stats).Error
	if err != nil {
		return nil, translate("failed to compute inventory stats", err)
	}
	return &stats, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern leaves case alone; both sides of the LIKE are folded by the same SQL LOWER().
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
