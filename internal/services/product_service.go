package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"stockhive/internal/apperrors"
	"stockhive/internal/models"
	"stockhive/internal/repositories"
	"stockhive/internal/validation"
)

// EventPublisher delivers product events. Delivery is best-effort.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event models.ProductEvent) error
}

// CategoryCache memoizes an owner's distinct categories. GetCategories returns the owner's
// generation even on a miss; SetCategories drops the fill if an invalidation bumped it since.
type CategoryCache interface {
	GetCategories(ctx context.Context, ownerID string) (categories []string, generation int64, ok bool, err error)
	SetCategories(ctx context.Context, ownerID string, generation int64, categories []string) error
	InvalidateCategories(ctx context.Context, ownerID string) error
}

// ProductService handles business logic related to products.
// Every operation is scoped to the Principal it is given.
type ProductService struct {
	repo      repositories.ProductRepository
	cache     CategoryCache
	publisher EventPublisher
	validate  *validation.Validator
	logger    *zap.Logger
	now       func() time.Time
}

// NewProductService creates a new ProductService. cache and publisher may be nil.
func NewProductService(repo repositories.ProductRepository, cache CategoryCache, publisher EventPublisher, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		validate:  validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// CreateProduct validates fields, applies defaults and stores a product owned by the principal.
func (s *ProductService) CreateProduct(ctx context.Context, principal models.Principal, req models.CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Brand = strings.TrimSpace(req.Brand)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	req.Image = strings.TrimSpace(req.Image)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Image:       req.Image,
		OwnerID:     principal.ID,
	}
	if product.Image == "" {
		product.Image = models.DefaultProductImage
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, models.ProductCreated, product)
	return product, nil
}

// GetAllProducts retrieves the principal's products, newest first.
func (s *ProductService) GetAllProducts(ctx context.Context, principal models.Principal) ([]models.Product, error) {
	return s.repo.ListByOwner(ctx, principal.ID)
}

// GetProductByID fails with apperrors.ErrNotFound for unknown ids and for other owners' products alike.
func (s *ProductService) GetProductByID(ctx context.Context, principal models.Principal, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, principal.ID, id)
}

// UpdateProduct applies the non-nil fields of req. The owner never changes.
func (s *ProductService) UpdateProduct(ctx context.Context, principal models.Principal, id string, req models.UpdateProductRequest) (*models.Product, error) {
	trim(req.Name)
	trim(req.Brand)
	trim(req.Description)
	trim(req.Category)
	trim(req.Image)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	changes := make(map[string]interface{})
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Brand != nil {
		changes["brand"] = *req.Brand
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Price != nil {
		changes["price"] = *req.Price
	}
	if req.Category != nil {
		changes["category"] = *req.Category
	}
	if req.Image != nil {
		image := *req.Image
		if image == "" {
			image = models.DefaultProductImage
		}
		changes["image"] = image
	}
	if req.Stock != nil {
		changes["stock"] = *req.Stock
	}

	product, err := s.repo.Update(ctx, principal.ID, id, changes)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, models.ProductUpdated, product)
	return product, nil
}

// DeleteProduct removes one of the principal's products.
func (s *ProductService) DeleteProduct(ctx context.Context, principal models.Principal, id string) error {
	if err := s.repo.Delete(ctx, principal.ID, id); err != nil {
		return err
	}

	s.afterWrite(ctx, models.ProductDeleted, &models.Product{ID: id, OwnerID: principal.ID})
	return nil
}

// SearchProducts finds query in name, description or category, ignoring case.
func (s *ProductService) SearchProducts(ctx context.Context, principal models.Principal, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("Query parameter is required", map[string]string{"query": "query is required"})
	}
	return s.repo.Search(ctx, principal.ID, query)
}

// GetProductsByCategory lists products whose category contains category, ignoring case.
func (s *ProductService) GetProductsByCategory(ctx context.Context, principal models.Principal, category string) ([]models.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperrors.NewValidationError("Category is required", map[string]string{"category": "category is required"})
	}
	return s.repo.ListByCategory(ctx, principal.ID, category)
}

// GetCategories returns the principal's distinct categories, sorted. Served from the cache when possible.
func (s *ProductService) GetCategories(ctx context.Context, principal models.Principal) ([]string, error) {
	fill := false
	var generation int64
	if s.cache != nil {
		categories, gen, ok, err := s.cache.GetCategories(ctx, principal.ID)
		switch {
		case err != nil:
			s.logger.Warn("category cache read failed", zap.String("owner_id", principal.ID), zap.Error(err))
		case ok:
			return categories, nil
		default:
			fill, generation = true, gen
		}
	}

	categories, err := s.repo.Categories(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	if fill {
		if err := s.cache.SetCategories(ctx, principal.ID, generation, categories); err != nil {
			s.logger.Warn("category cache write failed", zap.String("owner_id", principal.ID), zap.Error(err))
		}
	}
	return categories, nil
}

// GetStats returns counts and total value computed from one aggregate query.
func (s *ProductService) GetStats(ctx context.Context, principal models.Principal) (*models.InventoryStats, error) {
	stats, err := s.repo.Stats(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("inventory stats for %s: %w", principal.ID, err)
	}
	return stats, nil
}

func (s *ProductService) afterWrite(ctx context.Context, kind models.ProductEventType, product *models.Product) {
	if s.cache != nil {
		if err := s.cache.InvalidateCategories(ctx, product.OwnerID); err != nil {
			s.logger.Warn("category cache invalidation failed", zap.String("owner_id", product.OwnerID), zap.Error(err))
		}
	}

	if s.publisher == nil {
		return
	}
	event := models.ProductEvent{
		Type:       kind,
		ProductID:  product.ID,
		OwnerID:    product.OwnerID,
		Name:       product.Name,
		Stock:      product.Stock,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishProductEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish product event",
			zap.String("type", string(kind)),
			zap.String("product_id", product.ID),
			zap.Error(err))
	}
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
