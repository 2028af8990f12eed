package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockhive/internal/models"
	"stockhive/internal/services"
)

// ProductHandler handles HTTP requests for products. Every route expects an authenticated principal.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product routes behind requireAuth. Literal segments are registered before /:id.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	productRoutes := router.Group("/products", requireAuth)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/stats", h.HandleGetStats)
	productRoutes.Get("/category/:name", h.HandleGetProductsByCategory)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)

	router.Get("/categories", requireAuth, h.HandleGetCategories)
}

// HandleGetProducts lists the caller's products, newest first.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	products, err := h.service.GetAllProducts(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "", nonNil(products))
}

// HandleCreateProduct creates a product owned by the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	product, err := h.service.CreateProduct(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, "Product created successfully", product)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	product, err := h.service.GetProductByID(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "", product)
}

// HandleUpdateProduct applies a partial update to one of the caller's products.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req models.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	product, err := h.service.UpdateProduct(c.UserContext(), principal, c.Params("id"), req)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Product updated successfully", product)
}

// HandleDeleteProduct deletes one of the caller's products.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteProduct(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Product deleted successfully", nil)
}

// HandleSearchProducts handles GET /products/search?query=.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	products, err := h.service.SearchProducts(c.UserContext(), principal, c.Query("query"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "", nonNil(products))
}

// HandleGetProductsByCategory lists the caller's products whose category contains :name.
func (h *ProductHandler) HandleGetProductsByCategory(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	products, err := h.service.GetProductsByCategory(c.UserContext(), principal, c.Params("name"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "", nonNil(products))
}

// HandleGetCategories returns the caller's distinct categories, sorted.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	categories, err := h.service.GetCategories(c.UserContext(), principal)
	if err != nil {
		return err
	}
	if categories == nil {
		categories = []string{}
	}
	return ok(c, fiber.StatusOK, "", categories)
}

// HandleGetStats returns the caller's inventory aggregates.
func (h *ProductHandler) HandleGetStats(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	stats, err := h.service.GetStats(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "", stats)
}

// nonNil keeps empty lists serialized as [] rather than null.
func nonNil(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	return products
}
