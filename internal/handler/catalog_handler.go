package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/catalog"
	"github.com/crockshine/backend-erp/pkg/logger"
	"github.com/crockshine/backend-erp/prometheus"
)

// ProductRequest is the body of POST /products
type ProductRequest struct {
	Name       string          `json:"name" validate:"required"`
	SizeID     string          `json:"size_id" validate:"required"`
	Price      decimal.Decimal `json:"price"`
	Season     string          `json:"season" validate:"required"`
	ColorID    string          `json:"color_id" validate:"required"`
	CategoryID string          `json:"category_id" validate:"required"`
}

// ProductPatchRequest is the body of PATCH /products/:id
type ProductPatchRequest struct {
	Name       *string          `json:"name"`
	SizeID     *string          `json:"size_id"`
	Price      *decimal.Decimal `json:"price"`
	Season     *string          `json:"season"`
	ColorID    *string          `json:"color_id"`
	CategoryID *string          `json:"category_id"`
}

// NameRequest is the body for creating categories and colors
type NameRequest struct {
	Name string `json:"name" validate:"required"`
}

// SizeRequest is the body of POST /sizes
type SizeRequest struct {
	Value int `json:"value" validate:"required,gt=0"`
}

// SearchProducts lists products matching the query parameters
func (h *Handler) SearchProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return respondError(c, err)
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return respondError(c, err)
	}
	sizes, err := queryIntList(c, "sizes")
	if err != nil {
		return respondError(c, err)
	}

	q := catalog.SearchQuery{
		Search:      c.QueryParam("search"),
		CategoryIDs: queryList(c, "category_ids"),
		ColorIDs:    queryList(c, "color_ids"),
		SizeIDs:     queryList(c, "size_ids"),
		Sizes:       sizes,
		Seasons:     queryList(c, "seasons"),
		Offset:      offset,
		Limit:       limit,
	}
	result, err := h.Catalog.Search(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}

	log.Debug("Products searched",
		zap.String("search", q.Search),
		zap.Int("count", len(result.Items)),
		zap.Int64("total", result.Total))
	return c.JSON(http.StatusOK, result)
}

// GetProduct returns one product with its discounted price
func (h *Handler) GetProduct(c echo.Context) error {
	view, err := h.Catalog.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// CreateProduct adds a product to the catalog
func (h *Handler) CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	product, err := h.Catalog.CreateProduct(c.Request().Context(), catalog.ProductInput{
		Name:       req.Name,
		SizeID:     req.SizeID,
		Price:      req.Price,
		Season:     req.Season,
		ColorID:    req.ColorID,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordCatalogOperation("product", "create")
	log.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("price", product.Price.String()))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct patches a product
func (h *Handler) UpdateProduct(c echo.Context) error {
	var req ProductPatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	product, err := h.Catalog.UpdateProduct(c.Request().Context(), c.Param("id"), catalog.ProductPatch{
		Name:       req.Name,
		SizeID:     req.SizeID,
		Price:      req.Price,
		Season:     req.Season,
		ColorID:    req.ColorID,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordCatalogOperation("product", "update")
	logger.FromEcho(c).Info("Product updated", zap.String("product_id", product.ID))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product with its inventory
func (h *Handler) DeleteProduct(c echo.Context) error {
	id := c.Param("id")
	if err := h.Catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}

	prometheus.RecordCatalogOperation("product", "delete")
	logger.FromEcho(c).Info("Product deleted", zap.String("product_id", id))
	return c.NoContent(http.StatusNoContent)
}

// FilterOptions lists the values the search filters accept
func (h *Handler) FilterOptions(c echo.Context) error {
	opts, err := h.Catalog.FilterOptions(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, opts)
}

// CreateCategory adds a category
func (h *Handler) CreateCategory(c echo.Context) error {
	var req NameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	category, err := h.Catalog.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordCatalogOperation("category", "create")
	return c.JSON(http.StatusCreated, category)
}

// DeleteCategory removes a category and its products
func (h *Handler) DeleteCategory(c echo.Context) error {
	id := c.Param("id")
	if err := h.Catalog.DeleteCategory(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}

	prometheus.RecordCatalogOperation("category", "delete")
	logger.FromEcho(c).Info("Category deleted", zap.String("category_id", id))
	return c.NoContent(http.StatusNoContent)
}

// CreateColor adds a color
func (h *Handler) CreateColor(c echo.Context) error {
	var req NameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	color, err := h.Catalog.CreateColor(c.Request().Context(), req.Name)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordCatalogOperation("color", "create")
	return c.JSON(http.StatusCreated, color)
}

// DeleteColor removes a color and its products
func (h *Handler) DeleteColor(c echo.Context) error {
	id := c.Param("id")
	if err := h.Catalog.DeleteColor(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}

	prometheus.RecordCatalogOperation("color", "delete")
	logger.FromEcho(c).Info("Color deleted", zap.String("color_id", id))
	return c.NoContent(http.StatusNoContent)
}

// CreateSize adds a size
func (h *Handler) CreateSize(c echo.Context) error {
	var req SizeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	size, err := h.Catalog.CreateSize(c.Request().Context(), req.Value)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordCatalogOperation("size", "create")
	return c.JSON(http.StatusCreated, size)
}

// DeleteSize removes a size by its value
func (h *Handler) DeleteSize(c echo.Context) error {
	value, err := strconv.Atoi(c.Param("value"))
	if err != nil {
		return respondError(c, apperr.Validation("size value must be an integer"))
	}
	if err := h.Catalog.DeleteSize(c.Request().Context(), value); err != nil {
		return respondError(c, err)
	}

	prometheus.RecordCatalogOperation("size", "delete")
	logger.FromEcho(c).Info("Size deleted", zap.Int("value", value))
	return c.NoContent(http.StatusNoContent)
}
