package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/middleware"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/internal/sales"
	"github.com/crockshine/backend-erp/pkg/logger"
	"github.com/crockshine/backend-erp/prometheus"
)

// SaleItemRequest is one line of a sale request
type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// SaleRequest is the body of POST /sales
type SaleRequest struct {
	Items []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SalesPage is one page of the sale history
type SalesPage struct {
	Items  []model.Sale `json:"items"`
	Total  int64        `json:"total"`
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
}

func saleResult(err error) string {
	appErr, ok := apperr.As(err)
	if !ok {
		return "error"
	}
	switch appErr.Kind {
	case apperr.ErrOutOfStock, apperr.ErrInsufficientStock:
		return "rejected_stock"
	case apperr.ErrValidation, apperr.ErrNotFound:
		return "rejected_invalid"
	default:
		return "error"
	}
}

// CreateSale records a sale for the authenticated employee
func (h *Handler) CreateSale(c echo.Context) error {
	log := logger.FromEcho(c)

	employeeID, ok := middleware.EmployeeID(c)
	if !ok {
		return respondError(c, apperr.Unauthorized("missing employee identity"))
	}

	var req SaleRequest
	if err := bindAndValidate(c, &req); err != nil {
		prometheus.RecordSale("rejected_invalid", 0, 0)
		return respondError(c, err)
	}

	items := make([]sales.Item, 0, len(req.Items))
	units := 0
	for _, it := range req.Items {
		items = append(items, sales.Item{ProductID: it.ProductID, Quantity: it.Quantity})
		units += it.Quantity
	}

	sale, err := h.Sales.CreateSale(c.Request().Context(), employeeID, items)
	if err != nil {
		prometheus.RecordSale(saleResult(err), 0, 0)
		return respondError(c, err)
	}

	revenue, _ := sale.FinalPrice.Float64()
	prometheus.RecordSale("created", revenue, units)
	log.Info("Sale created",
		zap.String("sale_id", sale.ID),
		zap.String("employee_id", employeeID),
		zap.Int("lines", len(sale.Items)),
		zap.String("final_price", sale.FinalPrice.String()))
	return c.JSON(http.StatusCreated, sale)
}

// ListSales returns the sale history, newest first
func (h *Handler) ListSales(c echo.Context) error {
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return respondError(c, err)
	}
	limit, err := queryInt(c, "limit", 100)
	if err != nil {
		return respondError(c, err)
	}

	list, total, err := h.Sales.ListSales(c.Request().Context(), offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, SalesPage{Items: list, Total: total, Offset: offset, Limit: limit})
}
