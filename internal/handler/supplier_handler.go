package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/internal/supply"
	"github.com/crockshine/backend-erp/pkg/logger"
	"github.com/crockshine/backend-erp/prometheus"
)

// SupplierRequest is the body of POST /suppliers
type SupplierRequest struct {
	Name     string `json:"name" validate:"required"`
	Contacts string `json:"contacts"`
}

// SupplierOrderLineRequest is one line of a supplier order
type SupplierOrderLineRequest struct {
	ProductID     string          `json:"product_id" validate:"required"`
	Quantity      int             `json:"quantity" validate:"gt=0"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// SupplierOrderRequest is the body of POST /supplier-orders. Either
// supplier_id or supplier_name must be set.
type SupplierOrderRequest struct {
	SupplierID       string                     `json:"supplier_id"`
	SupplierName     string                     `json:"supplier_name"`
	SupplierContacts string                     `json:"supplier_contacts"`
	Lines            []SupplierOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// OrdersPage is one page of supplier orders
type OrdersPage struct {
	Items  []model.SupplierOrder `json:"items"`
	Total  int64                 `json:"total"`
	Offset int                   `json:"offset"`
	Limit  int                   `json:"limit"`
}

// CreateSupplier registers a supplier
func (h *Handler) CreateSupplier(c echo.Context) error {
	var req SupplierRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	supplier, err := h.Supply.CreateSupplier(c.Request().Context(), req.Name, req.Contacts)
	if err != nil {
		return respondError(c, err)
	}

	logger.FromEcho(c).Info("Supplier created", zap.String("supplier_id", supplier.ID))
	return c.JSON(http.StatusCreated, supplier)
}

// ListSuppliers returns all suppliers
func (h *Handler) ListSuppliers(c echo.Context) error {
	suppliers, err := h.Supply.ListSuppliers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, suppliers)
}

// CreateSupplierOrder records a delivery, re-prices and restocks products
func (h *Handler) CreateSupplierOrder(c echo.Context) error {
	log := logger.FromEcho(c)

	var req SupplierOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		prometheus.RecordSupplierOrder("rejected", 0)
		return respondError(c, err)
	}

	lines := make([]supply.Line, 0, len(req.Lines))
	units := 0
	for _, l := range req.Lines {
		lines = append(lines, supply.Line{ProductID: l.ProductID, Quantity: l.Quantity, PurchasePrice: l.PurchasePrice})
		units += l.Quantity
	}

	ref := supply.SupplierRef{ID: req.SupplierID, Name: req.SupplierName, Contacts: req.SupplierContacts}
	order, err := h.Supply.CreateOrder(c.Request().Context(), ref, lines)
	if err != nil {
		result := "error"
		if appErr, ok := apperr.As(err); ok && appErr.Kind != apperr.ErrPersistence {
			result = "rejected"
		}
		prometheus.RecordSupplierOrder(result, 0)
		return respondError(c, err)
	}

	prometheus.RecordSupplierOrder("created", units)
	log.Info("Supplier order created",
		zap.String("order_id", order.ID),
		zap.String("supplier_id", order.SupplierID),
		zap.Int("lines", len(order.Lines)),
		zap.Int("units", units))
	return c.JSON(http.StatusCreated, order)
}

// ListSupplierOrders returns supplier orders, newest first
func (h *Handler) ListSupplierOrders(c echo.Context) error {
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return respondError(c, err)
	}
	limit, err := queryInt(c, "limit", 100)
	if err != nil {
		return respondError(c, err)
	}

	orders, total, err := h.Supply.ListOrders(c.Request().Context(), model.SupplierOrderFilter{
		Search: c.QueryParam("search"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, OrdersPage{Items: orders, Total: total, Offset: offset, Limit: limit})
}
