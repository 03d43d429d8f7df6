package handler

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crockshine/backend-erp/internal/report"
)

func (h *Handler) writeReport(c echo.Context, name string, rows interface{}) error {
	if c.QueryParam("format") != "csv" {
		return c.JSON(http.StatusOK, rows)
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rows); err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// TopEmployees ranks employees by revenue. ?format=csv downloads the report.
func (h *Handler) TopEmployees(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return respondError(c, err)
	}
	rows, err := h.Reports.TopEmployees(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return h.writeReport(c, "top-employees", rows)
}

// TopProducts ranks products by units sold. ?format=csv downloads the report.
func (h *Handler) TopProducts(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return respondError(c, err)
	}
	rows, err := h.Reports.TopProducts(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return h.writeReport(c, "top-products", rows)
}
