package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/crockshine/backend-erp/internal/discount"
	"github.com/crockshine/backend-erp/pkg/logger"
	"github.com/crockshine/backend-erp/prometheus"
)

// DiscountRuleRequest is the body of POST /discounts
type DiscountRuleRequest struct {
	Name        string          `json:"name" validate:"required"`
	Percentage  decimal.Decimal `json:"percentage"`
	CategoryIDs []string        `json:"category_ids"`
	ColorIDs    []string        `json:"color_ids"`
	SizeIDs     []string        `json:"size_ids"`
	Seasons     []string        `json:"seasons"`
}

// ListDiscountRules returns every rule with its filters
func (h *Handler) ListDiscountRules(c echo.Context) error {
	rules, err := h.Discounts.ListRules(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rules)
}

// CreateDiscountRule adds a rule
func (h *Handler) CreateDiscountRule(c echo.Context) error {
	var req DiscountRuleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	rule, err := h.Discounts.CreateRule(c.Request().Context(), discount.RuleInput{
		Name:        req.Name,
		Percentage:  req.Percentage,
		CategoryIDs: req.CategoryIDs,
		ColorIDs:    req.ColorIDs,
		SizeIDs:     req.SizeIDs,
		Seasons:     req.Seasons,
	})
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordDiscountOperation("create")
	logger.FromEcho(c).Info("Discount rule created",
		zap.String("rule_id", rule.ID),
		zap.String("percentage", rule.Percentage.String()))
	return c.JSON(http.StatusCreated, rule)
}

// DeleteDiscountRule removes a rule
func (h *Handler) DeleteDiscountRule(c echo.Context) error {
	id := c.Param("id")
	if err := h.Discounts.DeleteRule(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}

	prometheus.RecordDiscountOperation("delete")
	logger.FromEcho(c).Info("Discount rule deleted", zap.String("rule_id", id))
	return c.NoContent(http.StatusNoContent)
}

// GetProductDiscount returns the current discount quote for a product
func (h *Handler) GetProductDiscount(c echo.Context) error {
	quote, err := h.Discounts.Quote(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	prometheus.RecordDiscountOperation("quote")
	return c.JSON(http.StatusOK, quote)
}
