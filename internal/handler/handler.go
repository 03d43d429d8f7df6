// Package handler serves the ERP API over HTTP.
package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/auth"
	"github.com/crockshine/backend-erp/internal/catalog"
	"github.com/crockshine/backend-erp/internal/discount"
	"github.com/crockshine/backend-erp/internal/report"
	"github.com/crockshine/backend-erp/internal/sales"
	"github.com/crockshine/backend-erp/internal/supply"
	"github.com/crockshine/backend-erp/pkg/logger"
)

// Handler holds the services behind the HTTP routes
type Handler struct {
	Auth      *auth.Service
	Catalog   *catalog.Service
	Discounts *discount.Service
	Sales     *sales.Coordinator
	Supply    *supply.Service
	Reports   *report.Service
	DB        *gorm.DB
}

// RequestValidator adapts validator/v10 to echo.Validator
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator that reports json field names
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Validate implements echo.Validator
func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperr.Validation("field %s failed on %q", fe.Namespace(), fe.Tag())
		}
		return apperr.Validation("%v", err)
	}
	return nil
}

// bindAndValidate decodes the request body into req and checks its tags
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid request data")
	}
	return c.Validate(req)
}

// respondError writes err as a JSON error body with the matching status
func respondError(c echo.Context, err error) error {
	log := logger.FromEcho(c)

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})
	}

	appErr, ok := apperr.As(err)
	if !ok {
		log.Error("Unhandled error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	body := echo.Map{"error": appErr.Error()}
	var status int
	switch appErr.Kind {
	case apperr.ErrNotFound:
		status = http.StatusNotFound
	case apperr.ErrOutOfStock:
		status = http.StatusBadRequest
		body["product_id"] = appErr.ProductID
	case apperr.ErrInsufficientStock:
		status = http.StatusBadRequest
		body["product_id"] = appErr.ProductID
		body["requested"] = appErr.Requested
		body["available"] = appErr.Available
	case apperr.ErrValidation:
		status = http.StatusBadRequest
	case apperr.ErrConflict:
		status = http.StatusConflict
	case apperr.ErrUnauthorized:
		status = http.StatusUnauthorized
	default:
		log.Error("Persistence failure", zap.Error(err), zap.Bool("transient", appErr.Transient))
		status = http.StatusInternalServerError
		body["error"] = "internal server error"
	}

	if status < http.StatusInternalServerError {
		log.Warn("Request rejected", zap.Int("status", status), zap.String("reason", appErr.Error()))
	}
	return c.JSON(status, body)
}

// ErrorHandler renders errors that escape handlers, such as routing errors
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if rerr := respondError(c, err); rerr != nil {
		logger.FromEcho(c).Error("Failed to write error response", zap.Error(rerr))
	}
}

// queryInt reads an integer query parameter, falling back to def when absent
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", name)
	}
	return v, nil
}

// queryList reads a repeated or comma separated query parameter
func queryList(c echo.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryParams()[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryIntList(c echo.Context, name string) ([]int, error) {
	raw := queryList(c, name)
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, apperr.Validation("%s must contain integers, got %q", name, v)
		}
		out = append(out, n)
	}
	return out, nil
}
