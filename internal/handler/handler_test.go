package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crockshine/backend-erp/internal/auth"
	"github.com/crockshine/backend-erp/internal/catalog"
	"github.com/crockshine/backend-erp/internal/discount"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/internal/report"
	"github.com/crockshine/backend-erp/internal/sales"
	"github.com/crockshine/backend-erp/internal/store"
	"github.com/crockshine/backend-erp/internal/supply"
	"github.com/crockshine/backend-erp/pkg/jwtutil"
)

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	s := store.New(db)
	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "handler-test", ExpirationHours: 1})
	discounts := discount.NewService(s)
	h := &Handler{
		Auth:      auth.NewService(s, tokens),
		Catalog:   catalog.NewService(s, discounts),
		Discounts: discounts,
		Sales:     sales.NewCoordinator(s),
		Supply:    supply.NewService(s, nil),
		Reports:   report.NewService(s),
		DB:        db,
	}

	_, err = h.Auth.EnsureAdmin(context.Background(), "admin@admin.com", "admin123")
	require.NoError(t, err)

	e := echo.New()
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = ErrorHandler
	h.Register(e, tokens)
	return &api{t: t, e: e}
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *api) decode(rec *httptest.ResponseRecorder, out interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func (a *api) login(email, password string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/login", "", LoginRequest{Email: email, Password: password})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	a.decode(rec, &session)
	return session.Token
}

func (a *api) create(path, token string, body interface{}) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, path, token, body)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	a.decode(rec, &created)
	return created.ID
}

func TestLogin(t *testing.T) {
	a := newAPI(t)

	assert.NotEmpty(t, a.login("admin@admin.com", "admin123"))

	rec := a.do(http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "admin@admin.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@admin.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaleFlow(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@admin.com", "admin123")

	a.create("/api/employees", admin, EmployeeRequest{
		Role: "SELLER", Name: "Sam", Lastname: "Seller", Email: "sam@shop.test", Password: "sam-secret",
	})
	seller := a.login("sam@shop.test", "sam-secret")

	categoryID := a.create("/api/categories", admin, NameRequest{Name: "Coats"})
	colorID := a.create("/api/colors", admin, NameRequest{Name: "Navy"})
	sizeID := a.create("/api/sizes", admin, SizeRequest{Value: 50})
	productID := a.create("/api/products", admin, map[string]interface{}{
		"name": "Wool coat", "size_id": sizeID, "price": "25.00", "season": "winter",
		"color_id": colorID, "category_id": categoryID,
	})

	rec := a.do(http.MethodPost, "/api/categories", admin, NameRequest{Name: "coats"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, "/api/products", seller, map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// nothing in stock yet
	rec = a.do(http.MethodPost, "/api/sales", seller, SaleRequest{Items: []SaleItemRequest{{ProductID: productID, Quantity: 1}}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var stockErr map[string]interface{}
	a.decode(rec, &stockErr)
	assert.Equal(t, productID, stockErr["product_id"])

	a.create("/api/supplier-orders", admin, map[string]interface{}{
		"supplier_name": "Mill", "supplier_contacts": "mill@example.test",
		"lines": []map[string]interface{}{{"product_id": productID, "quantity": 5, "purchase_price": "20"}},
	})

	rec = a.do(http.MethodPost, "/api/sales", seller, SaleRequest{Items: []SaleItemRequest{{ProductID: productID, Quantity: 6}}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	a.decode(rec, &stockErr)
	assert.EqualValues(t, 6, stockErr["requested"])
	assert.EqualValues(t, 5, stockErr["available"])

	rec = a.do(http.MethodPost, "/api/sales", seller, SaleRequest{Items: []SaleItemRequest{{ProductID: productID, Quantity: 2}}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sale struct {
		FinalPrice string `json:"final_price"`
		EmployeeID string `json:"employee_id"`
	}
	a.decode(rec, &sale)
	assert.Equal(t, "40", sale.FinalPrice)

	rec = a.do(http.MethodGet, "/api/products/"+productID, seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view catalog.ProductView
	a.decode(rec, &view)
	assert.Equal(t, 3, view.AvailableCount)
	assert.Equal(t, "20", view.Price.String())

	rec = a.do(http.MethodGet, "/api/reports/top-products?format=csv", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv"))
	assert.Contains(t, rec.Body.String(), "Wool coat")

	rec = a.do(http.MethodGet, "/api/reports/top-employees", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var top []model.EmployeeRevenue
	a.decode(rec, &top)
	require.Len(t, top, 1)
	assert.Equal(t, sale.EmployeeID, top[0].EmployeeID)
	assert.EqualValues(t, 2, top[0].ProductsSold)
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@admin.com", "admin123")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"unknown product", http.MethodGet, "/api/products/" + uuid.NewString(), nil, http.StatusNotFound},
		{"bad season filter", http.MethodGet, "/api/products?seasons=monsoon", nil, http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/api/products?limit=abc", nil, http.StatusBadRequest},
		{"empty sale", http.MethodPost, "/api/sales", SaleRequest{}, http.StatusBadRequest},
		{"zero quantity", http.MethodPost, "/api/sales", SaleRequest{Items: []SaleItemRequest{{ProductID: "p", Quantity: 0}}}, http.StatusBadRequest},
		{"sale of unknown product", http.MethodPost, "/api/sales", SaleRequest{Items: []SaleItemRequest{{ProductID: "p", Quantity: 1}}}, http.StatusNotFound},
		{"order without supplier", http.MethodPost, "/api/supplier-orders", map[string]interface{}{
			"lines": []map[string]interface{}{{"product_id": "p", "quantity": 1, "purchase_price": "1"}},
		}, http.StatusBadRequest},
		{"discount over 100", http.MethodPost, "/api/discounts", map[string]interface{}{"name": "big", "percentage": "150"}, http.StatusBadRequest},
		{"delete unknown rule", http.MethodDelete, "/api/discounts/" + uuid.NewString(), nil, http.StatusNotFound},
		{"no token", http.MethodGet, "/api/products", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := admin
			if tt.name == "no token" {
				token = ""
			}
			rec := a.do(tt.method, tt.path, token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body map[string]interface{}
			a.decode(rec, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHealthCheck(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/health?check=db", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	a.decode(rec, &body)
	assert.Equal(t, "ok", body["db_status"])
}
