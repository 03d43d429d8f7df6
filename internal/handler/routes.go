package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/crockshine/backend-erp/internal/middleware"
	"github.com/crockshine/backend-erp/internal/model"
)

// Register mounts every API route on e
func (h *Handler) Register(e *echo.Echo, tokens middleware.TokenValidator) {
	e.GET("/health", h.HealthCheck)

	api := e.Group("/api")
	api.POST("/auth/login", h.Login)

	authed := api.Group("", middleware.JWTAuthMiddleware(tokens))
	admin := middleware.RequireRole(string(model.RoleAdmin))

	authed.GET("/auth/me", h.Me)

	// Employee API routes
	employees := authed.Group("/employees", admin)
	employees.GET("", h.ListEmployees)
	employees.GET("/:id", h.GetEmployee)
	employees.POST("", h.CreateEmployee)
	employees.PATCH("/:id", h.UpdateEmployee)
	employees.DELETE("/:id", h.DeleteEmployee)

	// Catalog API routes
	authed.GET("/products", h.SearchProducts)
	authed.GET("/products/filters", h.FilterOptions)
	authed.GET("/products/:id", h.GetProduct)
	authed.GET("/products/:id/discount", h.GetProductDiscount)
	authed.POST("/products", h.CreateProduct, admin)
	authed.PATCH("/products/:id", h.UpdateProduct, admin)
	authed.DELETE("/products/:id", h.DeleteProduct, admin)

	authed.POST("/categories", h.CreateCategory, admin)
	authed.DELETE("/categories/:id", h.DeleteCategory, admin)
	authed.POST("/colors", h.CreateColor, admin)
	authed.DELETE("/colors/:id", h.DeleteColor, admin)
	authed.POST("/sizes", h.CreateSize, admin)
	authed.DELETE("/sizes/:value", h.DeleteSize, admin)

	// Discount API routes
	authed.GET("/discounts", h.ListDiscountRules)
	authed.POST("/discounts", h.CreateDiscountRule, admin)
	authed.DELETE("/discounts/:id", h.DeleteDiscountRule, admin)

	// Sale API routes
	authed.POST("/sales", h.CreateSale)
	authed.GET("/sales", h.ListSales, admin)

	// Supplier API routes
	authed.GET("/suppliers", h.ListSuppliers, admin)
	authed.POST("/suppliers", h.CreateSupplier, admin)
	authed.GET("/supplier-orders", h.ListSupplierOrders, admin)
	authed.POST("/supplier-orders", h.CreateSupplierOrder, admin)

	// Report API routes
	reports := authed.Group("/reports", admin)
	reports.GET("/top-employees", h.TopEmployees)
	reports.GET("/top-products", h.TopProducts)
}
