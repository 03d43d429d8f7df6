package model

import "github.com/shopspring/decimal"

// ProductFilter narrows a catalog search. Empty lists do not filter.
type ProductFilter struct {
	Search      string
	CategoryIDs []string
	ColorIDs    []string
	SizeIDs     []string
	SizeValues  []int
	Seasons     []Season
	Offset      int
	Limit       int
}

// SupplierOrderFilter narrows the supplier order listing. Search matches
// supplier names and product names case-insensitively.
type SupplierOrderFilter struct {
	Search string
	Offset int
	Limit  int
}

// InventoryLevel is one product's stock with display labels
type InventoryLevel struct {
	ProductID    string
	ProductName  string
	CategoryName string
	RestCount    int
}

// EmployeeRevenue is one row of the top employees report
type EmployeeRevenue struct {
	EmployeeID   string          `json:"employee_id" csv:"employee_id"`
	Name         string          `json:"name" csv:"name"`
	Lastname     string          `json:"lastname" csv:"lastname"`
	Email        string          `json:"email" csv:"email"`
	SalesCount   int64           `json:"sales_count" csv:"sales_count"`
	ProductsSold int64           `json:"products_sold" csv:"products_sold"`
	Revenue      decimal.Decimal `json:"revenue" csv:"revenue"`
}

// ProductSales is one row of the top products report
type ProductSales struct {
	ProductID    string          `json:"product_id" csv:"product_id"`
	Name         string          `json:"name" csv:"name"`
	CategoryName string          `json:"category" csv:"category"`
	UnitsSold    int64           `json:"units_sold" csv:"units_sold"`
	Revenue      decimal.Decimal `json:"revenue" csv:"revenue"`
	RestCount    int64           `json:"rest_count" csv:"rest_count"`
}
