package store

import (
	"context"
	"time"

	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/prometheus"
)

// Revenue and units are aggregated in separate subqueries so that joining
// line items does not multiply sale totals.
const topEmployeesSQL = `
SELECT e.id AS employee_id, e.name, e.lastname, e.email,
       s.sales_count, s.revenue, COALESCE(i.units, 0) AS products_sold
FROM employees e
JOIN (SELECT employee_id, COUNT(*) AS sales_count, SUM(final_price) AS revenue
      FROM sales GROUP BY employee_id) s ON s.employee_id = e.id
LEFT JOIN (SELECT sales.employee_id, SUM(sale_items.quantity) AS units
           FROM sale_items JOIN sales ON sales.id = sale_items.sale_id
           GROUP BY sales.employee_id) i ON i.employee_id = e.id
ORDER BY s.revenue DESC, e.id
LIMIT ?`

const topProductsSQL = `
SELECT p.id AS product_id, p.name, c.name AS category_name,
       t.units_sold, t.revenue, COALESCE(inv.rest_count, 0) AS rest_count
FROM (SELECT product_id, SUM(quantity) AS units_sold, SUM(quantity * unit_price) AS revenue
      FROM sale_items GROUP BY product_id) t
JOIN products p ON p.id = t.product_id
JOIN product_categories c ON c.id = p.category_id
LEFT JOIN inventory_records inv ON inv.product_id = p.id
ORDER BY t.units_sold DESC, p.id
LIMIT ?`

// TopEmployees ranks employees by total sale revenue
func (s *Store) TopEmployees(ctx context.Context, limit int) ([]model.EmployeeRevenue, error) {
	defer prometheus.TrackDBOperation("report")(time.Now())

	var out []model.EmployeeRevenue
	if err := s.conn(ctx).Raw(topEmployeesSQL, limit).Scan(&out).Error; err != nil {
		return nil, classify("top employees", err)
	}
	return out, nil
}

// TopProducts ranks products by units sold
func (s *Store) TopProducts(ctx context.Context, limit int) ([]model.ProductSales, error) {
	defer prometheus.TrackDBOperation("report")(time.Now())

	var out []model.ProductSales
	if err := s.conn(ctx).Raw(topProductsSQL, limit).Scan(&out).Error; err != nil {
		return nil, classify("top products", err)
	}
	return out, nil
}
