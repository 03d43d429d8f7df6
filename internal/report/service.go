// Package report builds the revenue rankings shown on the dashboard.
package report

import (
	"context"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/model"
)

const (
	DefaultTopEmployees = 3
	DefaultTopProducts  = 10
	MaxLimit            = 100
)

// Store is the aggregate queries reports read from
type Store interface {
	TopEmployees(ctx context.Context, limit int) ([]model.EmployeeRevenue, error)
	TopProducts(ctx context.Context, limit int) ([]model.ProductSales, error)
}

// Service serves ranking reports
type Service struct {
	store Store
}

// NewService creates a report service
func NewService(store Store) *Service {
	return &Service{store: store}
}

func limitOrDefault(limit, def int) (int, error) {
	if limit == 0 {
		return def, nil
	}
	if limit < 0 || limit > MaxLimit {
		return 0, apperr.Validation("limit must be between 1 and %d", MaxLimit)
	}
	return limit, nil
}

// TopEmployees ranks employees by revenue; limit 0 selects the default
func (s *Service) TopEmployees(ctx context.Context, limit int) ([]model.EmployeeRevenue, error) {
	n, err := limitOrDefault(limit, DefaultTopEmployees)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.TopEmployees(ctx, n)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.EmployeeRevenue{}
	}
	return rows, nil
}

// TopProducts ranks products by units sold; limit 0 selects the default
func (s *Service) TopProducts(ctx context.Context, limit int) ([]model.ProductSales, error) {
	n, err := limitOrDefault(limit, DefaultTopProducts)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.TopProducts(ctx, n)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.ProductSales{}
	}
	return rows, nil
}

// WriteCSV writes report rows with a header line
func WriteCSV(w io.Writer, rows interface{}) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return errors.Wrap(err, "write csv report")
	}
	return nil
}
