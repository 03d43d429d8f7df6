package store

import (
	"context"
	"strings"
	"time"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/prometheus"
)

// CreateEmployee inserts an employee; emails are unique
func (s *Store) CreateEmployee(ctx context.Context, e *model.Employee) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return conflict(s.conn(ctx).Create(e).Error, "employee", "employee with email %s already exists", e.Email)
}

// GetEmployee loads an employee by id
func (s *Store) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var e model.Employee
	if err := s.conn(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "employee", id)
	}
	return &e, nil
}

// GetEmployeeByEmail loads an employee by email, ignoring case
func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (*model.Employee, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var e model.Employee
	err := s.conn(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&e).Error
	if err != nil {
		return nil, notFound(err, "employee", email)
	}
	return &e, nil
}

// ListEmployees returns all employees by last name
func (s *Store) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var out []model.Employee
	if err := s.conn(ctx).Order("lastname").Order("name").Find(&out).Error; err != nil {
		return nil, classify("list employees", err)
	}
	return out, nil
}

// UpdateEmployee applies column changes to an employee
func (s *Store) UpdateEmployee(ctx context.Context, id string, changes map[string]interface{}) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	res := s.conn(ctx).Model(&model.Employee{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return apperr.Conflict("employee", "employee email already in use")
		}
		return classify("update employee", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("employee", id)
	}
	return nil
}

// DeleteEmployee removes an employee; their sales cascade
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	return requireAffected(s.conn(ctx).Delete(&model.Employee{}, "id = ?", id), "employee", id)
}
